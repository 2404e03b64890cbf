package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	ctRels         = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML          = "application/xml"
	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctPresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ctViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ctTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ctCore         = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp          = "application/vnd.openxmlformats-officedocument.extended-properties+xml"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relApp            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relPresProps      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	relViewProps      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	relTableStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"

	// MimeType is the media type of a .pptx package.
	MimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	firstSlideID = 256
	masterID     = 2147483648
)

type xmlTypes struct {
	XMLName   xml.Name      `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xmlPresentation struct {
	XMLName         xml.Name    `xml:"p:presentation"`
	XMLNSA          string      `xml:"xmlns:a,attr"`
	XMLNSR          string      `xml:"xmlns:r,attr"`
	XMLNSP          string      `xml:"xmlns:p,attr"`
	SaveSubsetFonts int         `xml:"saveSubsetFonts,attr"`
	SldMasterIDLst  xmlIDList   `xml:"p:sldMasterIdLst"`
	SldIDLst        xmlSldIDLst `xml:"p:sldIdLst"`
	SldSz           xmlExt      `xml:"p:sldSz"`
	NotesSz         xmlExt      `xml:"p:notesSz"`
}

type xmlIDList struct {
	IDs []xmlID `xml:"p:sldMasterId"`
}

type xmlSldIDLst struct {
	IDs []xmlID `xml:"p:sldId"`
}

type xmlID struct {
	ID  uint32 `xml:"id,attr"`
	RID string `xml:"r:id,attr"`
}

type xmlCoreProperties struct {
	XMLName        xml.Name  `xml:"cp:coreProperties"`
	XMLNSCP        string    `xml:"xmlns:cp,attr"`
	XMLNSDC        string    `xml:"xmlns:dc,attr"`
	XMLNSDCTerms   string    `xml:"xmlns:dcterms,attr"`
	XMLNSDCMIType  string    `xml:"xmlns:dcmitype,attr"`
	XMLNSXSI       string    `xml:"xmlns:xsi,attr"`
	Title          string    `xml:"dc:title"`
	Creator        string    `xml:"dc:creator"`
	LastModifiedBy string    `xml:"cp:lastModifiedBy"`
	Revision       int       `xml:"cp:revision"`
	Created        xmlW3CDTF `xml:"dcterms:created"`
	Modified       xmlW3CDTF `xml:"dcterms:modified"`
}

type xmlW3CDTF struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type xmlAppProperties struct {
	XMLName            xml.Name `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Properties"`
	Application        string   `xml:"Application"`
	PresentationFormat string   `xml:"PresentationFormat"`
	Slides             int      `xml:"Slides"`
}

// Write serializes the presentation as a .pptx package.
func (p *Presentation) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	pw := &partWriter{zw: zw}

	n := len(p.slides)
	pw.xml("[Content_Types].xml", p.contentTypes())
	pw.xml("_rels/.rels", xmlRelationships{Relationships: []xmlRelationship{
		{ID: "rId1", Type: relOfficeDocument, Target: "ppt/presentation.xml"},
		{ID: "rId2", Type: relCore, Target: "docProps/core.xml"},
		{ID: "rId3", Type: relApp, Target: "docProps/app.xml"},
	}})
	pw.xml("docProps/core.xml", p.coreProperties())
	pw.xml("docProps/app.xml", xmlAppProperties{
		Application:        "deck_srv",
		PresentationFormat: "Custom",
		Slides:             n,
	})
	pw.xml("ppt/presentation.xml", p.presentationPart())
	pw.xml("ppt/_rels/presentation.xml.rels", p.presentationRels())
	pw.raw("ppt/slideMasters/slideMaster1.xml", slideMasterXML)
	pw.raw("ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML)
	pw.raw("ppt/slideLayouts/slideLayout1.xml", slideLayoutXML)
	pw.raw("ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML)
	pw.raw("ppt/theme/theme1.xml", themeXML)
	pw.raw("ppt/presProps.xml", presPropsXML)
	pw.raw("ppt/viewProps.xml", viewPropsXML)
	pw.raw("ppt/tableStyles.xml", tableStylesXML)
	for i, s := range p.slides {
		pw.xml(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), s.document())
		pw.raw(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRelsXML)
	}

	if pw.err != nil {
		return pw.err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

// Bytes returns the serialized package.
func (p *Presentation) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile serializes the presentation in memory and then writes it to
// path, so a serialization error never touches the file system.
func (p *Presentation) SaveFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return fmt.Errorf("serialize presentation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write presentation: %w", err)
	}
	return nil
}

func (p *Presentation) contentTypes() xmlTypes {
	t := xmlTypes{
		Defaults: []xmlDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: ctXML},
		},
		Overrides: []xmlOverride{
			{PartName: "/ppt/presentation.xml", ContentType: ctPresentation},
			{PartName: "/ppt/slideMasters/slideMaster1.xml", ContentType: ctSlideMaster},
			{PartName: "/ppt/slideLayouts/slideLayout1.xml", ContentType: ctSlideLayout},
			{PartName: "/ppt/theme/theme1.xml", ContentType: ctTheme},
			{PartName: "/ppt/presProps.xml", ContentType: ctPresProps},
			{PartName: "/ppt/viewProps.xml", ContentType: ctViewProps},
			{PartName: "/ppt/tableStyles.xml", ContentType: ctTableStyles},
			{PartName: "/docProps/core.xml", ContentType: ctCore},
			{PartName: "/docProps/app.xml", ContentType: ctApp},
		},
	}
	for i := range p.slides {
		t.Overrides = append(t.Overrides, xmlOverride{
			PartName:    fmt.Sprintf("/ppt/slides/slide%d.xml", i+1),
			ContentType: ctSlide,
		})
	}
	return t
}

func (p *Presentation) coreProperties() xmlCoreProperties {
	created := p.Properties.Created
	if created.IsZero() {
		created = time.Now()
	}
	stamp := created.UTC().Format(time.RFC3339)
	return xmlCoreProperties{
		XMLNSCP:        "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XMLNSDC:        "http://purl.org/dc/elements/1.1/",
		XMLNSDCTerms:   "http://purl.org/dc/terms/",
		XMLNSDCMIType:  "http://purl.org/dc/dcmitype/",
		XMLNSXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		Title:          p.Properties.Title,
		Creator:        p.Properties.Creator,
		LastModifiedBy: p.Properties.Creator,
		Revision:       1,
		Created:        xmlW3CDTF{Type: "dcterms:W3CDTF", Value: stamp},
		Modified:       xmlW3CDTF{Type: "dcterms:W3CDTF", Value: stamp},
	}
}

func (p *Presentation) presentationPart() xmlPresentation {
	doc := xmlPresentation{
		XMLNSA:          nsA,
		XMLNSR:          nsR,
		XMLNSP:          nsP,
		SaveSubsetFonts: 1,
		SldMasterIDLst:  xmlIDList{IDs: []xmlID{{ID: masterID, RID: "rId1"}}},
		SldSz:           xmlExt{CX: int64(p.Width), CY: int64(p.Height)},
		NotesSz:         xmlExt{CX: int64(Inches(7.5)), CY: int64(Inches(10))},
	}
	for i := range p.slides {
		doc.SldIDLst.IDs = append(doc.SldIDLst.IDs, xmlID{
			ID:  uint32(firstSlideID + i),
			RID: fmt.Sprintf("rId%d", i+2),
		})
	}
	return doc
}

// presentationRels numbers the master rId1, slides rId2..rIdN+1 and the
// shared parts after them.
func (p *Presentation) presentationRels() xmlRelationships {
	rels := xmlRelationships{Relationships: []xmlRelationship{
		{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"},
	}}
	for i := range p.slides {
		rels.Relationships = append(rels.Relationships, xmlRelationship{
			ID:     fmt.Sprintf("rId%d", i+2),
			Type:   relSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
	}
	next := len(p.slides) + 2
	for _, r := range []struct{ typ, target string }{
		{relPresProps, "presProps.xml"},
		{relViewProps, "viewProps.xml"},
		{relTheme, "theme/theme1.xml"},
		{relTableStyles, "tableStyles.xml"},
	} {
		rels.Relationships = append(rels.Relationships, xmlRelationship{
			ID:     fmt.Sprintf("rId%d", next),
			Type:   r.typ,
			Target: r.target,
		})
		next++
	}
	return rels
}

// partWriter writes package parts and remembers the first error.
type partWriter struct {
	zw  *zip.Writer
	err error
}

func (pw *partWriter) xml(name string, v any) {
	if pw.err != nil {
		return
	}
	data, err := xml.Marshal(v)
	if err != nil {
		pw.err = fmt.Errorf("marshal %s: %w", name, err)
		return
	}
	pw.write(name, append([]byte(xml.Header), data...))
}

func (pw *partWriter) raw(name, content string) {
	if pw.err != nil {
		return
	}
	pw.write(name, []byte(content))
}

func (pw *partWriter) write(name string, data []byte) {
	f, err := pw.zw.Create(name)
	if err != nil {
		pw.err = fmt.Errorf("create part %s: %w", name, err)
		return
	}
	if _, err := f.Write(data); err != nil {
		pw.err = fmt.Errorf("write part %s: %w", name, err)
	}
}
