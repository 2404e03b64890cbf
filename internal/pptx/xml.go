package pptx

import (
	"encoding/xml"
	"fmt"
	"math"
)

// Element names carry their namespace prefix literally; the prefixes are
// declared on each part's root element.
const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	tableGraphicURI = "http://schemas.openxmlformats.org/drawingml/2006/table"
	// Medium Style 2 - Accent 1, built into every PowerPoint install.
	defaultTableStyleID = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"
)

type xmlSlide struct {
	XMLName   xml.Name     `xml:"p:sld"`
	XMLNSA    string       `xml:"xmlns:a,attr"`
	XMLNSR    string       `xml:"xmlns:r,attr"`
	XMLNSP    string       `xml:"xmlns:p,attr"`
	CSld      xmlCSld      `xml:"p:cSld"`
	ClrMapOvr xmlClrMapOvr `xml:"p:clrMapOvr"`
}

type xmlCSld struct {
	SpTree xmlSpTree `xml:"p:spTree"`
}

type xmlClrMapOvr struct {
	MasterClrMapping struct{} `xml:"a:masterClrMapping"`
}

type xmlSpTree struct {
	NvGrpSpPr xmlNvGrpSpPr `xml:"p:nvGrpSpPr"`
	GrpSpPr   xmlGrpSpPr   `xml:"p:grpSpPr"`
	Shapes    []any
}

type xmlNvGrpSpPr struct {
	CNvPr      xmlCNvPr `xml:"p:cNvPr"`
	CNvGrpSpPr struct{} `xml:"p:cNvGrpSpPr"`
	NvPr       struct{} `xml:"p:nvPr"`
}

type xmlGrpSpPr struct {
	Xfrm xmlGroupXfrm `xml:"a:xfrm"`
}

type xmlGroupXfrm struct {
	Off   xmlOff `xml:"a:off"`
	Ext   xmlExt `xml:"a:ext"`
	ChOff xmlOff `xml:"a:chOff"`
	ChExt xmlExt `xml:"a:chExt"`
}

type xmlCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlOff struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type xmlExt struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type xmlXfrm struct {
	Off xmlOff `xml:"a:off"`
	Ext xmlExt `xml:"a:ext"`
}

func xfrm(b Bounds) xmlXfrm {
	return xmlXfrm{
		Off: xmlOff{X: int64(b.Left), Y: int64(b.Top)},
		Ext: xmlExt{CX: int64(b.Width), CY: int64(b.Height)},
	}
}

type xmlSp struct {
	XMLName xml.Name   `xml:"p:sp"`
	NvSpPr  xmlNvSpPr  `xml:"p:nvSpPr"`
	SpPr    xmlSpPr    `xml:"p:spPr"`
	TxBody  *xmlTxBody `xml:"p:txBody"`
}

type xmlNvSpPr struct {
	CNvPr   xmlCNvPr   `xml:"p:cNvPr"`
	CNvSpPr xmlCNvSpPr `xml:"p:cNvSpPr"`
	NvPr    struct{}   `xml:"p:nvPr"`
}

type xmlCNvSpPr struct {
	TxBox string `xml:"txBox,attr,omitempty"`
}

type xmlSpPr struct {
	Xfrm      xmlXfrm       `xml:"a:xfrm"`
	PrstGeom  xmlPrstGeom   `xml:"a:prstGeom"`
	SolidFill *xmlSolidFill `xml:"a:solidFill"`
	NoFill    *struct{}     `xml:"a:noFill"`
	Ln        *xmlLn        `xml:"a:ln"`
}

type xmlPrstGeom struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

type xmlSolidFill struct {
	SrgbClr xmlVal `xml:"a:srgbClr"`
}

type xmlVal struct {
	Val string `xml:"val,attr"`
}

type xmlLn struct {
	NoFill struct{} `xml:"a:noFill"`
}

func solidFill(c Color) *xmlSolidFill {
	return &xmlSolidFill{SrgbClr: xmlVal{Val: c.Hex()}}
}

type xmlTxBody struct {
	BodyPr   xmlBodyPr `xml:"a:bodyPr"`
	LstStyle struct{}  `xml:"a:lstStyle"`
	P        []xmlP    `xml:"a:p"`
}

type xmlBodyPr struct {
	Wrap      string    `xml:"wrap,attr,omitempty"`
	RtlCol    string    `xml:"rtlCol,attr,omitempty"`
	Anchor    string    `xml:"anchor,attr,omitempty"`
	SpAutoFit *struct{} `xml:"a:spAutoFit"`
}

type xmlP struct {
	PPr        *xmlPPr `xml:"a:pPr"`
	R          []xmlR  `xml:"a:r"`
	EndParaRPr *xmlRPr `xml:"a:endParaRPr"`
}

type xmlPPr struct {
	Algn   string  `xml:"algn,attr,omitempty"`
	SpcAft *xmlSpc `xml:"a:spcAft"`
}

type xmlSpc struct {
	SpcPts xmlVal `xml:"a:spcPts"`
}

type xmlR struct {
	RPr xmlRPr `xml:"a:rPr"`
	T   string `xml:"a:t"`
}

type xmlRPr struct {
	Lang      string        `xml:"lang,attr,omitempty"`
	Sz        int           `xml:"sz,attr,omitempty"`
	B         string        `xml:"b,attr,omitempty"`
	Dirty     string        `xml:"dirty,attr,omitempty"`
	SolidFill *xmlSolidFill `xml:"a:solidFill"`
}

type xmlGraphicFrame struct {
	XMLName          xml.Name            `xml:"p:graphicFrame"`
	NvGraphicFramePr xmlNvGraphicFramePr `xml:"p:nvGraphicFramePr"`
	Xfrm             xmlXfrm             `xml:"p:xfrm"`
	Graphic          xmlGraphic          `xml:"a:graphic"`
}

type xmlNvGraphicFramePr struct {
	CNvPr             xmlCNvPr             `xml:"p:cNvPr"`
	CNvGraphicFramePr xmlCNvGraphicFramePr `xml:"p:cNvGraphicFramePr"`
	NvPr              struct{}             `xml:"p:nvPr"`
}

type xmlCNvGraphicFramePr struct {
	Locks xmlGraphicFrameLocks `xml:"a:graphicFrameLocks"`
}

type xmlGraphicFrameLocks struct {
	NoGrp int `xml:"noGrp,attr"`
}

type xmlGraphic struct {
	GraphicData xmlGraphicData `xml:"a:graphicData"`
}

type xmlGraphicData struct {
	URI string `xml:"uri,attr"`
	Tbl xmlTbl `xml:"a:tbl"`
}

type xmlTbl struct {
	TblPr   xmlTblPr   `xml:"a:tblPr"`
	TblGrid xmlTblGrid `xml:"a:tblGrid"`
	Tr      []xmlTr    `xml:"a:tr"`
}

type xmlTblPr struct {
	FirstRow     int    `xml:"firstRow,attr"`
	BandRow      int    `xml:"bandRow,attr"`
	TableStyleID string `xml:"a:tableStyleId"`
}

type xmlTblGrid struct {
	GridCol []xmlGridCol `xml:"a:gridCol"`
}

type xmlGridCol struct {
	W int64 `xml:"w,attr"`
}

type xmlTr struct {
	H  int64   `xml:"h,attr"`
	Tc []xmlTc `xml:"a:tc"`
}

type xmlTc struct {
	TxBody xmlTxBody `xml:"a:txBody"`
	TcPr   xmlTcPr   `xml:"a:tcPr"`
}

type xmlTcPr struct {
	SolidFill *xmlSolidFill `xml:"a:solidFill"`
}

func (tf *TextFrame) body(autoShape bool) *xmlTxBody {
	body := &xmlTxBody{}
	switch {
	case autoShape:
		body.BodyPr = xmlBodyPr{RtlCol: "0", Anchor: "ctr"}
	case tf.WordWrap:
		body.BodyPr = xmlBodyPr{Wrap: "square", RtlCol: "0"}
	default:
		body.BodyPr = xmlBodyPr{Wrap: "none", RtlCol: "0", SpAutoFit: &struct{}{}}
	}
	if !autoShape && tf.Anchor == AnchorMiddle {
		body.BodyPr.Anchor = "ctr"
	}
	for _, p := range tf.Paragraphs {
		body.P = append(body.P, p.element())
	}
	return body
}

func (p *Paragraph) element() xmlP {
	out := xmlP{}
	if algn := p.Align.attr(); algn != "" || p.SpaceAfter > 0 {
		out.PPr = &xmlPPr{Algn: algn}
		if p.SpaceAfter > 0 {
			out.PPr.SpcAft = &xmlSpc{SpcPts: xmlVal{Val: fmt.Sprint(int(math.Round(p.SpaceAfter * 100)))}}
		}
	}
	rpr := p.Font.element()
	if p.Text == "" {
		out.EndParaRPr = &rpr
		return out
	}
	out.R = []xmlR{{RPr: rpr, T: p.Text}}
	return out
}

func (f Font) element() xmlRPr {
	rpr := xmlRPr{Lang: "en-US", Dirty: "0"}
	if f.Size > 0 {
		rpr.Sz = int(math.Round(f.Size * 100))
	}
	if f.Bold {
		rpr.B = "1"
	}
	if f.Color != nil {
		rpr.SolidFill = solidFill(*f.Color)
	}
	return rpr
}

func (a *AutoShape) element(id int) any {
	return xmlSp{
		NvSpPr: xmlNvSpPr{CNvPr: xmlCNvPr{ID: id, Name: fmt.Sprintf("Rectangle %d", id-1)}},
		SpPr: xmlSpPr{
			Xfrm:      xfrm(a.bounds),
			PrstGeom:  xmlPrstGeom{Prst: "rect"},
			SolidFill: solidFill(a.Fill),
			Ln:        &xmlLn{},
		},
		TxBody: a.Text.body(true),
	}
}

func (t *TextBox) element(id int) any {
	return xmlSp{
		NvSpPr: xmlNvSpPr{
			CNvPr:   xmlCNvPr{ID: id, Name: fmt.Sprintf("TextBox %d", id-1)},
			CNvSpPr: xmlCNvSpPr{TxBox: "1"},
		},
		SpPr: xmlSpPr{
			Xfrm:     xfrm(t.bounds),
			PrstGeom: xmlPrstGeom{Prst: "rect"},
			NoFill:   &struct{}{},
		},
		TxBody: t.Text.body(false),
	}
}

func (t *Table) element(id int) any {
	tbl := xmlTbl{
		TblPr: xmlTblPr{FirstRow: 1, BandRow: 1, TableStyleID: defaultTableStyleID},
	}
	for _, w := range t.columns {
		tbl.TblGrid.GridCol = append(tbl.TblGrid.GridCol, xmlGridCol{W: int64(w)})
	}
	for r, h := range t.rows {
		tr := xmlTr{H: int64(h)}
		for _, cell := range t.cells[r] {
			tc := xmlTc{TxBody: *cell.Text.cellBody()}
			if cell.Fill != nil {
				tc.TcPr.SolidFill = solidFill(*cell.Fill)
			}
			tr.Tc = append(tr.Tc, tc)
		}
		tbl.Tr = append(tbl.Tr, tr)
	}

	return xmlGraphicFrame{
		NvGraphicFramePr: xmlNvGraphicFramePr{
			CNvPr:             xmlCNvPr{ID: id, Name: fmt.Sprintf("Table %d", id-1)},
			CNvGraphicFramePr: xmlCNvGraphicFramePr{Locks: xmlGraphicFrameLocks{NoGrp: 1}},
		},
		Xfrm: xfrm(t.Bounds()),
		Graphic: xmlGraphic{GraphicData: xmlGraphicData{
			URI: tableGraphicURI,
			Tbl: tbl,
		}},
	}
}

func (tf *TextFrame) cellBody() *xmlTxBody {
	body := &xmlTxBody{}
	for _, p := range tf.Paragraphs {
		body.P = append(body.P, p.element())
	}
	return body
}

func (s *Slide) document() xmlSlide {
	doc := xmlSlide{XMLNSA: nsA, XMLNSR: nsR, XMLNSP: nsP}
	doc.CSld.SpTree.NvGrpSpPr.CNvPr = xmlCNvPr{ID: 1}
	for i, sh := range s.shapes {
		doc.CSld.SpTree.Shapes = append(doc.CSld.SpTree.Shapes, sh.element(i+2))
	}
	return doc
}
