package statusreport

import (
	"fmt"
	"strings"

	"deck_srv/internal/pptx"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Palette is the fixed set of colors every slide is drawn with.
type Palette struct {
	Primary pptx.Color // backgrounds of the title and closing slides
	Accent  pptx.Color // bars, section headers, table header rows
	White   pptx.Color
	Dark    pptx.Color // body text
	Light   pptx.Color // table data rows
}

// Brand carries the labels and colors stamped on the deck.
type Brand struct {
	Name       string
	Headline   string
	FilePrefix string
	Palette    Palette
}

// DefaultBrand returns the Tavant brand.
func DefaultBrand() Brand {
	return Brand{
		Name:       "TAVANT",
		Headline:   "WEEKLY STATUS REPORT",
		FilePrefix: "Tavant_WSR",
		Palette: Palette{
			Primary: pptx.RGB(0, 0, 0),
			Accent:  pptx.RGB(242, 101, 34),
			White:   pptx.RGB(255, 255, 255),
			Dark:    pptx.RGB(51, 51, 51),
			Light:   pptx.RGB(245, 245, 245),
		},
	}
}

// NewBrand applies overrides to the default brand. Empty values keep the
// defaults; the accent is given as "#RRGGBB".
func NewBrand(name, filePrefix, accent string) (Brand, error) {
	b := DefaultBrand()
	if name != "" {
		b.Name = name
	}
	if filePrefix != "" {
		b.FilePrefix = filePrefix
	}
	return b.WithAccent(accent)
}

// Title is the brand name in title case, e.g. "Tavant" for TAVANT.
func (b Brand) Title() string {
	return cases.Title(language.Und).String(strings.TrimSpace(b.Name))
}

// ToolName is the tool name for the brand, e.g. create_tavant_status_report.
// A brand without letters or digits gets create_status_report.
func (b Brand) ToolName() string {
	var slug strings.Builder
	sep := false
	for _, r := range strings.ToLower(b.Name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if sep && slug.Len() > 0 {
				slug.WriteByte('_')
			}
			slug.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	if slug.Len() == 0 {
		return "create_status_report"
	}
	return "create_" + slug.String() + "_status_report"
}

// WithAccent returns a copy of the brand using the accent given as "#RRGGBB".
// An empty string keeps the current accent.
func (b Brand) WithAccent(hex string) (Brand, error) {
	if hex == "" {
		return b, nil
	}
	c, err := pptx.ParseColor(hex)
	if err != nil {
		return b, fmt.Errorf("brand accent: %w", err)
	}
	b.Palette.Accent = c
	return b, nil
}
