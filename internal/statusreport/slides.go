package statusreport

import (
	"strconv"
	"time"

	"deck_srv/internal/pptx"
)

const (
	sectionHeaderHeight = 0.35
	tableRowHeight      = 0.3
	tableFontSize       = 9
)

// tableLayout describes one of the fixed tables: its header labels and the
// absolute width of every column in inches.
type tableLayout struct {
	headers []string
	widths  []float64
}

var (
	prioritiesTable = tableLayout{
		headers: []string{"#", "Description", "Owner"},
		widths:  []float64{0.4, 4.2, 1.9},
	}
	risksTable = tableLayout{
		headers: []string{"#", "Action Item", "Owner", "Target Date", "Status"},
		widths:  []float64{0.4, 6.5, 2.0, 1.5, 2.2},
	}
	milestonesTable = tableLayout{
		headers: []string{"#", "Milestone Description", "Target Date", "Status"},
		widths:  []float64{0.5, 7.5, 2.3, 2.3},
	}
	upcomingTable = tableLayout{
		headers: []string{"Milestone", "Target Date", "Owner"},
		widths:  []float64{8, 2.3, 2.3},
	}
)

func (s tableLayout) width() float64 {
	var w float64
	for _, c := range s.widths {
		w += c
	}
	return w
}

type composer struct {
	brand Brand
	pal   Palette
}

func ref(col pptx.Color) *pptx.Color {
	return &col
}

func (c composer) text(slide *pptx.Slide, b pptx.Bounds, text string, font pptx.Font, align pptx.Align) *pptx.TextBox {
	tb := slide.AddTextBox(b)
	p := tb.Text.First()
	p.Text = text
	p.Font = font
	p.Align = align
	return tb
}

// backdrop paints the full-bleed background and the accent bar used on
// the title and closing slides.
func (c composer) backdrop(slide *pptx.Slide) {
	slide.AddRect(pptx.Box(0, 0, slideWidth, slideHeight), c.pal.Primary)
	slide.AddRect(pptx.Box(0, 6.8, slideWidth, 0.15), c.pal.Accent)
}

func (c composer) heading(slide *pptx.Slide, title string) {
	c.text(slide, pptx.Box(0.36, 0.3, 12, 0.5), title,
		pptx.Font{Size: 28, Bold: true, Color: ref(c.pal.Dark)}, pptx.AlignLeft)
	slide.AddRect(pptx.Box(0.36, 0.8, 12.6, 0.05), c.pal.Accent)
}

func (c composer) sectionHeader(slide *pptx.Slide, text string, left, top, width float64) {
	header := slide.AddRect(pptx.Box(left, top, width, sectionHeaderHeight), c.pal.Accent)
	p := header.Text.First()
	p.Text = text
	p.Font = pptx.Font{Size: 11, Bold: true, Color: ref(c.pal.White)}
}

func (c composer) footer(slide *pptx.Slide) {
	c.text(slide, pptx.Box(11.5, 7.0, 1.5, 0.3), c.brand.Name,
		pptx.Font{Size: 10, Bold: true, Color: ref(c.pal.Accent)}, pptx.AlignRight)
}

// table adds min(len(rows), cap) data rows under one header row. rows are
// already capped by the caller.
func (c composer) table(slide *pptx.Slide, layout tableLayout, left, top float64, rows [][]string) *pptx.Table {
	n := len(rows) + 1
	tbl := slide.AddTable(n, len(layout.headers),
		pptx.Box(left, top, layout.width(), tableRowHeight*float64(n)))
	for i, w := range layout.widths {
		tbl.SetColumnWidth(i, pptx.Inches(w))
	}

	for i, h := range layout.headers {
		cell := tbl.Cell(0, i)
		cell.SetText(h)
		cell.Fill = ref(c.pal.Accent)
		cell.Text.First().Font = pptx.Font{Size: tableFontSize, Bold: true, Color: ref(c.pal.White)}
	}

	for r, row := range rows {
		for col, value := range row {
			cell := tbl.Cell(r+1, col)
			cell.SetText(value)
			cell.Fill = ref(c.pal.Light)
			cell.Text.First().Font = pptx.Font{Size: tableFontSize, Color: ref(c.pal.Dark)}
		}
	}
	return tbl
}

func (c composer) titleSlide(slide *pptx.Slide, project, period string, now time.Time) {
	c.backdrop(slide)

	c.text(slide, pptx.Box(0.5, 0.4, 4, 0.5), c.brand.Name,
		pptx.Font{Size: 24, Bold: true, Color: ref(c.pal.Accent)}, pptx.AlignLeft)
	c.text(slide, pptx.Box(0.5, 2.5, 12, 1), c.brand.Headline,
		pptx.Font{Size: 44, Bold: true, Color: ref(c.pal.White)}, pptx.AlignLeft)
	c.text(slide, pptx.Box(0.5, 3.6, 10, 0.5), "Project: "+project,
		pptx.Font{Size: 24, Color: ref(c.pal.White)}, pptx.AlignLeft)
	c.text(slide, pptx.Box(0.5, 4.5, 4, 0.4), now.Format("January 02, 2006"),
		pptx.Font{Size: 18, Color: ref(c.pal.Accent)}, pptx.AlignLeft)
	c.text(slide, pptx.Box(0.5, 5.0, 8, 0.3), period,
		pptx.Font{Size: 14, Color: ref(c.pal.White)}, pptx.AlignLeft)
}

func (c composer) summarySlide(slide *pptx.Slide, accomplishments []string, priorities []Priority, risks []Risk) {
	c.heading(slide, "Executive Summary")

	c.sectionHeader(slide, "Key Accomplishments for Last Period", 0.36, 1.0, 5.8)
	acc := slide.AddTextBox(pptx.Box(0.36, 1.4, 5.8, 2.0))
	acc.Text.WordWrap = true
	for i, item := range accomplishments {
		p := acc.Text.First()
		if i > 0 {
			p = acc.Text.AddParagraph()
		}
		p.Text = "• " + item
		p.Font = pptx.Font{Size: 10, Color: ref(c.pal.Dark)}
		p.SpaceAfter = 4
	}

	c.sectionHeader(slide, "Top Priorities for Next Period", 6.5, 1.0, 6.5)
	rows := make([][]string, len(priorities))
	for i, p := range priorities {
		rows[i] = []string{strconv.Itoa(i + 1), p.Description, p.Owner}
	}
	c.table(slide, prioritiesTable, 6.5, 1.4, rows)

	c.sectionHeader(slide, "Key Risks, Issues and Action Items", 0.36, 3.6, 12.6)
	rows = make([][]string, len(risks))
	for i, r := range risks {
		rows[i] = []string{strconv.Itoa(i + 1), r.Description, r.Owner, r.TargetDate, r.Status}
	}
	c.table(slide, risksTable, 0.36, 4.0, rows)

	c.footer(slide)
}

func (c composer) milestonesSlide(slide *pptx.Slide, milestones []Milestone, upcoming []UpcomingMilestone) {
	c.heading(slide, "Key Milestones")

	c.sectionHeader(slide, "Key Milestones and Status", 0.36, 1.0, 12.6)
	rows := make([][]string, len(milestones))
	for i, m := range milestones {
		rows[i] = []string{strconv.Itoa(i + 1), m.Description, m.TargetDate, m.Status}
	}
	c.table(slide, milestonesTable, 0.36, 1.4, rows)

	c.sectionHeader(slide, "Upcoming Key Milestones", 0.36, 4.2, 12.6)
	rows = make([][]string, len(upcoming))
	for i, u := range upcoming {
		rows[i] = []string{u.Description, u.TargetDate, u.Owner}
	}
	c.table(slide, upcomingTable, 0.36, 4.6, rows)

	c.footer(slide)
}

func (c composer) closingSlide(slide *pptx.Slide, contact string) {
	c.backdrop(slide)

	c.text(slide, pptx.Box(0.5, 2.8, 12.33, 1.2), "THANK YOU",
		pptx.Font{Size: 56, Bold: true, Color: ref(c.pal.White)}, pptx.AlignCenter)
	c.text(slide, pptx.Box(8.5, 5.5, 4, 0.5), c.brand.Name,
		pptx.Font{Size: 24, Bold: true, Color: ref(c.pal.Accent)}, pptx.AlignRight)

	if contact != "" {
		c.text(slide, pptx.Box(8.5, 6.1, 4, 0.3), contact,
			pptx.Font{Size: 10, Color: ref(c.pal.White)}, pptx.AlignRight)
	}
}
