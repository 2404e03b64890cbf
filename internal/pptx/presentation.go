// Package pptx builds PresentationML (.pptx) documents in memory and
// serializes them as OOXML packages.
package pptx

import (
	"strings"
	"time"
)

// Properties are the package core properties.
type Properties struct {
	Title   string
	Creator string
	Created time.Time
}

// Presentation is an in-memory slide deck.
type Presentation struct {
	Width      EMU
	Height     EMU
	Properties Properties

	slides []*Slide
}

// New creates an empty presentation with the given slide size.
func New(width, height EMU) *Presentation {
	return &Presentation{Width: width, Height: height}
}

// AddSlide appends a blank slide.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.slides = append(p.slides, s)
	return s
}

// Slides returns the slides in order.
func (p *Presentation) Slides() []*Slide {
	return p.slides
}

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int {
	return len(p.slides)
}

// Shape is anything placed on a slide's shape tree.
type Shape interface {
	Bounds() Bounds
	element(id int) any
}

// Slide is an ordered collection of shapes on the blank layout.
type Slide struct {
	shapes []Shape
}

// Shapes returns the shapes in z-order.
func (s *Slide) Shapes() []Shape {
	return s.shapes
}

// AddRect adds a filled rectangle without outline.
func (s *Slide) AddRect(b Bounds, fill Color) *AutoShape {
	sh := &AutoShape{bounds: b, Fill: fill, Text: newTextFrame()}
	sh.Text.Anchor = AnchorMiddle
	sh.Text.Paragraphs[0].Align = AlignCenter
	s.shapes = append(s.shapes, sh)
	return sh
}

// AddTextBox adds an unfilled text box.
func (s *Slide) AddTextBox(b Bounds) *TextBox {
	tb := &TextBox{bounds: b, Text: newTextFrame()}
	s.shapes = append(s.shapes, tb)
	return tb
}

// AddTable adds a rows x cols table. Columns share the width and rows
// share the height evenly until resized.
func (s *Slide) AddTable(rows, cols int, b Bounds) *Table {
	t := newTable(rows, cols, b)
	s.shapes = append(s.shapes, t)
	return t
}

// Tables returns the tables on the slide in z-order.
func (s *Slide) Tables() []*Table {
	var tables []*Table
	for _, sh := range s.shapes {
		if t, ok := sh.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// TextBoxes returns the text boxes on the slide in z-order.
func (s *Slide) TextBoxes() []*TextBox {
	var boxes []*TextBox
	for _, sh := range s.shapes {
		if tb, ok := sh.(*TextBox); ok {
			boxes = append(boxes, tb)
		}
	}
	return boxes
}

// Font describes run formatting.
type Font struct {
	Size  float64 // points, 0 inherits
	Bold  bool
	Color *Color
}

// Paragraph is a single-run paragraph.
type Paragraph struct {
	Text       string
	Font       Font
	Align      Align
	SpaceAfter float64 // points
}

// Anchor is vertical text anchoring within a shape.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorMiddle
)

// TextFrame holds the paragraphs of a shape or table cell. A new frame
// always has one empty paragraph.
type TextFrame struct {
	WordWrap   bool
	Anchor     Anchor
	Paragraphs []*Paragraph
}

func newTextFrame() *TextFrame {
	return &TextFrame{Paragraphs: []*Paragraph{{}}}
}

// First returns the first paragraph.
func (tf *TextFrame) First() *Paragraph {
	return tf.Paragraphs[0]
}

// AddParagraph appends an empty paragraph.
func (tf *TextFrame) AddParagraph() *Paragraph {
	p := &Paragraph{}
	tf.Paragraphs = append(tf.Paragraphs, p)
	return p
}

// SetText replaces all paragraphs with a single paragraph holding text,
// keeping the first paragraph's formatting.
func (tf *TextFrame) SetText(text string) {
	first := tf.Paragraphs[0]
	first.Text = text
	tf.Paragraphs = tf.Paragraphs[:1]
}

// Text returns the paragraph texts joined by newlines.
func (tf *TextFrame) Text() string {
	lines := make([]string, len(tf.Paragraphs))
	for i, p := range tf.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// AutoShape is a filled preset rectangle.
type AutoShape struct {
	bounds Bounds
	Fill   Color
	Text   *TextFrame
}

// Bounds implements Shape.
func (a *AutoShape) Bounds() Bounds { return a.bounds }

// TextBox is a text-only shape.
type TextBox struct {
	bounds Bounds
	Text   *TextFrame
}

// Bounds implements Shape.
func (t *TextBox) Bounds() Bounds { return t.bounds }

// Cell is a single table cell.
type Cell struct {
	Fill *Color
	Text *TextFrame
}

// SetText sets the cell text.
func (c *Cell) SetText(text string) {
	c.Text.SetText(text)
}

// Table is a DrawingML table inside a graphic frame.
type Table struct {
	bounds  Bounds
	columns []EMU
	rows    []EMU
	cells   [][]*Cell
}

func newTable(rows, cols int, b Bounds) *Table {
	t := &Table{
		bounds:  b,
		columns: distribute(b.Width, cols),
		rows:    distribute(b.Height, rows),
		cells:   make([][]*Cell, rows),
	}
	for r := range t.cells {
		t.cells[r] = make([]*Cell, cols)
		for c := range t.cells[r] {
			t.cells[r][c] = &Cell{Text: newTextFrame()}
		}
	}
	return t
}

// distribute splits total into n parts, giving the remainder to the last part.
func distribute(total EMU, n int) []EMU {
	if n <= 0 {
		return nil
	}
	parts := make([]EMU, n)
	each := total / EMU(n)
	for i := range parts {
		parts[i] = each
	}
	parts[n-1] += total - each*EMU(n)
	return parts
}

// Bounds implements Shape. The width follows the column widths.
func (t *Table) Bounds() Bounds {
	b := t.bounds
	var w EMU
	for _, c := range t.columns {
		w += c
	}
	b.Width = w
	return b
}

// RowCount returns the number of rows including any header row.
func (t *Table) RowCount() int { return len(t.rows) }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// Cell returns the cell at row r, column c.
func (t *Table) Cell(r, c int) *Cell {
	return t.cells[r][c]
}

// SetColumnWidth sets the width of column c.
func (t *Table) SetColumnWidth(c int, w EMU) {
	t.columns[c] = w
}

// ColumnWidth returns the width of column c.
func (t *Table) ColumnWidth(c int) EMU {
	return t.columns[c]
}
