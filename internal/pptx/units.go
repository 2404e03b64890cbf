package pptx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EMU is the English Metric Unit used for all DrawingML geometry.
type EMU int64

const (
	emuPerInch = 914400
	emuPerPt   = 12700
)

// Inches converts inches to EMU.
func Inches(v float64) EMU {
	return EMU(math.Round(v * emuPerInch))
}

// Points converts typographic points to EMU.
func Points(v float64) EMU {
	return EMU(math.Round(v * emuPerPt))
}

// Bounds is the position and size of a shape on a slide.
type Bounds struct {
	Left, Top, Width, Height EMU
}

// Box builds Bounds from inch values.
func Box(left, top, width, height float64) Bounds {
	return Bounds{
		Left:   Inches(left),
		Top:    Inches(top),
		Width:  Inches(width),
		Height: Inches(height),
	}
}

// Color is an sRGB color.
type Color struct {
	R, G, B uint8
}

// RGB returns a Color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Hex returns the color as RRGGBB, the form DrawingML expects in srgbClr.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseColor parses "#RRGGBB" or "RRGGBB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Align is horizontal paragraph alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) attr() string {
	switch a {
	case AlignCenter:
		return "ctr"
	case AlignRight:
		return "r"
	default:
		return ""
	}
}
