package command

import (
	"encoding/hex"
	"fmt"
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Well-known colors.
var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{}
)

// NewColor validates each channel against 0..255.
func NewColor(r, g, b int) (Color, error) {
	for _, ch := range []struct {
		name string
		v    int
	}{{"r", r}, {"g", g}, {"b", b}} {
		if ch.v < 0 || ch.v > 255 {
			return Color{}, invalid("Color", ch.name, ch.v, "out of range 0..255")
		}
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, invalid("Color", "hex", s, "want 6 hex digits")
	}
	rgb, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, invalid("Color", "hex", s, err.Error())
	}
	return colorFromBytes(rgb), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) bytes() []byte {
	return []byte{c.R, c.G, c.B}
}

func colorFromBytes(b []byte) Color {
	return Color{R: b[0], G: b[1], B: b[2]}
}
