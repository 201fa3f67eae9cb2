package cga

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Color is a 32-bit RGBA color. Red is held in the least significant byte so
// that storing a Color in little-endian order yields R, G, B, A bytes.
type Color uint32

func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r))
}

func (c Color) Components() (r, g, b, a uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)
}

func (c Color) NRGBA() color.NRGBA {
	r, g, b, a := c.Components()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func (c Color) String() string {
	r, g, b, a := c.Components()
	if a == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "#rrggbb" (opaque) and "#rrggbbaa".
func (c *Color) UnmarshalText(text []byte) error {
	s, ok := strings.CutPrefix(string(text), "#")
	if !ok || (len(s) != 6 && len(s) != 8) {
		return fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", text)
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	a := uint8(0xff)
	if len(buf) == 4 {
		a = buf[3]
	}
	*c = RGBA(buf[0], buf[1], buf[2], a)
	return nil
}

// Palette maps the 4 color indices to their RGBA colors.
type Palette [4]Color

// DefaultPalette is the high-intensity CGA palette 1: black, cyan, magenta
// and white.
var DefaultPalette = Palette{
	0xff000000,
	0xffffff55,
	0xffff55ff,
	0xffffffff,
}
