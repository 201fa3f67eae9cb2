// Package cga implements the 320x200 4-color CGA video mode: the packed
// framebuffer layout, the palette and the conversion to RGBA pixels.
package cga

import (
	"encoding/binary"
)

const (
	Width  = 320
	Height = 200

	// The framebuffer is split in two planes, even scanlines go in the
	// first one, odd scanlines in the second one.
	PlaneSize       = 0x2000
	FramebufferSize = 2 * PlaneSize

	// Each byte packs 4 pixels, leftmost pixel in the 2 most significant bits.
	PixelsPerByte = 4
	BytesPerRow   = Width / PixelsPerByte

	// Size of a converted RGBA frame.
	PixelsSize = Width * Height * 4
)

// Framebuffer is a snapshot of the CGA video memory.
type Framebuffer [FramebufferSize]byte

func pixelAddr(x, y int) (addr int, shift uint) {
	plane := y & 1
	row := y >> 1
	addr = PlaneSize*plane + (x+Width*row)/PixelsPerByte
	bit := 3 - x%PixelsPerByte
	return addr, uint(bit * 2)
}

// Pixel returns the color index of the pixel at column x of the displayed
// scanline y.
func (fb *Framebuffer) Pixel(x, y int) uint8 {
	addr, shift := pixelAddr(x, y)
	return (fb[addr] >> shift) & 0x3
}

// SetPixel sets the color index of the pixel at column x of the displayed
// scanline y.
func (fb *Framebuffer) SetPixel(x, y int, idx uint8) {
	addr, shift := pixelAddr(x, y)
	fb[addr] = fb[addr]&^(0x3<<shift) | (idx&0x3)<<shift
}

// Converter turns framebuffers into RGBA pixels. It owns a single pixel
// buffer which is overwritten at each conversion.
type Converter struct {
	palette Palette
	pix     []byte
}

func NewConverter(pal Palette) *Converter {
	return &Converter{
		palette: pal,
		pix:     make([]byte, PixelsSize),
	}
}

func (c *Converter) Palette() Palette { return c.palette }

// Convert converts fb into RGBA pixels, 4 bytes per pixel, row by row. The
// returned slice is only valid until the next call to Convert.
func (c *Converter) Convert(fb *Framebuffer) []byte {
	for plane := range 2 {
		for y := range Height / 2 {
			for x := range Width {
				addr := PlaneSize*plane + (x+Width*y)/PixelsPerByte
				bit := 3 - x%PixelsPerByte
				color := 0x3 & (fb[addr] >> (bit * 2))

				off := 4 * (x + (y*2+plane)*Width)
				binary.LittleEndian.PutUint32(c.pix[off:], uint32(c.palette[color]))
			}
		}
	}
	return c.pix
}
