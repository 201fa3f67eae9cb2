package cga

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPixelLayout(t *testing.T) {
	var fb Framebuffer

	// First byte of each plane, then the first byte of the second row of
	// the first plane.
	fb[0] = 0b11_10_01_00
	fb[PlaneSize] = 0b00_01_10_11
	fb[BytesPerRow] = 0b01_00_00_10

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 3}, {1, 0, 2}, {2, 0, 1}, {3, 0, 0},
		{0, 1, 0}, {1, 1, 1}, {2, 1, 2}, {3, 1, 3},
		{0, 2, 1}, {1, 2, 0}, {2, 2, 0}, {3, 2, 2},
		{4, 0, 0}, {0, 3, 0},
	}
	for _, tt := range tests {
		if got := fb.Pixel(tt.x, tt.y); got != tt.want {
			t.Errorf("Pixel(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSetPixel(t *testing.T) {
	var fb Framebuffer
	fb.SetPixel(0, 0, 3)
	fb.SetPixel(3, 0, 1)
	fb.SetPixel(Width-1, Height-1, 2)

	if fb[0] != 0b11_00_00_01 {
		t.Errorf("fb[0] = %08b, want %08b", fb[0], 0b11_00_00_01)
	}
	last := PlaneSize + (Width-1+Width*(Height/2-1))/PixelsPerByte
	if fb[last] != 0b00_00_00_10 {
		t.Errorf("fb[%#x] = %08b, want %08b", last, fb[last], 0b10)
	}

	// Overwrite leaves neighbours alone.
	fb.SetPixel(0, 0, 1)
	if fb[0] != 0b01_00_00_01 {
		t.Errorf("fb[0] = %08b, want %08b", fb[0], 0b01_00_00_01)
	}
}

// testIndex is the color index encoded at (x, y) by synthFramebuffer.
func testIndex(x, y int) uint8 {
	return uint8(x*7+y*3) & 0x3
}

func synthFramebuffer() *Framebuffer {
	var fb Framebuffer
	for y := range Height {
		for x := range Width {
			fb.SetPixel(x, y, testIndex(x, y))
		}
	}
	return &fb
}

func rgbaAt(pix []byte, x, y int) Color {
	return Color(binary.LittleEndian.Uint32(pix[4*(x+y*Width):]))
}

func TestConvert(t *testing.T) {
	fb := synthFramebuffer()
	conv := NewConverter(DefaultPalette)
	pix := conv.Convert(fb)

	if len(pix) != PixelsSize {
		t.Fatalf("len(pix) = %d, want %d", len(pix), PixelsSize)
	}

	points := []struct {
		name string
		x, y int
	}{
		{"top-left", 0, 0},
		{"top-right", Width - 1, 0},
		{"bottom-left", 0, Height - 1},
		{"bottom-right", Width - 1, Height - 1},
		{"plane0-interior", 161, 100},
		{"plane1-interior", 158, 101},
		{"plane0-row2", 5, 2},
		{"plane1-row3", 6, 3},
	}
	for _, p := range points {
		t.Run(p.name, func(t *testing.T) {
			want := DefaultPalette[testIndex(p.x, p.y)]
			if got := rgbaAt(pix, p.x, p.y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", p.x, p.y, got, want)
			}
		})
	}

	// Exhaustive check, the conversion must be bit exact.
	for y := range Height {
		for x := range Width {
			if got, want := rgbaAt(pix, x, y), DefaultPalette[testIndex(x, y)]; got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestConvertByteOrder(t *testing.T) {
	var fb Framebuffer
	fb.SetPixel(0, 0, 1)
	fb.SetPixel(1, 0, 2)

	pix := NewConverter(DefaultPalette).Convert(&fb)

	if diff := cmp.Diff([]byte{0x55, 0xff, 0xff, 0xff}, pix[0:4]); diff != "" {
		t.Errorf("cyan pixel bytes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0xff, 0x55, 0xff, 0xff}, pix[4:8]); diff != "" {
		t.Errorf("magenta pixel bytes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0x00, 0x00, 0x00, 0xff}, pix[8:12]); diff != "" {
		t.Errorf("black pixel bytes (-want +got):\n%s", diff)
	}
}

func TestConvertReusesBuffer(t *testing.T) {
	conv := NewConverter(DefaultPalette)

	var black, white Framebuffer
	for i := range white {
		white[i] = 0xff
	}

	first := conv.Convert(&black)
	second := conv.Convert(&white)
	if &first[0] != &second[0] {
		t.Fatalf("Convert allocated a new buffer")
	}
	if got := rgbaAt(first, 10, 10); got != DefaultPalette[3] {
		t.Errorf("buffer not overwritten, got %v", got)
	}
}

func TestColorText(t *testing.T) {
	tests := []struct {
		text string
		want Color
	}{
		{"#000000", DefaultPalette[0]},
		{"#55ffff", DefaultPalette[1]},
		{"#ff55ff", DefaultPalette[2]},
		{"#FFFFFF", DefaultPalette[3]},
		{"#11223344", RGBA(0x11, 0x22, 0x33, 0x44)},
	}
	for _, tt := range tests {
		var c Color
		if err := c.UnmarshalText([]byte(tt.text)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", tt.text, err)
		}
		if c != tt.want {
			t.Errorf("UnmarshalText(%q) = %#08x, want %#08x", tt.text, uint32(c), uint32(tt.want))
		}

		buf, err := c.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Color
		if err := back.UnmarshalText(buf); err != nil || back != c {
			t.Errorf("round trip of %q gave %q (err=%v)", tt.text, buf, err)
		}
	}

	for _, bad := range []string{"", "55ffff", "#55ff", "#gg0000", "#1122334455"} {
		var c Color
		if err := c.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("UnmarshalText(%q) should fail", bad)
		}
	}
}

func TestSaveAsPNG(t *testing.T) {
	pix := NewConverter(DefaultPalette).Convert(synthFramebuffer())
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SaveAsPNG(Image(pix), path); err != nil {
		t.Fatal(err)
	}
}
