package cga

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Image wraps RGBA pixels produced by a Converter, without copying them.
func Image(pix []byte) *image.RGBA {
	return &image.RGBA{
		Pix:    pix,
		Stride: 4 * Width,
		Rect:   image.Rect(0, 0, Width, Height),
	}
}

// CopyImage returns an image holding a private copy of pix.
func CopyImage(pix []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	copy(img.Pix, pix)
	return img
}

func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
