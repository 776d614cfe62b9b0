// Package imageconv is the reference CPU pixel-format converter SPEC_FULL.md
// §6 names as the one concrete implementation of the external collaborator
// spec §1/§4.F calls "the CPU↔GPU pixel-format converter for non-native
// source formats": it normalizes an arbitrary image.Image into the tightly
// packed byte layout a texture.PixelFormat expects, grounded on OpenEmu's
// OEMTLPixelConverter.
package imageconv

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/retrofx/slangchain/texture"
)

// Converter implements chain.SourceConverter.
type Converter struct{}

// New returns a ready-to-use Converter. It carries no state: every call is
// a pure function of its arguments.
func New() *Converter {
	return &Converter{}
}

// Convert packs img into format's byte layout (spec §4.F: run before pass
// 0 when the bound source isn't already GPU-native). Any source color
// model is first normalized into image.NRGBA via golang.org/x/image/draw
// — a same-size draw.Src blit, since only the channel layout/model
// changes here, never the dimensions — then repacked per pixel into the
// target format's byte width.
func (c *Converter) Convert(img image.Image, format texture.PixelFormat) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("imageconv: empty source image")
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	switch format {
	case texture.FormatUnknown,
		texture.FormatR8g8b8a8Unorm, texture.FormatR8g8b8a8Uint, texture.FormatR8g8b8a8Sint,
		texture.FormatR8g8b8a8Srgb:
		// sRGB is a sampler-side reinterpretation of the same bytes, not a
		// distinct byte layout (texture.PixelFormat.IsSRGB reports it).
		return rgba.Pix, nil
	case texture.FormatR8g8Unorm, texture.FormatR8g8Uint, texture.FormatR8g8Sint:
		return packChannels(rgba, w, h, 2), nil
	case texture.FormatR8Unorm, texture.FormatR8Uint, texture.FormatR8Sint:
		return packLuma(rgba, w, h), nil
	default:
		return nil, fmt.Errorf("imageconv: unsupported target format %s", format)
	}
}

// packChannels keeps the first n interleaved bytes of every NRGBA pixel,
// dropping the rest (R8G8 keeps R and G, discarding B and A).
func packChannels(src *image.NRGBA, w, h, n int) []byte {
	out := make([]byte, w*h*n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(x, y)
			do := (y*w + x) * n
			copy(out[do:do+n], src.Pix[so:so+n])
		}
	}
	return out
}

// packLuma reduces each pixel to one Rec. 601 luma byte.
func packLuma(src *image.NRGBA, w, h int) []byte {
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(x, y)
			r, g, b := int(src.Pix[so]), int(src.Pix[so+1]), int(src.Pix[so+2])
			out[y*w+x] = byte((r*299 + g*587 + b*114) / 1000)
		}
	}
	return out
}
