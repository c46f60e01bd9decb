// Package push2 drives the Ableton Push 2 display over USB bulk transfers.
//
// A frame is a 16 byte header followed by 160 rows. Each row holds 960
// pixels in 5-6-5 layout, two bytes per pixel (gggRRRRR BBBBBGGG), then 128
// zero bytes of padding.
package push2

import (
	"fmt"
	"image"
	"image/color"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
)

const (
	HeaderSize  = 0x10
	RowPadding  = 128
	RowSize     = geom.DisplayWidth*2 + RowPadding
	PayloadSize = RowSize * geom.DisplayHeight
)

// Header precedes every frame.
var Header = [HeaderSize]byte{0xEF, 0xCD, 0xAB, 0x89}

// scale maps 0..255 onto 0..max with round-half-up.
func scale(v uint8, max int) int { return (int(v)*max + 127) / 255 }

// Pack converts one pixel to its two wire bytes.
func Pack(r, g, b uint8) (byte, byte) {
	r5, g6, b5 := scale(r, 31), scale(g, 63), scale(b, 31)
	return byte((g6&0x07)<<5 | r5&0x1F), byte((b5&0x1F)<<3 | (g6&0x38)>>3)
}

// Unpack is the inverse of Pack, expanding back to 8 bits per channel.
func Unpack(b0, b1 byte) color.RGBA {
	r5 := int(b0 & 0x1F)
	g6 := int(b0>>5) | int(b1&0x07)<<3
	b5 := int(b1 >> 3)
	return color.RGBA{
		R: uint8((r5*255 + 15) / 31),
		G: uint8((g6*255 + 31) / 63),
		B: uint8((b5*255 + 15) / 31),
		A: 0xFF,
	}
}

// Model quantises colors to what the panel can show.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	v := color.RGBAModel.Convert(c).(color.RGBA)
	return Unpack(Pack(v.R, v.G, v.B))
})

// Encode writes src as a frame payload into dst, which must be PayloadSize
// bytes. Pixels outside src's bounds are black; padding is zeroed.
func Encode(dst []byte, src image.Image) error {
	if len(dst) != PayloadSize {
		return fmt.Errorf("payload buffer is %d bytes, want %d", len(dst), PayloadSize)
	}
	clear(dst)
	if rgba, ok := src.(*image.RGBA); ok {
		encodeRGBA(dst, rgba)
		return nil
	}
	b := src.Bounds()
	for y := 0; y < geom.DisplayHeight; y++ {
		row := dst[y*RowSize:]
		for x := 0; x < geom.DisplayWidth; x++ {
			p := image.Pt(b.Min.X+x, b.Min.Y+y)
			if !p.In(b) {
				continue
			}
			c := color.RGBAModel.Convert(src.At(p.X, p.Y)).(color.RGBA)
			row[2*x], row[2*x+1] = Pack(c.R, c.G, c.B)
		}
	}
	return nil
}

func encodeRGBA(dst []byte, src *image.RGBA) {
	b := src.Bounds()
	w := min(b.Dx(), geom.DisplayWidth)
	h := min(b.Dy(), geom.DisplayHeight)
	for y := 0; y < h; y++ {
		row := dst[y*RowSize:]
		pix := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			i := 4 * x
			row[2*x], row[2*x+1] = Pack(pix[i], pix[i+1], pix[i+2])
		}
	}
}
