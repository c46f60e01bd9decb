// Package testpattern draws hardware check frames for the display.
package testpattern

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
)

type Kind string

const (
	None Kind = ""
	// ColumnSweep lights one grid column per step, left to right.
	ColumnSweep Kind = "column_sweep"
	// RGBChannels shows full red, green, blue and white.
	RGBChannels Kind = "rgb_channels"
	// Gradient shows horizontal ramps per channel, one band each.
	Gradient Kind = "gradient"
)

func (k Kind) Valid() bool {
	switch k {
	case ColumnSweep, RGBChannels, Gradient:
		return true
	}
	return false
}

type Plan struct {
	Kind Kind
	// Columns for ColumnSweep; 0 means 8.
	Columns int
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Columns <= 0 {
		plan.Columns = 8
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Steps is the number of frames the plan produces.
func (r *Runner) Steps() int {
	switch r.plan.Kind {
	case ColumnSweep:
		return r.plan.Columns
	case RGBChannels:
		return 4
	case Gradient:
		return 1
	}
	return 0
}

var white = color.RGBA{255, 255, 255, 255}

// Step draws the next frame into dst; returns false when complete.
func (r *Runner) Step(dst *image.RGBA) bool {
	if r.step >= r.Steps() {
		return false
	}
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	switch r.plan.Kind {
	case ColumnSweep:
		col := geom.Columns(r.plan.Columns)[r.step]
		fill(dst, image.Rect(col.Left, 0, col.Left+col.Width, dst.Bounds().Dy()), white)
	case RGBChannels:
		c := [...]color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, white}[r.step]
		fill(dst, dst.Bounds(), c)
	case Gradient:
		ramp(dst)
	}
	r.step++
	return true
}

func fill(dst *image.RGBA, rect image.Rectangle, c color.RGBA) {
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// ramp draws four bands (red, green, blue, gray) from black to full scale.
func ramp(dst *image.RGBA) {
	b := dst.Bounds()
	band := b.Dy() / 4
	w := b.Dx()
	for x := 0; x < w; x++ {
		v := uint8(x * 255 / max(1, w-1))
		for i, c := range [...]color.RGBA{{v, 0, 0, 255}, {0, v, 0, 255}, {0, 0, v, 255}, {v, v, v, 255}} {
			for y := i * band; y < (i+1)*band; y++ {
				dst.SetRGBA(b.Min.X+x, b.Min.Y+y, c)
			}
		}
	}
}
