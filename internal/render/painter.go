package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"

	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

// painter is the scene.Canvas over one framebuffer.
type painter struct {
	dst   *image.RGBA
	st    style.Style
	fonts *fontSet
	icons *IconCache

	text *freetype.Context
	gc   *draw2dimg.GraphicContext

	// mask receives gradient shapes before they are composited.
	mask   *image.RGBA
	maskGC *draw2dimg.GraphicContext

	missing map[string]error
}

var _ scene.Canvas = (*painter)(nil)

func newPainter(dst, mask *image.RGBA, fonts *fontSet, icons *IconCache) *painter {
	p := &painter{
		dst:     dst,
		fonts:   fonts,
		icons:   icons,
		gc:      draw2dimg.NewGraphicContext(dst),
		mask:    mask,
		maskGC:  draw2dimg.NewGraphicContext(mask),
		missing: map[string]error{},
		text:    freetype.NewContext(),
	}
	p.text.SetDPI(72)
	p.text.SetDst(dst)
	p.text.SetHinting(font.HintingNone)
	return p
}

// begin prepares a new frame with st and clears it to the border color.
func (p *painter) begin(st style.Style) {
	p.st = st
	p.text.SetFont(p.fonts.font)
	clear(p.missing)
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(st.Border), image.Point{}, draw.Src)
}

func (p *painter) Style() style.Style { return p.st }

func (p *painter) FillRect(x, y, w, h int, c color.Color) {
	if w <= 0 || h <= 0 || c == nil {
		return
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(p.dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(p.dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func (p *painter) DrawRect(x, y, w, h int, c color.Color) {
	if w < 0 || h < 0 {
		return
	}
	p.FillRect(x, y, w+1, 1, c)
	p.FillRect(x, y+h, w+1, 1, c)
	p.FillRect(x, y, 1, h+1, c)
	p.FillRect(x+w, y, 1, h+1, c)
}

func (p *painter) VLine(x, y0, y1 int, c color.Color) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	p.FillRect(x, y0, 1, y1-y0+1, c)
}

// Text places the baseline so the line box (ascent plus descent) is
// centred in the box.
func (p *painter) Text(s string, x, y, w, h int, size float64, align scene.Align, c color.Color) {
	if s == "" || w <= 0 || h <= 0 || size <= 0 {
		return
	}
	face := p.fonts.face(size)
	m := face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Round()
	pos := x
	if align == scene.AlignCenter {
		pos = x + (w-font.MeasureString(face, s).Round())/2
	}
	baseline := y + h - (h-lineHeight)/2 - m.Descent.Round()

	p.text.SetFontSize(size)
	p.text.SetClip(image.Rect(x, y, x+w, y+h).Intersect(p.dst.Bounds()))
	p.text.SetSrc(image.NewUniform(c))
	// errors only come from glyph lookups in a damaged font
	_, _ = p.text.DrawString(s, freetype.Pt(pos, baseline))
}

func (p *painter) Icon(name string, x, y, w, h, size int, c color.Color) {
	ink := color.RGBAModel.Convert(c).(color.RGBA)
	img, err := p.icons.Get(name, ink, size)
	if err != nil {
		p.missing[name] = err
		return
	}
	b := img.Bounds()
	at := image.Pt(x+(w-b.Dx())/2, y+(h-b.Dy())/2)
	draw.Draw(p.dst, b.Add(at), img, b.Min, draw.Over)
}

func roundRect(gc *draw2dimg.GraphicContext, x0, y0, x1, y1 float64, arc int) {
	gc.BeginPath()
	draw2dkit.RoundedRectangle(gc, x0, y0, x1, y1, float64(arc), float64(arc))
}

// StrokeRoundRect outlines x..x+w, y..y+h inclusive with a one pixel pen.
func (p *painter) StrokeRoundRect(x, y, w, h, arc int, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	p.gc.SetStrokeColor(c)
	p.gc.SetLineWidth(1)
	roundRect(p.gc, float64(x)+0.5, float64(y)+0.5, float64(x+w)+0.5, float64(y+h)+0.5, arc)
	p.gc.Stroke()
}

func (p *painter) FillRoundRect(x, y, w, h, arc int, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	p.gc.SetFillColor(c)
	roundRect(p.gc, float64(x), float64(y), float64(x+w), float64(y+h), arc)
	p.gc.Fill()
}

func (p *painter) FillRoundRectGradient(x, y, w, h, arc int, top color.Color, y0 int, bottom color.Color, y1 int) {
	if w <= 0 || h <= 0 {
		return
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(p.dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(p.mask, r, image.Transparent, image.Point{}, draw.Src)
	p.maskGC.SetFillColor(color.White)
	roundRect(p.maskGC, float64(x), float64(y), float64(x+w), float64(y+h), arc)
	p.maskGC.Fill()

	g := &verticalGradient{
		top:    color.RGBAModel.Convert(top).(color.RGBA),
		bottom: color.RGBAModel.Convert(bottom).(color.RGBA),
		y0:     y0,
		y1:     y1,
	}
	draw.DrawMask(p.dst, r, g, r.Min, p.mask, r.Min, draw.Over)
}

// verticalGradient is an unbounded image that blends top into bottom
// between rows y0 and y1 and clamps outside.
type verticalGradient struct {
	top, bottom color.RGBA
	y0, y1      int
}

func (g *verticalGradient) ColorModel() color.Model { return color.RGBAModel }

func (g *verticalGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *verticalGradient) At(_, y int) color.Color {
	t := 0.0
	if g.y1 != g.y0 {
		t = (float64(y) + 0.5 - float64(g.y0)) / float64(g.y1-g.y0)
	}
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	mix := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5) }
	return color.RGBA{
		R: mix(g.top.R, g.bottom.R),
		G: mix(g.top.G, g.bottom.G),
		B: mix(g.top.B, g.bottom.B),
		A: mix(g.top.A, g.bottom.A),
	}
}
