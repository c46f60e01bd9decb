package scene

import (
	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

// Param shows a parameter name, its display text and a horizontal fader.
// An absent Value hides the fader.
type Param struct {
	ChannelSelector

	ParamName string
	Value     Value
	ValueText string
	Touched   bool
}

func (*Param) Kind() Kind { return KindParam }

func (e *Param) Draw(c Canvas, left, width, height int) {
	st := c.Style()
	drawMenu(c, &e.Header, left, width)

	rowTop := trackRowTop(height)
	if e.Name != "" {
		e.drawTrackInfo(c, left, width, height, rowTop, e.Name)
	}
	if e.ParamName == "" {
		return
	}

	elemWidth := width - 2*geom.Inset
	elemHeight := (rowTop - geom.ControlsTop - geom.Inset) / 3

	bg := st.Background
	if e.Touched {
		bg = style.Brighter(bg)
	}
	bgOffset := geom.MenuHeight + 1
	if !e.Value.Valid {
		bgOffset = geom.ControlsTop + elemHeight
	}
	c.FillRect(left, geom.MenuHeight+1, width, rowTop-bgOffset, bg)

	textSize := float64(elemHeight * 2 / 3)
	x := left + geom.Inset - 1
	c.Text(e.ParamName, x, geom.ControlsTop-geom.Inset, elemWidth, elemHeight, textSize, AlignCenter, st.Text)
	c.Text(e.ValueText, x, geom.ControlsTop-geom.Inset+elemHeight, elemWidth, elemHeight, textSize, AlignCenter, st.Text)

	if !e.Value.Valid {
		return
	}
	inner := elemWidth - 2
	valueWidth := scaled(e.Value.N, inner)
	innerTop := geom.ControlsTop + 2*elemHeight + 1
	c.FillRect(x, geom.ControlsTop+2*elemHeight, elemWidth, elemHeight, st.Border)
	c.FillRect(left+geom.Inset, innerTop, valueWidth, elemHeight-2, st.Fader)
	w := 1
	if e.Touched {
		w = 3
	}
	c.FillRect(left+geom.Inset+max(0, valueWidth-w), innerTop, w, elemHeight-2, st.Edit)
}
