package scene

import (
	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

const SendSlots = 4

// SendSlot is one send row. A non-empty Text marks the slot as touched and
// is shown in a value box.
type SendSlot struct {
	Name   string
	Text   string
	Value  int
	Edited bool
}

// Sends draws up to four send faders. In extension mode the column fuses
// with its left neighbour and draws even without a track name.
type Sends struct {
	ChannelSelector

	Slots     [SendSlots]SendSlot
	Extension bool
}

func (*Sends) Kind() Kind { return KindSends }

func (e *Sends) Draw(c Canvas, left, width, height int) {
	e.ChannelSelector.Draw(c, left, width, height)
	if e.Name == "" && !e.Extension {
		return
	}

	st := c.Style()
	rowTop := trackRowTop(height)
	sliderWidth := width - 2*geom.Inset - 1
	top := geom.MenuHeight + 1
	areaHeight := rowTop - top
	rowHeight := areaHeight / 8
	sliderHeight := rowHeight - 2*sep

	bg := st.Background
	if e.Selected || e.Extension {
		bg = style.Brighter(bg)
	}
	if e.Extension {
		c.FillRect(left-sep, top, width+sep, areaHeight-2, bg)
	} else {
		c.FillRect(left, top, width, areaHeight, bg)
	}

	y := geom.MenuHeight
	if !e.Extension {
		y += sep
	}
	faderLeft := left + geom.Inset
	for _, s := range e.Slots {
		if s.Name == "" {
			break
		}
		c.Text(s.Name, faderLeft, y+sep, width, rowHeight, float64(rowHeight), AlignLeft, st.Text)
		y += rowHeight

		c.FillRect(faderLeft, y+sep, sliderWidth, sliderHeight, st.Border)
		valueWidth := s.Value * sliderWidth / geom.MaxValue
		faderTop := y + sep + 1
		c.FillRect(faderLeft+1, faderTop, valueWidth-1, sliderHeight-2, st.Fader)
		if s.Edited {
			w := 1
			if s.Text != "" {
				w = 3
			}
			c.FillRect(min(faderLeft+sliderWidth-w-1, faderLeft+valueWidth+1), faderTop, w, sliderHeight-2, st.Edit)
		}
		y += rowHeight
	}

	boxWidth := sliderWidth / 2
	boxLeft := faderLeft + sliderWidth - boxWidth
	darker := style.Darker(st.Background)
	y = geom.MenuHeight
	for _, s := range e.Slots {
		y += rowHeight
		if s.Text != "" {
			boxTop := y + sliderHeight + 1
			if !e.Extension {
				boxTop += sep
			}
			drawValueBox(c, st, s.Text, boxLeft, boxTop, boxWidth, darker)
		}
		y += rowHeight
	}
}
