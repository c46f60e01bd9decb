package scene

import (
	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

const (
	sep = geom.SeparatorSize
	// trackNameSize is int(1.2 * Unit).
	trackNameSize = geom.Unit * 12 / 10
	trackIconSize = geom.Unit + geom.HalfUnit/2
)

func trackRowTop(height int) int {
	return height - geom.TrackRowHeight - geom.Unit - sep
}

// ChannelSelector shows a menu label, track icon, name and color strip.
type ChannelSelector struct {
	Header
	Type ChannelType
}

func (*ChannelSelector) Kind() Kind { return KindChannelSelector }
func (*ChannelSelector) element()   {}

func (e *ChannelSelector) Draw(c Canvas, left, width, height int) {
	drawMenu(c, &e.Header, left, width)
	if e.Name == "" {
		return
	}
	e.drawTrackInfo(c, left, width, height, trackRowTop(height), e.Name)
}

// Icon is the track glyph for the channel type, empty if there is none.
func (e *ChannelSelector) Icon() string {
	switch e.Type {
	case TypeAudio:
		return IconAudioTrack
	case TypeInstrument:
		return IconInstrumentTrack
	case TypeHybrid:
		return IconHybridTrack
	case TypeGroup:
		return IconGroupTrack
	case TypeEffect:
		return IconEffectTrack
	case TypeMaster:
		return IconMasterTrack
	case TypeLayer:
		return IconLayer
	}
	return ""
}

func (e *ChannelSelector) drawTrackInfo(c Canvas, left, width, height, rowTop int, name string) {
	st := c.Style()
	bg := st.Background
	if e.Selected {
		bg = style.Brighter(bg)
	}
	c.FillRect(left, rowTop+1, width, height-geom.Unit-1, bg)

	if icon := e.Icon(); icon != "" {
		iconTop := height - geom.TrackRowHeight - geom.Unit
		c.Icon(icon, left, iconTop, geom.DoubleUnit, geom.TrackRowHeight, trackIconSize, st.Text)
		c.Text(name, left+geom.DoubleUnit, rowTop, width, geom.TrackRowHeight, trackNameSize, AlignLeft, st.Text)
	}

	if e.Color != nil {
		c.FillRect(left, height-geom.Unit, width, geom.Unit, e.Color)
	}
}

// drawMenu paints the top row. A menu-less element only erases the two
// pixels of the neighbour's underline that reach into its column.
func drawMenu(c Canvas, h *Header, left, width int) {
	st := c.Style()
	if h.MenuName == "" {
		c.FillRect(left-sep, geom.MenuHeight-2, sep, 1, st.Border)
		return
	}

	fill, ink := st.Border, st.Text
	if h.MenuSelected {
		fill, ink = st.Text, st.Border
	}
	c.FillRect(left, 0, width, geom.MenuHeight-1, fill)
	c.FillRect(left, geom.MenuHeight-2, width+sep, 1, st.Text)
	c.Text(h.MenuName, left, 0, width, geom.Unit+sep, geom.Unit, AlignCenter, ink)
}
