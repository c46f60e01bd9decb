package scene

import (
	"image/color"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

var (
	armColor  = style.RGB(255, 0, 0)
	soloColor = style.RGB(255, 255, 0)
	muteColor = style.RGB(245, 129, 17)
)

const buttonArc = 5

// Channel is a mixer strip: pan, volume fader with VU, arm/solo/mute and
// an optional crossfader assignment.
type Channel struct {
	ChannelSelector

	Edit       EditType
	Volume     int
	VolumeText string
	Pan        int
	PanText    string
	VU         int
	Mute       bool
	Solo       bool
	Arm        bool
	Crossfade  CrossfadeMode
}

func (*Channel) Kind() Kind { return KindChannel }

// channelLayout holds the derived rectangles of a channel column.
type channelLayout struct {
	halfWidth    int
	rowTop       int
	controlWidth int
	controlStart int

	panWidth, panStart, panTop, panHeight, panTextTop int

	faderOffset, faderTop, faderLeft, faderHeight, faderInner int

	volumeTextWidth, volumeTextLeft int
	buttonHeight                    int
}

func layoutChannel(left, width, height int) channelLayout {
	var l channelLayout
	l.halfWidth = width / 2
	l.rowTop = trackRowTop(height)
	l.controlWidth = l.halfWidth - geom.HalfUnit - geom.HalfUnit/2
	l.controlStart = left + l.halfWidth + geom.HalfUnit - geom.HalfUnit/2

	l.panWidth = l.controlWidth - 2
	l.panStart = l.controlStart + 1
	l.panTop = geom.ControlsTop + 1
	l.panHeight = geom.Unit - sep
	l.panTextTop = l.panTop + l.panHeight

	l.faderOffset = l.controlWidth / 4
	l.faderTop = l.panTop + l.panHeight + sep + 1
	l.faderLeft = l.controlStart + sep + l.faderOffset
	l.faderHeight = l.rowTop - l.faderTop - geom.Inset + 1
	l.faderInner = l.faderHeight - 2*sep

	l.volumeTextWidth = int(1.4 * float64(l.controlWidth))
	l.volumeTextLeft = l.faderLeft - l.volumeTextWidth - 2

	l.buttonHeight = (l.faderHeight - 4*sep) / 3
	return l
}

// scaled maps v onto span pixels, reaching span exactly at the top end.
func scaled(v, span int) int {
	if v >= geom.MaxValue-1 {
		return span
	}
	return int(float64(span*v) / geom.MaxValue)
}

func (e *Channel) Draw(c Canvas, left, width, height int) {
	l := layoutChannel(left, width, height)
	st := c.Style()

	drawMenu(c, &e.Header, left, width)
	if e.Name == "" {
		return
	}
	e.drawTrackInfo(c, left, width, height, l.rowTop, e.Name)

	bg := st.Background
	if e.Selected {
		bg = style.Brighter(bg)
	}
	c.FillRect(left, geom.MenuHeight+1, width, l.rowTop-(geom.MenuHeight+1), bg)

	c.FillRect(l.controlStart, geom.ControlsTop, l.halfWidth-geom.Unit+geom.HalfUnit/2+1, geom.Unit, st.Border)
	c.FillRect(l.controlStart, l.faderTop, l.controlWidth, l.faderHeight, st.Border)

	darker := style.Darker(st.Background)

	if e.Type != TypeMaster && e.Type != TypeLayer && e.Crossfade != CrossfadeOff {
		e.drawCrossfader(c, l, left, darker)
	}
	e.drawPan(c, l, darker)
	volumeTop := e.drawVolume(c, l)
	e.drawVU(c, l, darker)

	buttonTop := l.faderTop
	bx, bw, bh := left+geom.Inset-1, l.controlWidth-1, l.buttonHeight-1
	if e.Type != TypeLayer {
		drawButton(c, st, bx, buttonTop, bw, bh, armColor, e.Arm, IconRecordArm)
	}
	buttonTop += l.buttonHeight + 2*sep
	drawButton(c, st, bx, buttonTop, bw, bh, soloColor, e.Solo, IconSolo)
	buttonTop += l.buttonHeight + 2*sep
	drawButton(c, st, bx, buttonTop, bw, bh, muteColor, e.Mute, IconMute)

	if e.PanText != "" {
		drawValueBox(c, st, e.PanText, l.controlStart, l.panTextTop, l.controlWidth, darker)
	}
	if e.VolumeText != "" {
		top := l.faderTop
		if e.Volume < geom.MaxValue-1 {
			top = min(volumeTop-1, l.faderTop+l.faderInner+sep-geom.Unit+1)
		}
		drawValueBox(c, st, e.VolumeText, l.volumeTextLeft, top, l.volumeTextWidth, darker)
	}
}

func (e *Channel) drawCrossfader(c Canvas, l channelLayout, left int, darker color.RGBA) {
	st := c.Style()
	sel := st.Text
	if e.Edit.edits(EditCrossfader) {
		sel = st.Edit
	}
	w := l.controlWidth / 3
	for i, label := range [...]string{"A", "AB", "B"} {
		ink := darker
		if CrossfadeMode(i) == e.Crossfade {
			ink = sel
		}
		c.Text(label, left+geom.Inset+i*w, geom.ControlsTop, w, l.panHeight, float64(l.panHeight), AlignCenter, ink)
	}
}

func (e *Channel) drawPan(c Canvas, l channelLayout, darker color.RGBA) {
	st := c.Style()
	c.FillRect(l.panStart, l.panTop, l.panWidth, l.panHeight, darker)
	panRange := l.panWidth / 2
	middle := l.panStart + panRange
	c.VLine(middle, l.panTop, l.panTop+l.panHeight, st.Border)

	edit := e.Edit.edits(EditPan)
	w := 1
	if e.PanText != "" {
		w = 3
	}
	const half = geom.MaxValue / 2
	if e.Pan > geom.PanCenter {
		v := int(float64((e.Pan-half)*panRange) / half)
		c.FillRect(middle+1, l.panTop, v, l.panHeight, st.Fader)
		if edit {
			c.FillRect(min(middle+panRange-w, middle+v), l.panTop, w, l.panHeight, st.Edit)
		}
		return
	}
	v := int(float64(panRange) - float64(e.Pan*panRange)/half)
	c.FillRect(middle-v, l.panTop, v, l.panHeight, st.Fader)
	if edit {
		c.FillRect(max(middle-panRange, middle-v), l.panTop, w, l.panHeight, st.Edit)
	}
}

// drawVolume returns the top of the filled part of the fader.
func (e *Channel) drawVolume(c Canvas, l channelLayout) int {
	st := c.Style()
	width := l.controlWidth - 2*sep - l.faderOffset
	height := scaled(e.Volume, l.faderInner)
	top := l.faderTop + sep + l.faderInner - height
	c.FillRect(l.faderLeft, top, width, height, st.Fader)
	if e.Edit.edits(EditVolume) {
		h := 1
		if e.VolumeText != "" {
			h = 3
		}
		c.FillRect(l.faderLeft, min(top+height-h, top), width, h, st.Edit)
	}
	return top
}

func (e *Channel) drawVU(c Canvas, l channelLayout, darker color.RGBA) {
	x, w := l.controlStart+sep, l.faderOffset-sep
	height := scaled(e.VU, l.faderInner)
	c.FillRect(x, l.faderTop+sep, w, l.faderInner, darker)
	c.FillRect(x, l.faderTop+sep+l.faderInner-height, w, height, c.Style().VU)
}

func drawButton(c Canvas, st style.Style, left, top, width, height int, on color.RGBA, isOn bool, icon string) {
	c.StrokeRoundRect(left, top, width, height, buttonArc, st.Border)
	ink := st.Text
	if isOn {
		c.FillRoundRect(left+1, top+1, width-1, height-1, buttonArc, on)
		ink = st.Border
	} else {
		brighter := style.Brighter(st.Background)
		c.StrokeRoundRect(left+1, top+1, width-2, height-2, buttonArc, style.Brighter(brighter))
		c.FillRoundRectGradient(left+2, top+2, width-2, height-2, buttonArc, st.Background, top+1, brighter, top+height)
	}
	size := min(width, height) - 6
	if size > trackIconSize {
		size = trackIconSize
	}
	if size > 0 {
		c.Icon(icon, left, top, width, height, size, ink)
	}
}

func drawValueBox(c Canvas, st style.Style, text string, left, top, width int, fill color.RGBA) {
	c.FillRect(left, top, width, geom.Unit, fill)
	c.DrawRect(left, top, width-1, geom.Unit, st.Border)
	c.Text(text, left, top, width, geom.Unit, geom.Unit, AlignCenter, st.Text)
}
