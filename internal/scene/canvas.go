package scene

import (
	"image/color"

	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
)

// Icon names resolved by the canvas implementation.
const (
	IconAudioTrack      = "track/audio"
	IconInstrumentTrack = "track/instrument"
	IconHybridTrack     = "track/hybrid"
	IconGroupTrack      = "track/group"
	IconEffectTrack     = "track/effect"
	IconMasterTrack     = "track/master"
	IconLayer           = "track/layer"

	IconRecordArm = "channel/record-arm"
	IconSolo      = "channel/solo"
	IconMute      = "channel/mute"
)

// Canvas is the drawing surface elements paint on. Rectangles use
// x, y, width, height in display pixels. FillRect covers [x, x+w) and
// DrawRect outlines the inclusive rectangle x..x+w, y..y+h.
type Canvas interface {
	Style() style.Style

	FillRect(x, y, w, h int, c color.Color)
	DrawRect(x, y, w, h int, c color.Color)
	// VLine draws the inclusive vertical segment x, y0..y1.
	VLine(x, y0, y1 int, c color.Color)

	// Text draws s clipped to the box, vertically centred on the line height.
	Text(s string, x, y, w, h int, size float64, align Align, c color.Color)
	// Icon draws the named glyph at size pixels centred in the box.
	Icon(name string, x, y, w, h, size int, c color.Color)

	StrokeRoundRect(x, y, w, h, arc int, c color.Color)
	FillRoundRect(x, y, w, h, arc int, c color.Color)
	// FillRoundRectGradient fills with a vertical gradient from top (at y0)
	// to bottom (at y1).
	FillRoundRectGradient(x, y, w, h, arc int, top color.Color, y0 int, bottom color.Color, y1 int)
}
