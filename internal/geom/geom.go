// Package geom holds the fixed layout grid of the Push 2 display.
// Every element layout and the device row stride are derived from these.
package geom

const (
	DisplayWidth  = 960
	DisplayHeight = 160

	SeparatorSize = 2

	Unit       = DisplayHeight / 12
	DoubleUnit = 2 * Unit
	HalfUnit   = Unit / 2

	MenuHeight  = Unit + 2*SeparatorSize
	Inset       = SeparatorSize/2 + HalfUnit
	ControlsTop = MenuHeight + Inset

	// TrackRowHeight is int(1.6 * Unit).
	TrackRowHeight = Unit * 16 / 10

	// MaxValue is the full scale of fader, pan and send values.
	MaxValue  = 1024
	PanCenter = MaxValue / 2
)

// Column is the paint area of one grid element.
type Column struct {
	Left  int
	Width int
}

// Columns splits the display into n equal columns. The last DisplayWidth%n
// pixels are left unpainted.
func Columns(n int) []Column {
	if n <= 0 {
		return nil
	}
	grid := DisplayWidth / n
	cols := make([]Column, n)
	for i := range cols {
		cols[i] = Column{
			Left:  i*grid + SeparatorSize/2,
			Width: grid - SeparatorSize,
		}
	}
	return cols
}
