// Package style carries the user-adjustable look of the display: the font
// family and the six palette colors every element draws with.
package style

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/go-playground/colors"
)

// Style is an immutable snapshot. Compare with ==.
type Style struct {
	Font       string
	Text       color.RGBA
	Background color.RGBA
	Border     color.RGBA
	Fader      color.RGBA
	VU         color.RGBA
	Edit       color.RGBA
}

const DefaultFont = "Go"

func Default() Style {
	return Style{
		Font:       DefaultFont,
		Text:       RGB(0xF2, 0xF2, 0xF2),
		Background: RGB(0x4D, 0x4D, 0x4D),
		Border:     RGB(0, 0, 0),
		Fader:      RGB(83, 58, 33),
		VU:         RGB(0, 255, 0),
		Edit:       RGB(240, 127, 17),
	}
}

// IconColorsDiffer reports whether cached icons drawn with s are stale under o.
func (s Style) IconColorsDiffer(o Style) bool {
	return s.Text != o.Text || s.Border != o.Border
}

func RGB(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 0xFF} }

const factor = 0.7

// Brighter mirrors the AWT rule: black becomes (3,3,3), components below 3
// are raised to 3, then everything is divided by 0.7 and capped.
func Brighter(c color.RGBA) color.RGBA {
	const floor = 3 // int(1 / (1 - factor))
	r, g, b := int(c.R), int(c.G), int(c.B)
	if r == 0 && g == 0 && b == 0 {
		return color.RGBA{R: uint8(floor), G: uint8(floor), B: uint8(floor), A: c.A}
	}
	up := func(v int) uint8 {
		if v > 0 && v < floor {
			v = floor
		}
		v = int(float64(v) / factor)
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return color.RGBA{R: up(r), G: up(g), B: up(b), A: c.A}
}

func Darker(c color.RGBA) color.RGBA {
	down := func(v uint8) uint8 { return uint8(float64(v) * factor) }
	return color.RGBA{R: down(c.R), G: down(c.G), B: down(c.B), A: c.A}
}

// Config is the textual form used in config files and control messages.
// Empty fields keep the base value.
type Config struct {
	Font       string `yaml:"font,omitempty" json:"font,omitempty"`
	Text       string `yaml:"text,omitempty" json:"text,omitempty"`
	Background string `yaml:"background,omitempty" json:"background,omitempty"`
	Border     string `yaml:"border,omitempty" json:"border,omitempty"`
	Fader      string `yaml:"fader,omitempty" json:"fader,omitempty"`
	VU         string `yaml:"vu,omitempty" json:"vu,omitempty"`
	Edit       string `yaml:"edit,omitempty" json:"edit,omitempty"`
}

// Apply overlays c on base.
func (c Config) Apply(base Style) (Style, error) {
	out := base
	if f := strings.TrimSpace(c.Font); f != "" {
		out.Font = f
	}
	for _, f := range []struct {
		name string
		in   string
		dst  *color.RGBA
	}{
		{"text", c.Text, &out.Text},
		{"background", c.Background, &out.Background},
		{"border", c.Border, &out.Border},
		{"fader", c.Fader, &out.Fader},
		{"vu", c.VU, &out.VU},
		{"edit", c.Edit, &out.Edit},
	} {
		if strings.TrimSpace(f.in) == "" {
			continue
		}
		v, err := ParseColor(f.in)
		if err != nil {
			return base, fmt.Errorf("style %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return out, nil
}

// ParseColor accepts #RGB, #RRGGBB, rgb(), rgba() and their hsl variants.
// Alpha is dropped; the display has no transparency.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colors.Parse(strings.TrimSpace(s))
	if err != nil {
		return color.RGBA{}, err
	}
	v := c.ToRGB()
	return RGB(v.R, v.G, v.B), nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ToConfig is the inverse of Apply against the zero Style.
func (s Style) ToConfig() Config {
	return Config{
		Font:       s.Font,
		Text:       Hex(s.Text),
		Background: Hex(s.Background),
		Border:     Hex(s.Border),
		Fader:      Hex(s.Fader),
		VU:         Hex(s.VU),
		Edit:       Hex(s.Edit),
	}
}
