package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// Families lists the embedded font families by name.
var Families = map[string][]byte{
	"Go":           goregular.TTF,
	"Go Medium":    gomedium.TTF,
	"Go Bold":      gobold.TTF,
	"Go Italic":    goitalic.TTF,
	"Go Mono":      gomono.TTF,
	"Go Smallcaps": gosmallcaps.TTF,
}

var (
	fallbackOnce sync.Once
	fallback     *truetype.Font
)

func fallbackFont() *truetype.Font {
	fallbackOnce.Do(func() {
		// the embedded font is known good
		fallback, _ = freetype.ParseFont(goregular.TTF)
	})
	return fallback
}

// LoadFont resolves a family name or a TrueType file path.
func LoadFont(family string) (*truetype.Font, error) {
	if data, ok := Families[family]; ok {
		return freetype.ParseFont(data)
	}
	for name, data := range Families {
		if strings.EqualFold(name, family) {
			return freetype.ParseFont(data)
		}
	}
	data, err := os.ReadFile(family)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", family, err)
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", family, err)
	}
	return f, nil
}

// fontSet is the active font plus one face per pixel size. Not safe for
// concurrent use; the engine serialises renders.
type fontSet struct {
	family string
	font   *truetype.Font
	faces  map[float64]font.Face
}

// use switches to family, falling back to the default font. It reports
// whether the requested family failed to load.
func (fs *fontSet) use(family string) error {
	if fs.font != nil && fs.family == family {
		return nil
	}
	f, err := LoadFont(family)
	if err != nil {
		f = fallbackFont()
	}
	fs.family = family
	fs.font = f
	fs.faces = map[float64]font.Face{}
	return err
}

func (fs *fontSet) face(size float64) font.Face {
	if f, ok := fs.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(fs.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	fs.faces[size] = f
	return f
}
