package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/exp/shiny/iconvg"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
)

var ErrIconNotFound = errors.New("icon not found")

// DefaultIcons maps the scene glyph names onto Material Design icons.
func DefaultIcons() map[string][]byte {
	return map[string][]byte{
		scene.IconAudioTrack:      icons.ImageAudiotrack,
		scene.IconInstrumentTrack: icons.HardwareKeyboard,
		scene.IconHybridTrack:     icons.AVQueueMusic,
		scene.IconGroupTrack:      icons.FileFolder,
		scene.IconEffectTrack:     icons.ImageTune,
		scene.IconMasterTrack:     icons.AVEqualizer,
		scene.IconLayer:           icons.MapsLayers,
		scene.IconRecordArm:       icons.AVFiberManualRecord,
		scene.IconSolo:            icons.AVHearing,
		scene.IconMute:            icons.AVVolumeOff,
	}
}

type iconKey struct {
	name string
	c    color.RGBA
	size int
}

// IconCache holds rasterised glyphs by name, color and size.
type IconCache struct {
	mu  sync.Mutex
	src map[string][]byte
	m   map[iconKey]*image.RGBA
}

func NewIconCache(src map[string][]byte) *IconCache {
	return &IconCache{src: src, m: map[iconKey]*image.RGBA{}}
}

// Get returns the glyph tinted with c. The image must not be modified.
func (ic *IconCache) Get(name string, c color.RGBA, size int) (*image.RGBA, error) {
	k := iconKey{name: name, c: c, size: size}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if img, ok := ic.m[k]; ok {
		return img, nil
	}
	data, ok := ic.src[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIconNotFound, name)
	}
	img, err := rasterise(data, c, size)
	if err != nil {
		return nil, fmt.Errorf("icon %s: %w", name, err)
	}
	ic.m[k] = img
	return img, nil
}

// Clear drops every cached glyph.
func (ic *IconCache) Clear() {
	ic.mu.Lock()
	ic.m = map[iconKey]*image.RGBA{}
	ic.mu.Unlock()
}

func (ic *IconCache) Len() int {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return len(ic.m)
}

// rasterise renders a single color IconVG glyph; palette slot 0 is the ink.
func rasterise(data []byte, c color.RGBA, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	md, err := iconvg.DecodeMetadata(data)
	if err != nil {
		return nil, err
	}
	md.Palette[0] = c
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	var z iconvg.Rasterizer
	z.SetDstImage(dst, dst.Bounds(), draw.Src)
	if err := iconvg.Decode(&z, data, &iconvg.DecodeOptions{Palette: &md.Palette}); err != nil {
		return nil, err
	}
	return dst, nil
}
