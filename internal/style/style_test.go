package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrighterDarker(t *testing.T) {
	assert.Equal(t, RGB(3, 3, 3), Brighter(RGB(0, 0, 0)))
	assert.Equal(t, RGB(110, 110, 110), Brighter(RGB(0x4D, 0x4D, 0x4D)))
	assert.Equal(t, RGB(255, 4, 0), Brighter(RGB(200, 1, 0)))
	assert.Equal(t, RGB(53, 53, 53), Darker(RGB(0x4D, 0x4D, 0x4D)))
	assert.Equal(t, RGB(0, 0, 0), Darker(RGB(1, 1, 1)))
}

func TestConfigApply(t *testing.T) {
	base := Default()

	got, err := Config{}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	got, err = Config{Font: "Go Mono", Text: "#ff0000", Fader: "rgb(1,2,3)"}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", got.Font)
	assert.Equal(t, RGB(255, 0, 0), got.Text)
	assert.Equal(t, RGB(1, 2, 3), got.Fader)
	assert.Equal(t, base.Border, got.Border)

	_, err = Config{VU: "not a color"}.Apply(base)
	assert.Error(t, err)
}

func TestToConfigRoundTrip(t *testing.T) {
	s := Default()
	got, err := s.ToConfig().Apply(Style{})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestIconColorsDiffer(t *testing.T) {
	a := Default()
	b := a
	b.Fader = RGB(1, 1, 1)
	assert.False(t, a.IconColorsDiffer(b))
	b.Border = RGB(9, 9, 9)
	assert.True(t, a.IconColorsDiffer(b))
}
