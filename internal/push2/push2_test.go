package push2

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"

	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
)

// playbackLink replays an expected transfer sequence.
type playbackLink struct {
	conntest.Playback
	closed int
}

func (l *playbackLink) Close() error {
	l.closed++
	return nil
}

// recordLink records transfers and optionally fails them.
type recordLink struct {
	conntest.Record
	mu     sync.Mutex
	fail   error
	closed int
}

func (l *recordLink) Tx(w, r []byte) error {
	l.mu.Lock()
	fail := l.fail
	l.mu.Unlock()
	if fail != nil {
		return fail
	}
	return l.Record.Tx(w, r)
}

func (l *recordLink) Close() error {
	l.mu.Lock()
	l.closed++
	l.mu.Unlock()
	return nil
}

func opener(l Link) Opener {
	return OpenerFunc(func() (Link, error) { return l, nil })
}

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, geom.DisplayWidth, geom.DisplayHeight))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPack(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b uint8
		b0, b1  byte
	}{
		{"black", 0, 0, 0, 0x00, 0x00},
		{"white", 255, 255, 255, 0xFF, 0xFF},
		{"red", 255, 0, 0, 0x1F, 0x00},
		{"green", 0, 255, 0, 0xE0, 0x07},
		{"blue", 0, 0, 255, 0x00, 0xF8},
		{"gray", 128, 128, 128, 0x10, 0x84},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b0, b1 := Pack(c.r, c.g, c.b)
			assert.Equal(t, c.b0, b0)
			assert.Equal(t, c.b1, b1)
		})
	}
}

func TestPackRoundsEveryChannelValue(t *testing.T) {
	want := func(v, max int) int { return int(math.Round(float64(v) / 255 * float64(max))) }
	for v := 0; v < 256; v++ {
		b0, b1 := Pack(uint8(v), 0, 0)
		require.Equal(t, want(v, 31), int(b0&0x1F), "red %d", v)
		require.Zero(t, b1, "red %d", v)

		b0, b1 = Pack(0, uint8(v), 0)
		require.Equal(t, want(v, 63), int(b0>>5)|int(b1&0x07)<<3, "green %d", v)

		b0, b1 = Pack(0, 0, uint8(v))
		require.Equal(t, want(v, 31), int(b1>>3), "blue %d", v)
		require.Zero(t, b0, "blue %d", v)
	}
}

func TestUnpackRoundTripsPrimaries(t *testing.T) {
	for _, c := range []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 255, 255}, {0, 0, 0, 255}} {
		assert.Equal(t, c, Unpack(Pack(c.R, c.G, c.B)))
		assert.Equal(t, c, Model.Convert(c))
	}
}

func TestEncodeLayout(t *testing.T) {
	buf := make([]byte, PayloadSize)
	require.Equal(t, 327680, PayloadSize)
	require.NoError(t, Encode(buf, solid(color.RGBA{R: 255, A: 255})))

	for y := 0; y < geom.DisplayHeight; y++ {
		row := buf[y*RowSize : (y+1)*RowSize]
		assert.Equal(t, []byte{0x1F, 0x00}, row[:2])
		assert.Equal(t, []byte{0x1F, 0x00}, row[2*geom.DisplayWidth-2:2*geom.DisplayWidth])
		for i, b := range row[2*geom.DisplayWidth:] {
			if b != 0 {
				t.Fatalf("row %d padding byte %d = %#x", y, i, b)
			}
		}
	}
}

func TestEncodeGenericImageMatchesRGBA(t *testing.T) {
	src := solid(color.RGBA{R: 10, G: 200, B: 90, A: 255})
	nrgba := image.NewNRGBA(src.Rect)
	copy(nrgba.Pix, src.Pix)

	a, b := make([]byte, PayloadSize), make([]byte, PayloadSize)
	require.NoError(t, Encode(a, src))
	require.NoError(t, Encode(b, nrgba))
	assert.Equal(t, a, b)
}

func TestEncodeSmallImageLeavesBlack(t *testing.T) {
	buf := make([]byte, PayloadSize)
	for i := range buf {
		buf[i] = 0xAA
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	require.NoError(t, Encode(buf, img))
	assert.Equal(t, []byte{0xE0, 0x07, 0, 0, 0, 0}, buf[:6])
	assert.Equal(t, byte(0), buf[RowSize])
}

func TestEncodeRejectsWrongBuffer(t *testing.T) {
	assert.Error(t, Encode(make([]byte, 10), solid(color.RGBA{})))
}

func TestSendWritesHeaderThenPayload(t *testing.T) {
	payload := make([]byte, PayloadSize)
	require.NoError(t, Encode(payload, solid(color.RGBA{G: 255, A: 255})))

	l := &playbackLink{Playback: conntest.Playback{Ops: []conntest.IO{
		{W: Header[:]},
		{W: payload},
	}}}
	d := New(opener(l), nil)
	require.NoError(t, d.Connect())
	require.NoError(t, d.Send(solid(color.RGBA{G: 255, A: 255})))
	require.NoError(t, l.Playback.Close())
	assert.Equal(t, uint64(1), d.FramesSent())
}

func TestHeaderBytes(t *testing.T) {
	assert.Equal(t, []byte{0xEF, 0xCD, 0xAB, 0x89, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, Header[:])
}

func TestSendWithoutDeviceIsNoop(t *testing.T) {
	d := New(opener(&recordLink{}), nil)
	assert.NoError(t, d.Send(solid(color.RGBA{})))
	assert.NoError(t, d.SendPayload(make([]byte, PayloadSize)))
	assert.Equal(t, uint64(0), d.FramesSent())
}

func TestSendAfterDisconnectIsNoop(t *testing.T) {
	l := &recordLink{}
	d := New(opener(l), nil)
	require.NoError(t, d.Connect())
	require.NoError(t, d.Send(solid(color.RGBA{})))
	require.Len(t, l.Ops, 2)

	require.NoError(t, d.Disconnect())
	require.NoError(t, d.Disconnect())
	assert.Equal(t, 1, l.closed)
	assert.False(t, d.Connected())

	require.NoError(t, d.Send(solid(color.RGBA{})))
	assert.Len(t, l.Ops, 2)
}

func TestFailedTransferDropsFrame(t *testing.T) {
	l := &recordLink{fail: errors.New("timeout")}
	d := New(opener(l), nil)
	require.NoError(t, d.Connect())
	err := d.Send(solid(color.RGBA{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header transfer")
	assert.Equal(t, uint64(1), d.FramesDropped())
	assert.True(t, d.Connected(), "a failed transfer does not disconnect")
}

func TestConnectFailures(t *testing.T) {
	for _, want := range []error{ErrDeviceNotFound, ErrClaim} {
		d := New(OpenerFunc(func() (Link, error) { return nil, want }), nil)
		assert.ErrorIs(t, d.Connect(), want)
		assert.False(t, d.Connected())
	}
}

func TestConnectTwiceOpensOnce(t *testing.T) {
	opens := 0
	d := New(OpenerFunc(func() (Link, error) {
		opens++
		return &recordLink{}, nil
	}), nil)
	require.NoError(t, d.Connect())
	require.NoError(t, d.Connect())
	assert.Equal(t, 1, opens)
}

func TestDisconnectRacesSend(t *testing.T) {
	l := &recordLink{}
	d := New(opener(l), nil)
	require.NoError(t, d.Connect())
	img := solid(color.RGBA{B: 255, A: 255})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = d.Send(img)
		}
	}()
	go func() {
		defer wg.Done()
		_ = d.Disconnect()
	}()
	wg.Wait()

	// every transfer that started completed as a pair
	assert.Equal(t, 0, len(l.Ops)%2)
	assert.Equal(t, 1, l.closed)
}

func TestDisconnectDuringConnectLeavesDisconnected(t *testing.T) {
	l := &recordLink{}
	entered, release := make(chan struct{}), make(chan struct{})
	var first sync.Once
	d := New(OpenerFunc(func() (Link, error) {
		first.Do(func() {
			close(entered)
			<-release
		})
		return l, nil
	}), nil)

	connected := make(chan error, 1)
	go func() { connected <- d.Connect() }()
	<-entered

	disconnected := make(chan error, 1)
	go func() { disconnected <- d.Disconnect() }()
	time.Sleep(10 * time.Millisecond)
	close(release)

	require.NoError(t, <-connected)
	require.NoError(t, <-disconnected)
	assert.False(t, d.Connected())
	assert.Equal(t, 1, l.closed)

	require.NoError(t, d.Connect())
	assert.True(t, d.Connected(), "a later Connect opens the device again")
}

func TestDrawPartialRegion(t *testing.T) {
	l := &recordLink{}
	d := New(opener(l), nil)
	require.NoError(t, d.Connect())
	assert.Equal(t, image.Rect(0, 0, 960, 160), d.Bounds())

	patch := image.NewUniform(color.RGBA{R: 255, A: 255})
	require.NoError(t, d.Draw(image.Rect(10, 0, 12, 1), patch, image.Point{}))
	require.Len(t, l.Ops, 2)
	frame := l.Ops[1].W
	assert.Equal(t, []byte{0, 0}, frame[18:20])
	assert.Equal(t, []byte{0x1F, 0x00}, frame[20:22])
	assert.Equal(t, []byte{0x1F, 0x00}, frame[22:24])
	assert.Equal(t, []byte{0, 0}, frame[24:26])

	require.NoError(t, d.Halt())
	assert.False(t, d.Connected())
}
