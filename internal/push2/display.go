package push2

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrClaim          = errors.New("unable to claim interface")
)

// Link is an open bulk OUT pipe to the display. Each Tx is one transfer.
type Link interface {
	conn.Conn
	Close() error
}

// Opener discovers and opens the device.
type Opener interface {
	Open() (Link, error)
}

type OpenerFunc func() (Link, error)

func (f OpenerFunc) Open() (Link, error) { return f() }

// Display owns the device link. Send is a no-op while disconnected, and a
// failed transfer drops the frame without retrying.
type Display struct {
	opener Opener
	diag   diagnostics.Sink

	connected atomic.Bool

	mu      sync.Mutex
	link    Link
	payload []byte
	canvas  *image.RGBA

	sent    atomic.Uint64
	dropped atomic.Uint64
}

var _ display.Drawer = (*Display)(nil)

func New(opener Opener, diag diagnostics.Sink) *Display {
	if diag == nil {
		diag = diagnostics.Discard
	}
	return &Display{
		opener:  opener,
		diag:    diag,
		payload: make([]byte, PayloadSize),
	}
}

// Connect opens the device. Connecting an open display does nothing.
func (d *Display) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.link != nil {
		return nil
	}
	l, err := d.opener.Open()
	if err != nil {
		d.diag.Report(diagnostics.Diagnostic{
			Severity: diagnostics.Err, Code: "USB.CONNECT",
			Summary: "Could not connect to the display", Detail: err.Error(),
		})
		return err
	}
	d.link = l
	d.connected.Store(true)
	d.diag.Report(diagnostics.Diagnostic{
		Severity: diagnostics.Info, Code: "USB.CONNECTED",
		Summary: "Display connected", Detail: l.String(),
	})
	return nil
}

// Disconnect stops further sends, waits for an in-flight transfer and
// releases the device. It is safe to call repeatedly.
func (d *Display) Disconnect() error {
	d.connected.Store(false)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.link == nil {
		return nil
	}
	l := d.link
	d.link = nil
	// a Connect that held the lock may have set the flag after the store above
	d.connected.Store(false)
	if err := l.Close(); err != nil {
		d.diag.Report(diagnostics.Diagnostic{
			Severity: diagnostics.Warn, Code: "USB.RELEASE",
			Summary: "Unable to release interface", Detail: err.Error(),
		})
		return err
	}
	d.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "USB.DISCONNECTED", Summary: "Display disconnected"})
	return nil
}

func (d *Display) Connected() bool { return d.connected.Load() }

// Send encodes img and transfers it.
func (d *Display) Send(img image.Image) error {
	if !d.connected.Load() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := Encode(d.payload, img); err != nil {
		return err
	}
	return d.sendLocked(d.payload)
}

// SendPayload transfers an already encoded frame.
func (d *Display) SendPayload(p []byte) error {
	if len(p) != PayloadSize {
		return fmt.Errorf("payload is %d bytes, want %d", len(p), PayloadSize)
	}
	if !d.connected.Load() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendLocked(p)
}

func (d *Display) sendLocked(p []byte) error {
	if d.link == nil {
		return nil
	}
	if err := d.link.Tx(Header[:], nil); err != nil {
		d.dropped.Inc()
		return fmt.Errorf("header transfer: %w", err)
	}
	if err := d.link.Tx(p, nil); err != nil {
		d.dropped.Inc()
		return fmt.Errorf("frame transfer: %w", err)
	}
	d.sent.Inc()
	return nil
}

// FramesSent and FramesDropped count completed and failed transfers.
func (d *Display) FramesSent() uint64    { return d.sent.Load() }
func (d *Display) FramesDropped() uint64 { return d.dropped.Load() }

func (d *Display) String() string { return "Push 2 display" }

// Halt disconnects.
func (d *Display) Halt() error { return d.Disconnect() }

func (d *Display) ColorModel() color.Model { return Model }

func (d *Display) Bounds() image.Rectangle {
	return image.Rect(0, 0, geom.DisplayWidth, geom.DisplayHeight)
}

// Draw updates r from src at sp and sends the whole frame.
func (d *Display) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if !d.connected.Load() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.canvas == nil {
		d.canvas = image.NewRGBA(d.Bounds())
	}
	draw.Draw(d.canvas, r.Intersect(d.canvas.Rect), src, sp, draw.Src)
	if err := Encode(d.payload, d.canvas); err != nil {
		return err
	}
	return d.sendLocked(d.payload)
}
