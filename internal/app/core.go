package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/push2"
	"github.com/coreman2200/funtimes-pushbridge/internal/render"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
	"github.com/coreman2200/funtimes-pushbridge/internal/testpattern"
	"github.com/coreman2200/funtimes-pushbridge/internal/udp"
)

var (
	ErrNoDevice    = errors.New("usb output is disabled")
	ErrTestRunning = errors.New("a test pattern is already running")
)

type Options struct {
	Refresh physic.Frequency
	// Opener is nil when USB output is disabled.
	Opener push2.Opener
	// Reconnect is the retry interval while disconnected; 0 disables it.
	Reconnect time.Duration
	Style     style.Style
	Icons     *render.IconCache
	// TestStep is how long each test pattern frame is held; 0 means 500ms.
	TestStep time.Duration
}

// Core owns the current scene and style and wires the listener, renderer,
// pump and display together.
type Core struct {
	Eng     *render.Engine
	Display *push2.Display
	UDP     *udp.Listener
	Pump    *Pump

	diag      diagnostics.Sink
	reconnect time.Duration
	testStep  time.Duration
	testing   atomic.Bool

	mu    sync.Mutex // orders state reads with the render that uses them
	scene atomic.Pointer[scene.Scene]
	style atomic.Pointer[style.Style]

	started time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewCore(opts Options, diag diagnostics.Sink) *Core {
	if diag == nil {
		diag = diagnostics.Discard
	}
	c := &Core{
		Eng:       render.NewEngine(opts.Icons, diag),
		diag:      diag,
		reconnect: opts.Reconnect,
		testStep:  opts.TestStep,
	}
	if c.testStep <= 0 {
		c.testStep = 500 * time.Millisecond
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	st := opts.Style
	if st == (style.Style{}) {
		st = style.Default()
	}
	c.style.Store(&st)
	c.scene.Store(scene.Empty())

	var sink FrameSink = discardSink{}
	if opts.Opener != nil {
		c.Display = push2.New(opts.Opener, diag)
		sink = c.Display
	}
	c.Pump = NewPump(c.Eng, sink, opts.Refresh, diag)
	c.UDP = udp.NewListener(c, diag)
	return c
}

// Start renders the empty scene, then starts the pump, the listener and the
// display in that order. A missing device is reported and is not fatal.
func (c *Core) Start(ctx context.Context, port int) error {
	c.started = time.Now()
	c.Changed()

	context.AfterFunc(ctx, c.cancel)
	ctx = c.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Pump.Run(ctx)
	}()

	if err := c.Listen(port); err != nil {
		return err
	}
	if c.Display != nil {
		_ = c.Display.Connect()
		if c.reconnect > 0 {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.keepConnected(ctx)
			}()
		}
	}
	return nil
}

func (c *Core) keepConnected(ctx context.Context) {
	t := time.NewTicker(c.reconnect)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !c.Display.Connected() {
				_ = c.Display.Connect()
			}
		}
	}
}

// Publish replaces the scene and re-renders.
func (c *Core) Publish(s *scene.Scene) {
	if s == nil {
		s = scene.Empty()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scene.Store(s)
	c.renderLocked()
}

// SetStyle replaces the style and re-renders.
func (c *Core) SetStyle(st style.Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style.Store(&st)
	c.renderLocked()
}

// Changed re-renders the current scene with the current style.
func (c *Core) Changed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked()
}

func (c *Core) renderLocked() {
	if c.testing.Load() {
		return
	}
	c.Eng.Render(c.scene.Load(), *c.style.Load())
}

// RunTest shows plan in place of the scene, one frame per test step, then
// restores the scene. The returned channel closes when the test ends.
func (c *Core) RunTest(plan testpattern.Plan) (<-chan struct{}, error) {
	if !plan.Kind.Valid() {
		c.diag.Report(diagnostics.Diagnostic{
			Severity: diagnostics.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
			Evidence: map[string]any{"name": string(plan.Kind)},
		})
		return nil, fmt.Errorf("unknown test %q", plan.Kind)
	}
	if !c.testing.CompareAndSwap(false, true) {
		return nil, ErrTestRunning
	}
	c.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: string(plan.Kind)})

	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		r := testpattern.NewRunner(plan)
		t := time.NewTicker(c.testStep)
		defer t.Stop()
		for i := 0; i < r.Steps(); i++ {
			c.Eng.Paint(func(dst *image.RGBA) { r.Step(dst) })
			select {
			case <-c.ctx.Done():
				c.testing.Store(false)
				return
			case <-t.C:
			}
		}
		c.testing.Store(false)
		c.Changed()
		c.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "TEST.DONE", Summary: "Test complete"})
	}()
	return done, nil
}

// Testing reports whether a test pattern is on screen.
func (c *Core) Testing() bool { return c.testing.Load() }

func (c *Core) Scene() *scene.Scene { return c.scene.Load() }
func (c *Core) Style() style.Style  { return *c.style.Load() }

// Listen restarts the listener on port.
func (c *Core) Listen(port int) error { return c.UDP.Start(port) }

func (c *Core) Connect() error {
	if c.Display == nil {
		return ErrNoDevice
	}
	return c.Display.Connect()
}

func (c *Core) Disconnect() error {
	if c.Display == nil {
		return nil
	}
	return c.Display.Disconnect()
}

// Connected is false when USB output is disabled.
func (c *Core) Connected() bool { return c.Display != nil && c.Display.Connected() }

func (c *Core) Uptime() time.Duration {
	if c.started.IsZero() {
		return 0
	}
	return time.Since(c.started)
}

// Close stops the listener and the pump, then releases the display.
func (c *Core) Close() error {
	c.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "APP.STOP", Summary: "Stopping UDP..."})
	c.UDP.Stop()
	c.cancel()
	c.wg.Wait()
	return c.Disconnect()
}

type discardSink struct{}

func (discardSink) SendPayload([]byte) error { return nil }
func (discardSink) Connected() bool          { return false }
