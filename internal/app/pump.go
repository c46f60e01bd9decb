package app

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/push2"
)

// FrameSource hands out the current frame for the duration of fn.
type FrameSource interface {
	Snapshot(fn func(img *image.RGBA))
}

// FrameSink accepts an encoded frame.
type FrameSink interface {
	SendPayload(p []byte) error
}

// A FrameSink that also implements Connected is skipped, frame encoding
// included, while it reports false.
type connectedSink interface {
	Connected() bool
}

// Pump sends the current frame to the device at a fixed rate, whether or not
// it changed. It owns the encode buffer.
type Pump struct {
	src    FrameSource
	dst    FrameSink
	period time.Duration
	diag   diagnostics.Sink

	payload []byte
	lastErr string

	ticks  atomic.Uint64
	errors atomic.Uint64
}

func NewPump(src FrameSource, dst FrameSink, rate physic.Frequency, diag diagnostics.Sink) *Pump {
	if rate <= 0 {
		rate = 60 * physic.Hertz
	}
	if diag == nil {
		diag = diagnostics.Discard
	}
	return &Pump{
		src:     src,
		dst:     dst,
		period:  rate.Period(),
		diag:    diag,
		payload: make([]byte, push2.PayloadSize),
	}
}

// Tick encodes and sends one frame. A failure is reported the first time
// its message is seen; repeats are only counted until a send succeeds.
// Tick is not safe for concurrent use.
func (p *Pump) Tick() error {
	p.ticks.Inc()
	if cs, ok := p.dst.(connectedSink); ok && !cs.Connected() {
		return nil
	}
	var err error
	p.src.Snapshot(func(img *image.RGBA) {
		err = push2.Encode(p.payload, img)
	})
	if err == nil {
		err = p.dst.SendPayload(p.payload)
	}
	if err == nil {
		p.lastErr = ""
		return nil
	}
	p.errors.Inc()
	if msg := err.Error(); msg != p.lastErr {
		p.lastErr = msg
		p.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Warn, Code: "PUMP.SEND", Summary: "Could not send frame", Detail: msg})
	} else {
		log.Debug().Err(err).Msg("frame dropped")
	}
	return err
}

// Run ticks until ctx is done.
func (p *Pump) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Tick()
		}
	}
}

func (p *Pump) Period() time.Duration { return p.period }
func (p *Pump) Ticks() uint64         { return p.ticks.Load() }
func (p *Pump) Errors() uint64        { return p.errors.Load() }
