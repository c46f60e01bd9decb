package diagnostics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time     time.Time      `json:"time"`
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Evidence map[string]any `json:"evidence,omitempty"`
}

// String is the human-readable line.
func (d Diagnostic) String() string {
	if d.Detail == "" {
		return d.Summary
	}
	return d.Summary + ": " + d.Detail
}

// Sink receives diagnostics from every pipeline component.
type Sink interface {
	Report(d Diagnostic)
}

type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops everything.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Journal logs every diagnostic through zerolog, keeps the most recent ones
// and fans them out to subscribers. Slow subscribers miss lines.
type Journal struct {
	log zerolog.Logger

	mu   sync.Mutex
	ring []Diagnostic
	head int
	full bool
	subs map[int]chan Diagnostic
	next int
}

func NewJournal(logger zerolog.Logger, capacity int) *Journal {
	if capacity <= 0 {
		capacity = 256
	}
	return &Journal{
		log:  logger,
		ring: make([]Diagnostic, capacity),
		subs: map[int]chan Diagnostic{},
	}
}

func (j *Journal) Report(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	j.emit(d)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.ring[j.head] = d
	j.head = (j.head + 1) % len(j.ring)
	if j.head == 0 {
		j.full = true
	}
	for _, ch := range j.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

func (j *Journal) emit(d Diagnostic) {
	var ev *zerolog.Event
	switch d.Severity {
	case Err:
		ev = j.log.Error()
	case Warn:
		ev = j.log.Warn()
	default:
		ev = j.log.Info()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		ev = ev.Fields(d.Evidence)
	}
	ev.Msg(d.Summary)
}

// Lines returns the retained diagnostics, oldest first.
func (j *Journal) Lines() []Diagnostic {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.full {
		return append([]Diagnostic(nil), j.ring[:j.head]...)
	}
	out := make([]Diagnostic, 0, len(j.ring))
	out = append(out, j.ring[j.head:]...)
	return append(out, j.ring[:j.head]...)
}

// Subscribe registers a live listener. Call cancel to release it.
func (j *Journal) Subscribe(buffer int) (<-chan Diagnostic, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Diagnostic, buffer)
	j.mu.Lock()
	id := j.next
	j.next++
	j.subs[id] = ch
	j.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			j.mu.Lock()
			delete(j.subs, id)
			j.mu.Unlock()
			close(ch)
		})
	}
}
