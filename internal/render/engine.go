package render

import (
	"image"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/geom"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

// frame is one of the two framebuffers. Readers hold mu.RLock while they
// look at img; a render holds mu.Lock while it draws.
type frame struct {
	mu      sync.RWMutex
	img     *image.RGBA
	painter *painter
}

// Engine renders scenes into a pair of display-sized RGBA buffers. Render
// always draws into the buffer that is not current and then publishes it,
// so readers never observe a partly drawn frame.
type Engine struct {
	mu      sync.Mutex
	frames  [2]*frame
	back    int
	current atomic.Pointer[frame]

	fonts fontSet
	icons *IconCache
	diag  diagnostics.Sink

	last    style.Style
	hasLast bool

	renders    atomic.Uint64
	lastRender atomic.Duration
}

func NewEngine(icons *IconCache, diag diagnostics.Sink) *Engine {
	if icons == nil {
		icons = NewIconCache(DefaultIcons())
	}
	if diag == nil {
		diag = diagnostics.Discard
	}
	e := &Engine{icons: icons, diag: diag}
	_ = e.fonts.use(style.DefaultFont)

	bounds := image.Rect(0, 0, geom.DisplayWidth, geom.DisplayHeight)
	mask := image.NewRGBA(bounds)
	for i := range e.frames {
		img := image.NewRGBA(bounds)
		e.frames[i] = &frame{img: img, painter: newPainter(img, mask, &e.fonts, icons)}
	}
	e.current.Store(e.frames[1])
	return e
}

// Render draws s with st, publishes the result as the current frame and
// returns it. The returned image stays valid until the render after next;
// concurrent readers should use Snapshot.
func (e *Engine) Render(s *scene.Scene, st style.Style) *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()

	if e.hasLast && e.last.IconColorsDiffer(st) {
		e.icons.Clear()
	}
	if !e.hasLast || e.last.Font != st.Font {
		if err := e.fonts.use(st.Font); err != nil {
			e.diag.Report(diagnostics.Diagnostic{
				Severity: diagnostics.Warn, Code: "RENDER.FONT",
				Summary: "Could not load font; using " + style.DefaultFont, Detail: err.Error(),
			})
		}
	}
	e.last, e.hasLast = st, true

	f := e.frames[e.back]
	f.mu.Lock()
	p := f.painter
	p.begin(st)
	if s != nil {
		for i, col := range geom.Columns(len(s.Elements)) {
			s.Elements[i].Draw(p, col.Left, col.Width, geom.DisplayHeight)
		}
	}
	f.mu.Unlock()

	e.current.Store(f)
	e.back ^= 1
	e.renders.Inc()
	e.lastRender.Store(time.Since(start))

	e.reportMissing(p.missing)
	return f.img
}

// Paint publishes a frame drawn by fn in place of a scene. fn receives the
// back buffer with its previous contents.
func (e *Engine) Paint(fn func(dst *image.RGBA)) *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.frames[e.back]
	f.mu.Lock()
	fn(f.img)
	f.mu.Unlock()
	e.current.Store(f)
	e.back ^= 1
	return f.img
}

func (e *Engine) reportMissing(missing map[string]error) {
	names := make([]string, 0, len(missing))
	for n := range missing {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		e.diag.Report(diagnostics.Diagnostic{
			Severity: diagnostics.Warn, Code: "RENDER.ICON",
			Summary: "Could not load icon", Detail: missing[n].Error(),
			Evidence: map[string]any{"icon": n},
		})
	}
}

// Snapshot calls fn with the current frame. fn must not retain img.
func (e *Engine) Snapshot(fn func(img *image.RGBA)) {
	f := e.current.Load()
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn(f.img)
}

// CopyCurrent returns a private copy of the current frame.
func (e *Engine) CopyCurrent() *image.RGBA {
	var out *image.RGBA
	e.Snapshot(func(img *image.RGBA) {
		out = image.NewRGBA(img.Rect)
		copy(out.Pix, img.Pix)
	})
	return out
}

func (e *Engine) Icons() *IconCache { return e.icons }

func (e *Engine) Renders() uint64 { return e.renders.Load() }

// LastRenderTime is the duration of the most recent Render.
func (e *Engine) LastRenderTime() time.Duration { return e.lastRender.Load() }
