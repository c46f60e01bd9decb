package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/gift"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-pushbridge/internal/app"
	"github.com/coreman2200/funtimes-pushbridge/internal/config"
	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
	"github.com/coreman2200/funtimes-pushbridge/internal/testpattern"
)

const writeWait = 200 * time.Millisecond

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// State serves the frame preview, the diagnostics stream and the control
// socket for one running bridge.
type State struct {
	mu      sync.RWMutex
	Core    *app.Core
	Journal *diagnostics.Journal
	FPS     int
	Scale   int

	// ConfigPath, when set, receives the effective settings after each
	// control change.
	ConfigPath string
	Config     *config.Config

	frameID   uint64
	startTime time.Time
	clients   map[*websocket.Conn]bool
	scaler    *gift.GIFT
}

func NewState(core *app.Core, journal *diagnostics.Journal, fps, scale int) *State {
	s := &State{
		Core:      core,
		Journal:   journal,
		FPS:       max(1, fps),
		Scale:     max(1, scale),
		startTime: time.Now(),
		clients:   map[*websocket.Conn]bool{},
	}
	if s.Scale > 1 {
		b := core.Eng.CopyCurrent().Bounds()
		s.scaler = gift.New(gift.Resize(b.Dx()*s.Scale, b.Dy()*s.Scale, gift.NearestNeighborResampling))
	}
	return s
}

func (s *State) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/frame.png", s.HandleFrame)
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// FramePNG encodes the current frame, scaled for preview.
func (s *State) FramePNG() ([]byte, error) {
	var img image.Image = s.Core.Eng.CopyCurrent()
	if s.scaler != nil {
		dst := image.NewRGBA(s.scaler.Bounds(img.Bounds()))
		s.scaler.Draw(dst, img)
		img = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunPreviewLoop pushes PNG frames to websocket clients at FPS until ctx
// is done. Nothing is encoded while no client is connected.
func (s *State) RunPreviewLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.mu.RLock()
		n := len(s.clients)
		s.mu.RUnlock()
		if n == 0 {
			continue
		}
		b, err := s.FramePNG()
		if err != nil {
			log.Debug().Err(err).Msg("encode preview")
			continue
		}
		s.broadcastFrame(b)
	}
}

func (s *State) HandleFrame(w http.ResponseWriter, r *http.Request) {
	b, err := s.FramePNG()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleDiagWS sends the retained diagnostics, then live ones.
func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	live, cancel := s.Journal.Subscribe(64)
	backlog := s.Journal.Lines()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	go func() {
		defer func() {
			cancel()
			conn.Close()
		}()
		for _, d := range backlog {
			if writeJSON(conn, d) != nil {
				return
			}
		}
		for {
			select {
			case <-closed:
				return
			case d := <-live:
				if writeJSON(conn, d) != nil {
					return
				}
			}
		}
	}()
}

// Control is one message on the control socket. Unset fields are ignored.
type Control struct {
	Style      *style.Config `json:"style,omitempty"`
	ResetStyle bool          `json:"reset_style,omitempty"`
	Port       *int          `json:"port,omitempty"`
	Connect    *bool         `json:"connect,omitempty"`
	RunTest    string        `json:"runTest,omitempty"`
}

type controlReply struct {
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
	Style style.Config `json:"style"`
	Port  int          `json:"port"`
	USB   bool         `json:"usb_connected"`
	Test  bool         `json:"test_running"`
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendReply(conn, err)
			continue
		}
		s.sendReply(conn, s.ApplyControl(msg))
	}
}

// ApplyControl applies msg to the running bridge and persists the result.
func (s *State) ApplyControl(msg Control) error {
	var errs []error
	core := s.Core
	if msg.ResetStyle {
		core.SetStyle(style.Default())
	}
	if msg.Style != nil {
		st, err := msg.Style.Apply(core.Style())
		if err != nil {
			errs = append(errs, err)
		} else {
			core.SetStyle(st)
		}
	}
	if msg.Port != nil && (!core.UDP.Running() || *msg.Port != core.UDP.Port()) {
		errs = append(errs, core.Listen(*msg.Port))
	}
	if msg.Connect != nil {
		if *msg.Connect {
			errs = append(errs, core.Connect())
		} else {
			errs = append(errs, core.Disconnect())
		}
	}
	if msg.RunTest != "" {
		_, err := core.RunTest(testpattern.Plan{Kind: testpattern.Kind(msg.RunTest)})
		errs = append(errs, err)
	}
	s.saveConfig()
	return errors.Join(errs...)
}

func (s *State) saveConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConfigPath == "" || s.Config == nil {
		return
	}
	s.Config.Style = s.Core.Style().ToConfig()
	if p := s.Core.UDP.Port(); p != 0 {
		s.Config.Port = p
	}
	if err := config.Save(s.ConfigPath, s.Config); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("config save failed")
	}
}

func (s *State) sendReply(conn *websocket.Conn, err error) {
	rep := controlReply{
		OK:    err == nil,
		Style: s.Core.Style().ToConfig(),
		Port:  s.Core.UDP.Port(),
		USB:   s.Core.Connected(),
		Test:  s.Core.Testing(),
	}
	if err != nil {
		rep.Error = err.Error()
	}
	_ = writeJSON(conn, rep)
}

type health struct {
	SceneID       string   `json:"scene_id"`
	Elements      []string `json:"elements"`
	Renders       uint64   `json:"renders"`
	RenderMs      float64  `json:"render_ms"`
	FramesSent    uint64   `json:"frames_sent"`
	FramesDropped uint64   `json:"frames_dropped"`
	Connected     bool     `json:"usb_connected"`
	Port          int      `json:"port"`
	Datagrams     uint64   `json:"datagrams"`
	Failed        uint64   `json:"datagrams_failed"`
	PreviewFrames uint64   `json:"preview_frames"`
	Uptime        float64  `json:"uptime_s"`
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	core := s.Core
	sc := core.Scene()
	resp := health{
		SceneID:   sc.ID.String(),
		Elements:  sc.Kinds(),
		Renders:   core.Eng.Renders(),
		RenderMs:  float64(core.Eng.LastRenderTime()) / float64(time.Millisecond),
		Connected: core.Connected(),
		Port:      core.UDP.Port(),
		Datagrams: core.UDP.Received(),
		Failed:    core.UDP.Failed(),
		Uptime:    time.Since(s.startTime).Seconds(),
	}
	if core.Display != nil {
		resp.FramesSent = core.Display.FramesSent()
		resp.FramesDropped = core.Display.FramesDropped()
	}
	s.mu.RLock()
	resp.PreviewFrames = s.frameID
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) broadcastFrame(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameID++
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.BinaryMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func writeJSON(c *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, b)
}

// WithCORS allows browser previews served from another origin.
func WithCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
