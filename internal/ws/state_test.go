package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-pushbridge/internal/app"
	"github.com/coreman2200/funtimes-pushbridge/internal/config"
	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

func newTestState(t *testing.T, scale int) (*State, *httptest.Server) {
	t.Helper()
	j := diagnostics.NewJournal(zerolog.Nop(), 64)
	core := app.NewCore(app.Options{}, j)
	core.Changed()
	s := NewState(core, j, 50, scale)
	srv := httptest.NewServer(WithCORS(s.Routes()))
	t.Cleanup(func() {
		srv.Close()
		_ = core.Close()
	})
	return s, srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFramePNGIsScaled(t *testing.T) {
	_, srv := newTestState(t, 2)
	resp, err := http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestHealthReportsScene(t *testing.T) {
	s, srv := newTestState(t, 1)
	s.Core.Publish(scene.NewScene(&scene.ChannelSelector{}, &scene.List{}))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, s.Core.Scene().ID.String(), h.SceneID)
	assert.Len(t, h.Elements, 2)
	assert.GreaterOrEqual(t, h.Renders, uint64(2))
	assert.False(t, h.Connected)
}

func TestControlChangesStyleAndPort(t *testing.T) {
	s, srv := newTestState(t, 1)
	s.ConfigPath = filepath.Join(t.TempDir(), "saved.yaml")
	s.Config = config.Default()
	c := dial(t, srv, "/control")

	require.NoError(t, c.WriteJSON(map[string]any{"style": map[string]string{"border": "#010203"}, "port": 0}))
	var rep controlReply
	require.NoError(t, c.ReadJSON(&rep))
	assert.True(t, rep.OK, rep.Error)
	assert.Equal(t, "#010203", rep.Style.Border)
	assert.Equal(t, style.RGB(1, 2, 3), s.Core.Style().Border)
	assert.NotZero(t, rep.Port)

	saved, err := config.Load(s.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "#010203", saved.Style.Border)
	assert.Equal(t, rep.Port, saved.Port)

	require.NoError(t, c.WriteJSON(map[string]any{"reset_style": true}))
	require.NoError(t, c.ReadJSON(&rep))
	assert.Equal(t, style.Default(), s.Core.Style())

	require.NoError(t, c.WriteJSON(map[string]any{"style": map[string]string{"text": "bogus"}}))
	require.NoError(t, c.ReadJSON(&rep))
	assert.False(t, rep.OK)
	assert.Equal(t, style.Default(), s.Core.Style(), "a bad color leaves the style alone")
}

func TestControlConnectWithoutUSB(t *testing.T) {
	s, _ := newTestState(t, 1)
	on := true
	err := s.ApplyControl(Control{Connect: &on})
	assert.ErrorIs(t, err, app.ErrNoDevice)
}

func TestDiagStreamsBacklogThenLive(t *testing.T) {
	s, srv := newTestState(t, 1)
	s.Journal.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "T.ONE", Summary: "first"})
	c := dial(t, srv, "/diag")

	var d diagnostics.Diagnostic
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, c.ReadJSON(&d))
	assert.Equal(t, "T.ONE", d.Code)

	s.Journal.Report(diagnostics.Diagnostic{Severity: diagnostics.Warn, Code: "T.TWO", Summary: "second"})
	require.NoError(t, c.ReadJSON(&d))
	assert.Equal(t, "T.TWO", d.Code)
	assert.Equal(t, diagnostics.Warn, d.Severity)
}

func TestPreviewLoopStreamsPNG(t *testing.T) {
	s, srv := newTestState(t, 1)
	c := dial(t, srv, "/ws")
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.RunPreviewLoop(ctx)

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, b, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 960, img.Bounds().Dx())
}

func TestCORSPreflight(t *testing.T) {
	_, srv := newTestState(t, 1)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestControlRunsTestPattern(t *testing.T) {
	s, srv := newTestState(t, 1)
	c := dial(t, srv, "/control")

	require.NoError(t, c.WriteJSON(map[string]any{"runTest": "index_sweep"}))
	var rep controlReply
	require.NoError(t, c.ReadJSON(&rep))
	assert.False(t, rep.OK)
	assert.Contains(t, rep.Error, "index_sweep")

	require.NoError(t, c.WriteJSON(map[string]any{"runTest": "rgb_channels"}))
	require.NoError(t, c.ReadJSON(&rep))
	assert.True(t, rep.OK, rep.Error)
	assert.True(t, rep.Test)
	assert.True(t, s.Core.Testing())
}
