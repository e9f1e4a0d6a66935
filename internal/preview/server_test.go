package preview

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/canvasfx/internal/app"
	"github.com/coreman2200/canvasfx/internal/config"
	"github.com/coreman2200/canvasfx/internal/diagnostics"
)

func setup(t *testing.T) (*app.Core, *Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	require.NoError(t, yaml.Unmarshal([]byte(`
viewport: {width: 160, height: 100, dpr: 1}
sections:
  - name: hero
    height: 100
    effects:
      - kind: neural-organic
        id: net
  - name: below
    height: 300
    effects:
      - kind: particles
        id: field
        options: {count: 20}
`), cfg))
	core, err := app.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	s := New(core, zerolog.Nop())
	s.Throttle = 0
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
		core.Close()
	})
	return core, s, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func (s *Server) count(set map[*client]bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(set)
}

func TestFramesAreStreamedAsPNG(t *testing.T) {
	core, s, ts := setup(t)
	conn := dial(t, ts, "/ws")
	require.Eventually(t, func() bool { return s.count(s.clients) == 1 }, time.Second, 5*time.Millisecond)

	core.Step(16 * time.Millisecond)
	require.NoError(t, s.Present(core.Frame()))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg frameMsg
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, uint64(1), msg.FrameID)
	assert.Equal(t, 160, msg.Width)
	raw, err := base64.StdEncoding.DecodeString(msg.PNG)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestPresentWithoutClientsIsFree(t *testing.T) {
	core, s, _ := setup(t)
	require.NoError(t, s.Present(core.Frame()))
	assert.Zero(t, s.frameID)
}

func TestControlQueuesInput(t *testing.T) {
	core, _, ts := setup(t)
	conn := dial(t, ts, "/control")

	send := func(c Control) reply {
		require.NoError(t, conn.WriteJSON(c))
		var r reply
		require.NoError(t, conn.ReadJSON(&r))
		return r
	}
	assert.True(t, send(Control{Type: "scroll", Y: 150}).OK)
	assert.True(t, send(Control{Type: "theme", Theme: "neural-circuit"}).OK)
	assert.True(t, send(Control{Type: "highContrast", On: true}).OK)

	r := send(Control{Type: "theme", Theme: "vaporwave"})
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "vaporwave")
	assert.False(t, send(Control{Type: "resize"}).OK)
	assert.False(t, send(Control{Type: "teleport"}).OK)

	// replies are sent after queueing, so one step applies everything
	core.Step(16 * time.Millisecond)
	assert.Equal(t, 150.0, core.Page.ScrollY())
	assert.Equal(t, "neural-circuit", core.Theme.Name())
	assert.True(t, core.HighContrast())
}

func TestDiagnosticsAreStreamed(t *testing.T) {
	core, s, ts := setup(t)
	core.Diag.Report("stored", "test", diagnostics.Low, nil)
	conn := dial(t, ts, "/diag")

	var d diagnostics.Diagnostic
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "stored", d.Summary)

	require.Eventually(t, func() bool { return s.count(s.diagClients) == 1 }, time.Second, 5*time.Millisecond)
	core.Diag.Report("live", "test", diagnostics.High, nil)
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "live", d.Summary)
	assert.Equal(t, diagnostics.High, d.Severity)
}

func TestSlowDiagReaderDoesNotBlockReports(t *testing.T) {
	core, s, ts := setup(t)
	dial(t, ts, "/diag") // never read from
	require.Eventually(t, func() bool { return s.count(s.diagClients) == 1 }, time.Second, 5*time.Millisecond)

	big := strings.Repeat("x", 256<<10)
	var worst time.Duration
	for range 300 {
		start := time.Now()
		core.Diag.Report("flood", "test", diagnostics.Low, map[string]any{"payload": big})
		worst = max(worst, time.Since(start))
	}
	assert.Less(t, worst, 50*time.Millisecond)

	// the server keeps serving other readers
	fresh := dial(t, ts, "/diag")
	var d diagnostics.Diagnostic
	require.NoError(t, fresh.ReadJSON(&d))
	assert.Equal(t, "flood", d.Summary)
}

func TestDiagBacklogArrivesInOrderOnce(t *testing.T) {
	core, _, ts := setup(t)
	for i := range 10 {
		core.Diag.Report(fmt.Sprintf("stored %d", i), "test", diagnostics.Low, nil)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 10 {
			core.Diag.Report(fmt.Sprintf("live %d", i), "test", diagnostics.Low, nil)
		}
	}()
	conn := dial(t, ts, "/diag")
	<-done

	seen := map[string]bool{}
	var got []string
	for range 20 {
		var d diagnostics.Diagnostic
		require.NoError(t, conn.ReadJSON(&d))
		assert.False(t, seen[d.ID], d.ID)
		seen[d.ID] = true
		got = append(got, d.Summary)
	}
	for i := range 10 {
		assert.Equal(t, fmt.Sprintf("stored %d", i), got[i])
	}
}

func TestHealth(t *testing.T) {
	core, _, ts := setup(t)
	core.Step(16 * time.Millisecond)
	core.Step(32 * time.Millisecond)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, float64(60), h["fps"])
	assert.Equal(t, float64(0), h["frame_id"])
	assert.Equal(t, float64(0), h["dropped"])
	assert.Equal(t, float64(2), h["steps"])
	assert.Contains(t, h, "timers")
}
