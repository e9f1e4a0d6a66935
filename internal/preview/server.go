// Package preview serves composed frames and diagnostics to a browser over
// websockets and feeds pointer, scroll and toggle input back to the app.
package preview

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gg"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/app"
	"github.com/coreman2200/canvasfx/internal/diagnostics"
)

const writeWait = 200 * time.Millisecond

// Outbound queue depth per connection. Frames go stale quickly so only a
// couple are kept; diagnostics get more room. A full queue drops the message.
const (
	frameQueue = 2
	diagQueue  = 64
)

// Control is one input message on /control.
type Control struct {
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	DPR     float64 `json:"dpr,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	Section string  `json:"section,omitempty"`
	Key     string  `json:"key,omitempty"`
	On      bool    `json:"on,omitempty"`
	// ID and Pattern address one instance for "pattern".
	ID      string `json:"id,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

type reply struct {
	OK    bool   `json:"ok"`
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	PNG     string `json:"png"`
}

// client is one streaming connection. Its writer goroutine is the only one
// that writes to conn; everyone else queues.
type client struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
}

// queue hands msg to the writer without blocking. It reports false when the
// queue is full and msg was dropped.
func (c *client) queue(msg []byte) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

// Server is a host.Presenter that streams frames to every /ws client.
type Server struct {
	core     *app.Core
	log      zerolog.Logger
	upgrader websocket.Upgrader
	// Throttle limits how often frames are encoded and sent.
	Throttle time.Duration

	mu          sync.RWMutex
	clients     map[*client]bool
	diagClients map[*client]bool
	frameID     uint64
	lastEmit    time.Time
	startTime   time.Time
	dropped     atomic.Uint64
}

func New(core *app.Core, log zerolog.Logger) *Server {
	s := &Server{
		core:        core,
		log:         log.With().Str("module", "preview").Logger(),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		Throttle:    50 * time.Millisecond,
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
		startTime:   time.Now(),
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.clients, frameQueue, nil)
}

// HandleDiagWS streams stored diagnostics, then every new one. Reports only
// ever queue, so a slow reader never holds up the goroutine that reported.
func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	depth := diagQueue + s.core.Cfg.MaxStoredErrors
	s.subscribe(w, r, s.diagClients, depth, func(c *client) func() {
		return s.core.Diag.Follow(func(d diagnostics.Diagnostic) {
			b, _ := json.Marshal(d)
			s.deliver(c, b)
		})
	})
}

// subscribe upgrades the request and runs the connection's writer and
// reader. follow, when set, attaches an extra feed and returns its cancel.
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request, set map[*client]bool, depth int, follow func(*client) func()) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("upgrade")
		return
	}
	c := &client{conn: conn, out: make(chan []byte, depth), done: make(chan struct{})}
	go s.write(c)

	s.mu.Lock()
	set[c] = true
	s.mu.Unlock()
	unfollow := func() {}
	if follow != nil {
		unfollow = follow(c)
	}

	go func() {
		defer func() {
			unfollow()
			s.mu.Lock()
			delete(set, c)
			s.mu.Unlock()
			close(c.done)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// write drains c's queue until the connection goes away.
func (s *Server) write(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug().Err(err).Msg("write")
				c.conn.Close()
				return
			}
		}
	}
}

func (s *Server) deliver(c *client, msg []byte) {
	if !c.queue(msg) {
		s.dropped.Add(1)
	}
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
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
		rep := reply{OK: true}
		if err := json.Unmarshal(data, &msg); err != nil {
			rep = reply{Error: err.Error()}
		} else {
			rep.Type = msg.Type
			if err := s.apply(msg); err != nil {
				rep.OK, rep.Error = false, err.Error()
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(rep); err != nil {
			return
		}
	}
}

// apply validates msg and queues it for the scheduler goroutine.
func (s *Server) apply(msg Control) error {
	c := s.core
	switch msg.Type {
	case "pointer":
		c.Do(func() { c.Pointer(msg.X, msg.Y) })
	case "leave":
		c.Do(c.PointerLeave)
	case "scroll":
		if msg.Section != "" {
			c.Do(func() { _ = c.ScrollTo(msg.Section) })
		} else {
			c.Do(func() { c.Scroll(msg.Y) })
		}
	case "theme":
		if _, ok := c.Themes.Get(msg.Theme); !ok {
			return fmt.Errorf("unknown theme %q", msg.Theme)
		}
		c.Do(func() { _ = c.SetTheme(msg.Theme) })
	case "reducedMotion":
		c.Do(func() { c.SetReducedMotion(msg.On) })
	case "highContrast":
		c.Do(func() { c.SetHighContrast(msg.On) })
	case "key":
		c.Do(func() { c.Key(msg.Key) })
	case "resize":
		if msg.Width <= 0 || msg.Height <= 0 {
			return fmt.Errorf("resize needs a positive size")
		}
		c.Do(func() { c.Resize(msg.Width, msg.Height, msg.DPR) })
	case "pattern":
		c.Do(func() {
			if in, ok := c.Reg.Find(msg.ID); ok {
				if err := in.FormPattern(msg.Pattern); err != nil {
					c.Diag.Report(err.Error(), in.Kind(), diagnostics.Low, map[string]any{"pattern": msg.Pattern})
				}
			}
		})
	default:
		return fmt.Errorf("unknown control %q", msg.Type)
	}
	return nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
		"dropped":  s.dropped.Load(),
		"steps":    s.core.Sched.Frames(),
		"timers":   s.core.Sched.Timers(),
		"fps":      s.core.Cfg.FPS,
	})
}

// Present encodes img as PNG and broadcasts it, at most once per Throttle.
func (s *Server) Present(img image.Image) error {
	now := time.Now()
	s.mu.Lock()
	if len(s.clients) == 0 || s.lastEmit.Add(s.Throttle).After(now) {
		s.mu.Unlock()
		return nil
	}
	s.lastEmit = now
	s.frameID++
	id := s.frameID
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	b := img.Bounds()
	msg, _ := json.Marshal(frameMsg{
		T:       now.UnixNano(),
		FrameID: id,
		Width:   b.Dx(),
		Height:  b.Dy(),
		PNG:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	s.broadcast(s.clients, msg)
	return nil
}

func (s *Server) broadcast(set map[*client]bool, msg []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range set {
		s.deliver(c, msg)
	}
}

// Dropped is how many outbound messages were discarded on full queues.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Close disconnects every client. Their reader goroutines clean up.
func (s *Server) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.conn.Close()
	}
	for c := range s.diagClients {
		c.conn.Close()
	}
	return nil
}
