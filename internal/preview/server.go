// Package preview streams a pattern's hardware frames, and the table they
// were encoded with, to browser clients.
package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	diag "github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/led"
	"github.com/coreman2200/arcaluminis-wiring/internal/pattern"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

type Server struct {
	mu  sync.RWMutex
	pat *pattern.Pattern
	fps int
	// rate wakes Run when fps changes
	rate chan struct{}

	Driver     led.Driver
	DriverName string

	frameID     uint64
	cursor      int
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	testRunner  *calib.Runner

	// gorilla connections allow one writer at a time
	wmu      sync.Mutex
	upgrader websocket.Upgrader
}

func New(p *pattern.Pattern, fps int) *Server {
	if fps <= 0 {
		fps = led.DefaultFPS
	}
	return &Server{
		pat:         p,
		fps:         fps,
		rate:        make(chan struct{}, 1),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)
	r.Get("/ws", s.HandleFramesWS)
	r.Get("/diag", s.HandleDiagWS)
	r.Get("/control", s.HandleControlWS)
	r.Get("/topology", s.HandleTopology)
	r.Get("/health", s.HandleHealth)
	return r
}

// FPS is the current render rate.
func (s *Server) FPS() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fps
}

// SetFPS changes the render rate of a running loop; n <= 0 is ignored.
func (s *Server) SetFPS(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.fps = n
	s.mu.Unlock()
	select {
	case s.rate <- struct{}{}:
	default:
	}
}

// Run ticks the render loop at FPS until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.FPS()))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.rate:
			fps := s.FPS()
			ticker.Reset(time.Second / time.Duration(fps))
			log.Debug().Int("fps", fps).Msg("render rate changed")
		case <-ticker.C:
			if _, err := s.Tick(); err != nil {
				log.Error().Err(err).Msg("render tick")
				s.Push(diag.FromError(err))
			}
		}
	}
}

// Tick renders the next hardware frame, writes it to the driver and
// broadcasts it.
func (s *Server) Tick() ([]byte, error) {
	s.mu.Lock()
	p := s.pat
	var (
		buf []byte
		err error
	)
	if s.testRunner != nil {
		buf = make([]byte, p.LEDs()*3)
		if !s.testRunner.Step(p.Layout(), p.Dim, buf) {
			kind := s.testRunner.Kind()
			s.testRunner = nil
			s.mu.Unlock()
			s.Push(diag.Diagnostic{Severity: diag.Info, Code: "TEST.DONE", Summary: "Test complete", Detail: string(kind)})
			return s.Tick()
		}
	} else {
		buf, err = p.HardwareFrame(s.cursor)
		s.cursor = (s.cursor + 1) % p.Len()
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.frameID++
	id := s.frameID
	drv := s.Driver
	s.mu.Unlock()

	if drv != nil {
		if err := drv.Write(buf); err != nil {
			log.Warn().Err(err).Str("driver", s.DriverName).Msg("driver write")
		}
	}
	s.broadcastFrame(id, buf)
	return buf, nil
}

// SetPattern swaps the pattern and re-sends the topology to every client.
func (s *Server) SetPattern(p *pattern.Pattern) {
	s.mu.Lock()
	s.pat, s.cursor = p, 0
	clients := s.clientList(s.clients)
	s.mu.Unlock()
	for _, c := range clients {
		s.sendTopology(c)
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)
	go s.drain(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go s.drain(conn, s.diagClients)
}

// drain reads until the client goes away.
func (s *Server) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type control struct {
	Rewire  string `json:"rewire,omitempty"` // mode/corner
	RunTest string `json:"runTest,omitempty"`
	FPS     int    `json:"fps,omitempty"`
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
		var msg control
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.applyControl(msg)
		s.sendTopology(conn)
	}
}

func (s *Server) applyControl(msg control) {
	if msg.Rewire != "" {
		spec, err := wiring.ParseSpec(msg.Rewire)
		if err == nil {
			err = s.Pattern().Rewire(spec)
		}
		if err != nil {
			s.Push(diag.FromError(err))
		} else {
			s.Push(diag.Diagnostic{Severity: diag.Info, Code: "WIRING.REWIRED", Summary: "Wiring set to " + spec.String()})
		}
	}
	if msg.RunTest != "" {
		kind, ok := calib.ParseKind(msg.RunTest)
		if !ok {
			s.Push(diag.Diagnostic{
				Severity: diag.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
				Evidence: map[string]any{"name": msg.RunTest},
			})
		} else {
			s.mu.Lock()
			s.testRunner = calib.NewRunner(calib.Plan{Kind: kind})
			s.mu.Unlock()
			s.Push(diag.Diagnostic{Severity: diag.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: msg.RunTest})
		}
	}
	s.SetFPS(msg.FPS)
}

func (s *Server) Pattern() *pattern.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pat
}

// Topology tells a client where each LED of a frame goes: LED i shows
// design pixel Table[i] (rectangular) or sits at Ring[i].
type Topology struct {
	Type     string         `json:"type"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Channels int            `json:"channels"`
	Spec     *wiring.Spec   `json:"spec,omitempty"`
	Ring     []wiring.Coord `json:"ring,omitempty"`
	Table    []int          `json:"table"`
	Driver   string         `json:"driver"`
}

func (s *Server) topology() Topology {
	s.mu.RLock()
	p, drv := s.pat, s.DriverName
	s.mu.RUnlock()
	top := Topology{
		Type:     "topology",
		Width:    p.Dim.W,
		Height:   p.Dim.H,
		Channels: p.Channels,
		Table:    p.Layout().Table().Indices(),
		Driver:   drv,
	}
	if r := p.Ring(); r != nil {
		top.Ring = r.Coords
	} else {
		spec := p.Spec()
		top.Spec = &spec
	}
	return top
}

func (s *Server) HandleTopology(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.topology())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.pat.LEDs(),
		"fps":      s.fps,
		"pattern":  s.pat.Name,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	b, _ := json.Marshal(s.topology())
	s.write(conn, b)
}

type frame struct {
	Type    string `json:"type"`
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (s *Server) broadcastFrame(id uint64, rgb []byte) {
	b, _ := json.Marshal(frame{Type: "frame", T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	s.mu.RLock()
	clients := s.clientList(s.clients)
	s.mu.RUnlock()
	for _, c := range clients {
		s.write(c, b)
	}
}

// Push sends d to every diagnostics client.
func (s *Server) Push(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.RLock()
	clients := s.clientList(s.diagClients)
	s.mu.RUnlock()
	for _, c := range clients {
		s.write(c, b)
	}
}

func (s *Server) write(c *websocket.Conn, b []byte) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Debug().Err(err).Msg("ws write")
	}
}

func (s *Server) clientList(set map[*websocket.Conn]bool) []*websocket.Conn {
	out := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func withCORS(h http.Handler) http.Handler {
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
