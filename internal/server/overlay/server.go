// Package overlay serves engine telemetry over websockets for browser or
// streaming overlays.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api/handler"
)

// Config is the overlay server configuration. An empty Addr disables it.
type Config struct {
	Addr     string        `help:"Telemetry websocket overlay listen address (empty disables)" env:"FLIGHTSTICK_OVERLAY_ADDR"`
	Interval time.Duration `help:"Telemetry broadcast interval" default:"33ms" env:"FLIGHTSTICK_OVERLAY_INTERVAL"`
}

// Source provides telemetry snapshots.
type Source interface {
	HUD() engine.HUD
}

// Server is the overlay HTTP server.
type Server struct {
	cfg    Config
	src    Source
	hub    *Hub
	logger *slog.Logger

	// OnRecenter, if set, runs when an overlay client sends "recenter".
	OnRecenter func()

	upgrader websocket.Upgrader
	seq      atomic.Int64

	ln         net.Listener
	httpServer *http.Server
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates an overlay server broadcasting snapshots from src.
func New(cfg Config, src Source, logger *slog.Logger) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 33 * time.Millisecond
	}
	return &Server{
		cfg:    cfg,
		src:    src,
		hub:    NewHub(logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Overlays are loaded from local files or OBS browser sources.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP routes: /ws upgrades to the telemetry stream and
// /hud returns a single snapshot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/hud", s.handleSnapshot)
	return mux
}

// Start listens on the configured address and starts serving and
// broadcasting in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Overlay server failed", "error", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		s.Broadcast(ctx)
	}()

	s.logger.Info("Overlay listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listen address once started.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops broadcasting, disconnects every client and shuts the HTTP
// server down.
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.hub.CloseAll()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("Overlay shutdown", "error", err)
		}
	}
	s.wg.Wait()
}

// Broadcast sends a snapshot to all clients every interval until ctx ends.
func (s *Server) Broadcast(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.Len() == 0 {
				continue
			}
			if data, ok := s.encode(newHUDMessage(s.seq.Add(1), handler.ToAPIHUD(s.src.HUD()))); ok {
				s.hub.Broadcast(data)
			}
		}
	}
}

func (s *Server) encode(msg *Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Marshal overlay message", "error", err)
		return nil, false
	}
	return data, true
}

func (s *Server) recenter() {
	if s.OnRecenter == nil {
		return
	}
	s.OnRecenter()
	if data, ok := s.encode(newRecenteredMessage(s.seq.Add(1))); ok {
		s.hub.Broadcast(data)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := newClient(s.hub, conn, s.logger)
	// New clients get the current state right away.
	if data, ok := s.encode(newHUDMessage(s.seq.Add(1), handler.ToAPIHUD(s.src.HUD()))); ok {
		c.send <- data
	}
	s.hub.Register(c)

	go c.writePump()
	go c.readPump(s.recenter)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(handler.ToAPIHUD(s.src.HUD())); err != nil {
		s.logger.Warn("Write overlay snapshot", "error", err)
	}
}
