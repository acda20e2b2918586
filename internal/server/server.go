// Package server runs the WebSocket control panel.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/lighthouse/internal/command"
	"github.com/lawnchairsociety/lighthouse/internal/config"
	"github.com/lawnchairsociety/lighthouse/internal/logger"
)

// Server accepts control panel connections and runs their commands.
type Server struct {
	cfg          config.ServerConfig
	ctl          command.Controller
	connLimiter  *ConnLimiter
	resolver     *ipResolver
	buildLimiter *BuildRateLimiter
	httpServer   *http.Server
	startTime    time.Time

	mu      sync.Mutex
	clients map[Client]struct{}

	sessions     sync.WaitGroup
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates a server that drives ctl.
func NewServer(cfg config.ServerConfig, ctl command.Controller) *Server {
	s := &Server{
		cfg:          cfg,
		ctl:          ctl,
		connLimiter:  NewConnLimiter(cfg.Connections),
		resolver:     newIPResolver(cfg.Connections.TrustedProxies),
		buildLimiter: NewBuildRateLimiter(cfg.RateLimit),
		startTime:    time.Now(),
		clients:      make(map[Client]struct{}),
		shutdown:     make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes: /ws for the control panel and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("Control server listening", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, closes open sessions and waits for
// them to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		close(s.shutdown)
		s.mu.Unlock()

		err = s.httpServer.Shutdown(ctx)

		s.mu.Lock()
		for c := range s.clients {
			c.WriteLine("Server shutting down.")
			c.Close()
		}
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}

		s.buildLimiter.Stop()
		logger.Info("Control server stopped")
	})
	return err
}

// ClientCount returns the number of open sessions.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, _ := s.connLimiter.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok clients=%d uptime=%s\n", total, time.Since(s.startTime).Round(time.Second))
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	slot, err := s.connLimiter.Acquire(s.resolver.clientIP(r))
	if err != nil {
		logger.Warning("WebSocket connection rejected",
			"reason", err,
			"remote_addr", r.RemoteAddr)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}
	clientIP := slot.IP()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		slot.Release()
		return
	}
	if s.cfg.WebSocket.MaxMessageSize > 0 {
		wsConn.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	}

	client := NewWebSocketClient(wsConn)
	if !s.addClient(client) {
		client.Close()
		slot.Release()
		return
	}

	go func() {
		defer s.sessions.Done()
		defer slot.Release()
		s.handleClient(client, clientIP)
	}()
}

// addClient registers c and counts its session unless the server is shutting
// down. Shutdown closes clients under the same lock, so a session is either
// seen by Shutdown or never started.
func (s *Server) addClient(c Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.shutdown:
		return false
	default:
	}
	s.clients[c] = struct{}{}
	s.sessions.Add(1)
	return true
}

func (s *Server) removeClient(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// handleClient runs one session: a greeting, then one reply per command
// line until quit or a read error.
func (s *Server) handleClient(client Client, clientIP string) {
	defer func() {
		s.removeClient(client)
		client.Close()
	}()

	log := logger.With("client_ip", clientIP)
	log.Info("Control session started", "remote_addr", client.RemoteAddr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := client.WriteLine("Lighthouse control panel. Type 'help' for commands."); err != nil {
		return
	}

	for {
		line, err := client.ReadLine()
		if err != nil {
			log.Info("Control session ended", "reason", err)
			return
		}

		cmd := command.ParseCommand(line)
		if cmd.Name == "build" || cmd.Name == "b" {
			if ok, wait := s.buildLimiter.Allow(clientIP); !ok {
				if err := client.WriteLine(fmt.Sprintf("Too many builds. Try again in %s.", wait.Round(time.Second))); err != nil {
					return
				}
				continue
			}
			logger.Always("Build requested", "client_ip", clientIP, "args", cmd.Args)
		}

		reply := cmd.Execute(ctx, s.ctl)
		if reply != "" {
			if err := client.WriteLine(reply); err != nil {
				return
			}
		}
		if cmd.IsQuit() {
			log.Info("Control session ended", "reason", "quit")
			return
		}
	}
}
