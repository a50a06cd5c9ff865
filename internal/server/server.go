// Package server hosts the browser map page and talks to it over a
// websocket: scenes go out, user input and frame acks come back.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed web
var webFS embed.FS

type Server struct {
	cfg    config.ServerConfig
	app    *app.App
	frames *anim.SignalFrames
	log    *zap.Logger

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	pendingMu sync.Mutex
	pending   *app.Scene
	wake      chan struct{}
}

// New wires a server to a. frames may be nil when the driver is paced by a
// ticker instead of the page.
func New(cfg config.ServerConfig, a *app.App, frames *anim.SignalFrames, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		app:    a,
		frames: frames,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		wake:    make(chan struct{}, 1),
	}
	a.Watch(app.ObserverFunc(s.queue))
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	page, _ := fs.Sub(webFS, "web")
	mux.Handle("/", http.FileServer(http.FS(page)))
	if s.cfg.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Serve runs the HTTP server, the broadcaster and the app until ctx is
// cancelled or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.broadcastLoop(ctx)
		return nil
	})
	g.Go(func() error {
		return s.app.Run(ctx)
	})
	return g.Wait()
}

// queue keeps only the newest scene; it runs inside state writes and must
// not block.
func (s *Server) queue(sc app.Scene) {
	s.pendingMu.Lock()
	s.pending = &sc
	s.pendingMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		s.pendingMu.Lock()
		sc := s.pending
		s.pending = nil
		s.pendingMu.Unlock()
		if sc != nil {
			s.broadcast(sceneMessage(*sc))
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	n := len(s.clients)
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()
	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("client connected", zap.Int("clients", n))

	if err := s.send(conn, connMu, modesMessage(s.app.Mode())); err != nil {
		return
	}
	if err := s.send(conn, connMu, sceneMessage(s.app.Scene())); err != nil {
		return
	}

	for {
		var msg Inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			log.Info("client disconnected")
			return
		}
		if err := s.handle(msg); err != nil {
			log.Debug("rejected message", zap.String("type", msg.Type), zap.Error(err))
			if err := s.send(conn, connMu, errorMessage(err)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handle(msg Inbound) error {
	switch msg.Type {
	case TypeFrame:
		if s.frames != nil {
			s.frames.Signal()
		}
	case TypeMode:
		return s.app.SetMode(msg.Mode)
	case TypeAnimate:
		if msg.On == nil {
			return errors.New("animate: missing on")
		}
		s.app.SetAnimating(*msg.On)
	case TypeViewState:
		if msg.ViewState == nil {
			return errors.New("viewState: missing viewState")
		}
		s.app.UserViewState(*msg.ViewState)
	case TypeInterrupt:
		s.app.Interrupt()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Server) send(conn *websocket.Conn, mu *sync.Mutex, msg Outbound) error {
	mu.Lock()
	defer mu.Unlock()
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return conn.WriteJSON(msg)
}

func (s *Server) broadcast(msg Outbound) {
	s.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range s.clients {
		if err := s.send(conn, mu, msg); err != nil {
			s.log.Warn("websocket write failed", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			conn.Close()
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, mu := range s.clients {
		mu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		mu.Unlock()
		conn.Close()
	}
}

// Clients reports the number of connected pages.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
