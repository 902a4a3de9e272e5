// Package web serves the published state over HTTP: a JSON snapshot at
// /api/state and a live stream of snapshots at /ws.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ble-pulse.klederson.com/internal/state"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	subscribeDepth = 8
	shutdownWait   = 2 * time.Second
)

// Server is a read-only observer of a state.Store.
type Server struct {
	store    *state.Store
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer creates a server for store.
func NewServer(store *state.Store, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Local dashboard; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/ws", s.handleStream)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Infof("Web observer listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.store.Snapshot()); err != nil {
		s.logger.Warnf("Encode state: %v", err)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("Websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	snaps, cancel := s.store.Subscribe(subscribeDepth)
	defer cancel()

	// Clients only listen; a read error means they went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debugf("Websocket client %s connected", r.RemoteAddr)
	for {
		select {
		case <-gone:
			s.logger.Debugf("Websocket client %s disconnected", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Debugf("Websocket write to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}
