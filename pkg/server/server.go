// Package server exposes the negotiation flow over a small JSON API plus a
// websocket feed for the live coaching view. One server instance serves one
// user; auth lives in front of it, not in it.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dealcoach/pkg/flow"
	"dealcoach/pkg/guidance"
	"dealcoach/pkg/store"
	"dealcoach/pkg/utils"
)

// Server wires the flow manager, persistence and the chat client behind HTTP.
type Server struct {
	manager      *flow.Manager
	sessions     store.Store
	entitlements store.EntitlementStore
	chat         guidance.ChatClient
	userID       string
	port         int
	logger       *utils.Logger

	upgrader websocket.Upgrader
	connMu   sync.Mutex
	conns    map[string][]*SafeConn

	httpServer *http.Server
}

// New builds a server. sessions and entitlements may be nil: sessions then
// live only in memory, and entitlement defaults to false (the deterministic
// path still works).
func New(manager *flow.Manager, sessions store.Store, entitlements store.EntitlementStore,
	chat guidance.ChatClient, userID string, port int, logger *utils.Logger) *Server {
	return &Server{
		manager:      manager,
		sessions:     sessions,
		entitlements: entitlements,
		chat:         chat,
		userID:       userID,
		port:         port,
		logger:       logger,
		conns:        make(map[string][]*SafeConn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
	}
}

// Handler builds the route mux. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", s.handleCreateSession)
	mux.HandleFunc("GET /api/session/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/session/{id}/numbers", s.handleSetNumbers)
	mux.HandleFunc("POST /api/session/{id}/quote", s.handleQuote)
	mux.HandleFunc("POST /api/session/{id}/tactic", s.handleTactic)
	mux.HandleFunc("POST /api/session/{id}/advise", s.handleAdvise)
	mux.HandleFunc("POST /api/session/{id}/update", s.handleUpdate)
	mux.HandleFunc("POST /api/session/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Start runs the server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Logf("Coaching server listening on :%d", s.port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// caps resolves the per-request capabilities: entitlement from the store,
// chat client from configuration.
func (s *Server) caps() flow.Capabilities {
	entitled := false
	if s.entitlements != nil {
		var err error
		entitled, err = s.entitlements.HasInPersonPack(s.userID)
		if err != nil {
			s.logger.LogError(err)
			entitled = false
		}
	}
	return flow.Capabilities{Entitled: entitled, Client: s.chat}
}

// persist saves the session snapshot when a backing store is configured.
func (s *Server) persist(session *flow.Session) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SaveSession(session.Snapshot()); err != nil {
		s.logger.LogError(err)
	}
}
