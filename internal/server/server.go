// Package server is the transport adapter: it terminates HTTP and
// websocket connections, deserializes inbound events into room.Manager
// calls, and pushes the manager's broadcasts back to clients.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"gamerooms/internal/room"
	"gamerooms/internal/storage"
)

// Server is the HTTP + websocket front end.
type Server struct {
	router  chi.Router
	manager *room.Manager
	store   *storage.Store
	log     zerolog.Logger
	started time.Time
}

// New creates a server with all routes. store may be nil; the leaderboard
// and results endpoints then report empty lists.
func New(manager *room.Manager, store *storage.Store, allowedOrigins []string, ipl *IPRateLimiter, log zerolog.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		manager: manager,
		store:   store,
		log:     log,
		started: time.Now(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})
	s.router.Use(c.Handler)
	if ipl != nil {
		s.router.Use(ipl.Middleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/leaderboard", s.handleLeaderboard)
	s.router.Get("/results", s.handleResults)
	s.router.Get("/ws", s.handleWebSocket)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rooms, users := s.manager.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": int(time.Since(s.started).Seconds()),
		"rooms":  rooms,
		"users":  users,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []storage.LeaderboardEntry{})
		return
	}
	entries, err := s.store.Leaderboard(20)
	if err != nil {
		s.log.Error().Err(err).Msg("leaderboard query")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "leaderboard unavailable"})
		return
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []storage.Result{})
		return
	}
	results, err := s.store.RecentResults(20)
	if err != nil {
		s.log.Error().Err(err).Msg("recent results query")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "results unavailable"})
		return
	}
	if results == nil {
		results = []storage.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
