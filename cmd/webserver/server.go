package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

// Server serves the browser client, its game socket and the settings and
// statistics API.
type Server struct {
	cfg      config.Config
	db       *store.Store
	r        *chi.Mux
	upgrader websocket.Upgrader

	// ctx outlives requests; hijacked sockets are not closed by
	// http.Server.Shutdown, so sessions watch this instead.
	ctx      context.Context
	cancel   context.CancelFunc
	sessions atomic.Int64
}

// NewServer builds the router
func NewServer(cfg config.Config, db *store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg: cfg,
		db:  db,
		r:   chi.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/healthz", s.handleHealth)
	s.r.Get("/ws", s.handleWebSocket)

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/stats", s.handleGetStats)
		r.Get("/runs", s.handleGetRuns)
	})

	s.r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	return s
}

// Router exposes the router
func (s *Server) Router() chi.Router { return s.r }

// Shutdown ends every open game session
func (s *Server) Shutdown() { s.cancel() }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Load()})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.LoadSettings(r.Context())
	if err != nil {
		// Unreadable settings still come back as defaults
		log.Warn().Err(err).Msg("loading settings")
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}
	settings = settings.Normalized()
	if err := s.db.SaveSettings(r.Context(), settings); err != nil {
		log.Error().Err(err).Msg("saving settings")
		writeError(w, http.StatusInternalServerError, "saving settings failed")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.LoadStatistics(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("loading statistics")
		writeError(w, http.StatusInternalServerError, "loading statistics failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	runs, err := s.db.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("loading runs")
		writeError(w, http.StatusInternalServerError, "loading runs failed")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	sess, err := s.newSession(r.Context(), conn)
	if err != nil {
		log.Error().Err(err).Msg("creating session")
		conn.Close()
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	log.Info().Str("session", sess.id).Str("remote", r.RemoteAddr).Msg("session opened")
	err = sess.serve(s.ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info().Str("session", sess.id).Int("steps", sess.game.Steps()).Msg("session closed")
	default:
		log.Warn().Err(err).Str("session", sess.id).Msg("session ended")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
