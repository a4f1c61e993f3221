// Package web serves the operational HTTP surface: health, prometheus
// metrics, the public leaderboard and the world chat websocket.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Config holds dependencies for the ops router
type Config struct {
	Social   social.Service
	Hub      *Hub
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Social == nil {
		vb.RequiredField("social")
	}
	if c.Hub == nil {
		vb.RequiredField("hub")
	}
	return vb.Build()
}

type handlers struct {
	social social.Service
	logger *slog.Logger
}

// NewRouter builds the chi router
func NewRouter(cfg *Config) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{social: cfg.Social, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/leaderboard", h.leaderboard)
	})
	r.Get("/ws/chat", cfg.Hub.ServeHTTP)

	return r, nil
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type leaderboardResponse struct {
	Entries []*entities.LeaderboardEntry `json:"entries"`
	Caller  *entities.LeaderboardEntry   `json:"caller,omitempty"`
}

func (h *handlers) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.logger, errors.InvalidArgument("limit must be a positive integer"))
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	out, err := h.social.Leaderboard(r.Context(), &social.LeaderboardInput{
		Caller: r.URL.Query().Get("user"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: out.Entries, Caller: out.Caller})
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := errors.GetCode(err)
	if code.HTTPStatus() >= http.StatusInternalServerError {
		logger.Error("http request failed", "error", err)
	}
	writeJSON(w, code.HTTPStatus(), map[string]string{"error": errors.PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
