package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"ittycoon/internal/config"
	"ittycoon/internal/game"
	"ittycoon/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const maxActionBody = 64 << 10

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *sim.Container
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, container *sim.Container) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: container,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	limiter := newRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst, s.log)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/actions", s.handleActionList)
		r.Get("/price", s.handlePrice)
		r.Get("/cheats", s.handleCheats)
		r.Get("/notifications/next", s.handleNextNotification)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/actions/{name}", s.handleAction)
			r.Post("/reset", s.handleReset)
			r.Post("/pause", s.handlePause)
			r.Post("/tick", s.handleTick)
			r.Post("/cheats/keys", s.handleCheatKeys)
		})
	})
}

type stateResponse struct {
	State  game.GameState `json:"state"`
	Paused bool           `json:"paused"`
}

func (s *Server) stateBody() stateResponse {
	return stateResponse{State: s.game.Snapshot(), Paused: s.game.Paused()}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateBody())
}

func (s *Server) handleActionList(w http.ResponseWriter, _ *http.Request) {
	names := game.ActionNames()
	slices.Sort(names)
	writeJSON(w, http.StatusOK, map[string]any{"actions": names})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	action, err := game.DecodeAction(name, body)
	if err != nil {
		if errors.Is(err, game.ErrUnknownAction) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.game.Dispatch(r.Context(), action); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateBody())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.game.Reset(r.Context())
	writeJSON(w, http.StatusOK, s.stateBody())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	s.game.SetPaused(req.Paused)
	writeJSON(w, http.StatusOK, s.stateBody())
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	n = min(max(n, 1), 1000)
	for range n {
		s.game.Tick(r.Context())
	}
	writeJSON(w, http.StatusOK, s.stateBody())
}

func (s *Server) handleCheatKeys(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	toggled := s.game.FeedKeys(r.Context(), req.Keys)
	writeJSON(w, http.StatusOK, map[string]any{"toggled": toggled, "active": s.game.Cheats().Active()})
}

func (s *Server) handleCheats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"active": s.game.Cheats().Active()})
}

func (s *Server) handleNextNotification(w http.ResponseWriter, _ *http.Request) {
	n, ok := s.game.Notifications().Pop()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	base, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("base")), 64)
	if err != nil || !finite(base) || base < 0 {
		writeError(w, http.StatusBadRequest, "base must be a non-negative number")
		return
	}
	price := s.game.Price(base)
	if !finite(price) {
		writeError(w, http.StatusBadRequest, "base is too large")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"base": base, "price": price})
}

// finite rejects the NaN and Inf spellings ParseFloat accepts; JSON cannot carry them.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrInsufficientStamina),
		errors.Is(err, game.ErrAmountOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrRequirementsNotMet), errors.Is(err, game.ErrNoInternet):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrUnknownItem), errors.Is(err, game.ErrNoCredit),
		errors.Is(err, game.ErrNoDeposit), errors.Is(err, game.ErrUnknownAction):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrCreditActive), errors.Is(err, game.ErrDepositActive),
		errors.Is(err, game.ErrAlreadyOwned), errors.Is(err, game.ErrBusy),
		errors.Is(err, game.ErrCooldown), errors.Is(err, game.ErrNotReady),
		errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
