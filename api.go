package beewatch

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// API serves the monitor's control surface over HTTP. All responses are
// JSON; the websocket hub, when present, is mounted at /ws for live
// dashboard updates.
type API struct {
	monitor *Monitor
	hub     *Hub
}

// NewAPI wraps a monitor. hub may be nil when no live transport is
// wanted.
func NewAPI(m *Monitor, hub *Hub) *API {
	return &API{monitor: m, hub: hub}
}

// RegisterHTTP mounts the control routes on r.
func (a *API) RegisterHTTP(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/run/start", a.handleStartRun)
		r.Post("/run/stop", a.handleStopRun)
		r.Get("/status", a.handleStatus)
		r.Get("/profiles", a.handleProfiles)
		r.Get("/matches", a.handleMatches)
		r.Get("/likes", a.handleLikes)
		r.Get("/history", a.handleHistory)
		r.Get("/stats", a.handleStats)
		r.Get("/stats/daily", a.handleDailyStats)
		r.Post("/clear", a.handleClear)
		r.Post("/session/save", a.handleSaveSession)
		r.Delete("/session", a.handleDeleteSession)
	})
	if a.hub != nil {
		r.Get("/ws", a.hub.ServeHTTP)
	}
}

func (a *API) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if err := a.monitor.StartRun(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.monitor.Status())
}

func (a *API) handleStopRun(w http.ResponseWriter, r *http.Request) {
	if err := a.monitor.StopRun(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.monitor.Status())
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.monitor.Status())
}

func (a *API) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.monitor.Profiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (a *API) handleMatches(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.monitor.Matches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (a *API) handleLikes(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.monitor.NewLikes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := a.monitor.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.monitor.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	stats, err := a.monitor.DailyStats(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := a.monitor.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (a *API) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	if err := a.monitor.SaveSession(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (a *API) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.monitor.DeleteSession(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrRunActive), errors.Is(err, ErrNoRun):
		status = http.StatusConflict
	case errors.Is(err, ErrNoSession):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
