package beewatch

import (
	"context"
	"fmt"

	"github.com/hazyhaar/beewatch/internal/store"
)

// RunStatus describes the monitor's current run.
type RunStatus struct {
	Active    bool  `json:"active"`
	StartedAt int64 `json:"started_at,omitempty"`
	Seen      int   `json:"seen"`
	NewLikes  int   `json:"new_likes"`
	Matches   int   `json:"matches"`
	Autolikes int   `json:"autolikes"`
}

// Status reports whether a run is active and its counters.
func (m *Monitor) Status() RunStatus {
	m.mu.Lock()
	rs := m.run
	m.mu.Unlock()
	if rs == nil {
		return RunStatus{}
	}
	return RunStatus{
		Active:    true,
		StartedAt: rs.startedAt,
		Seen:      rs.session.Seen(),
		NewLikes:  rs.session.NewLikes(),
		Matches:   rs.session.Matches(),
		Autolikes: rs.session.Autolikes(),
	}
}

// Profiles returns every stored profile.
func (m *Monitor) Profiles(ctx context.Context) ([]*Profile, error) {
	return m.store.ListProfiles(ctx)
}

// Matches returns the profiles the account has already voted on.
func (m *Monitor) Matches(ctx context.Context) ([]*Profile, error) {
	return m.store.ListByVote(ctx, true)
}

// NewLikes returns the undecided incoming likes.
func (m *Monitor) NewLikes(ctx context.Context) ([]*Profile, error) {
	return m.store.ListByVote(ctx, false)
}

// History returns the most recent activity entries, newest first.
func (m *Monitor) History(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	return m.store.ListActivity(ctx, limit)
}

// Stats returns aggregate profile counters.
func (m *Monitor) Stats(ctx context.Context) (*Stats, error) {
	return m.store.CountStats(ctx)
}

// DailyStats returns per-day counters for the last days days.
func (m *Monitor) DailyStats(ctx context.Context, days int) ([]*DailyStats, error) {
	return m.store.DailyStatsRange(ctx, days)
}

// Clear removes all stored profiles and resets the active run's seen
// set, so re-captured profiles count as new again.
func (m *Monitor) Clear(ctx context.Context) error {
	if err := m.store.ClearProfiles(ctx); err != nil {
		return fmt.Errorf("monitor: clear: %w", err)
	}

	m.mu.Lock()
	if m.run != nil {
		m.run.session.Reset()
	}
	m.mu.Unlock()

	if err := m.store.LogActivity(ctx, store.ActionCleared, "", "", ""); err != nil {
		m.logger.Warn("monitor: log clear failed", "error", err)
	}
	m.emitStats(ctx)
	m.logger.Info("monitor: profiles cleared")
	return nil
}

// SaveSession exports the active run's browser cookies into durable
// storage. Requires an active run backed by a real browser.
func (m *Monitor) SaveSession(ctx context.Context) error {
	m.mu.Lock()
	rs := m.run
	m.mu.Unlock()
	if rs == nil {
		return ErrNoRun
	}
	cc, ok := rs.source.(cookieCarrier)
	if !ok {
		return ErrNoSession
	}

	blob, err := cc.ExportCookies()
	if err != nil {
		return fmt.Errorf("monitor: export session: %w", err)
	}
	if err := m.store.SaveSession(ctx, blob); err != nil {
		return fmt.Errorf("monitor: save session: %w", err)
	}
	m.logger.Info("monitor: session saved")
	return nil
}

// DeleteSession discards the stored session cookies.
func (m *Monitor) DeleteSession(ctx context.Context) error {
	if err := m.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("monitor: delete session: %w", err)
	}
	m.logger.Info("monitor: session deleted")
	return nil
}

// Close stops any active run and shuts down the sinks.
func (m *Monitor) Close(ctx context.Context) error {
	if err := m.StopRun(ctx); err != nil && err != ErrNoRun {
		return err
	}
	return m.sinks.Close()
}
