// Package beewatch monitors a dating-app account through a running
// Chrome session: it intercepts in-page API traffic, extracts the
// profiles of people who liked or matched the account, persists them,
// and pushes live events to attached dashboards.
package beewatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/beewatch/internal/capture"
	"github.com/hazyhaar/beewatch/internal/extract"
	"github.com/hazyhaar/beewatch/internal/sink"
	"github.com/hazyhaar/beewatch/internal/store"
)

// CaptureSource is what a run consumes: a stream of intercepted
// responses. The production source speaks DevTools; tests inject fakes.
type CaptureSource interface {
	Captures() <-chan capture.RawCapture
	Close() error
}

// liker is implemented by sources that can click the like control.
type liker interface {
	ClickLike(ctx context.Context, selector string, timeout time.Duration) (bool, error)
}

// sectionVisitor is implemented by sources that can walk the app's
// sections to trigger API calls.
type sectionVisitor interface {
	VisitSections(ctx context.Context, urls []string, dwell time.Duration) error
}

// cookieCarrier is implemented by sources backed by a real browser.
type cookieCarrier interface {
	ExportCookies() (string, error)
	ImportCookies(blob string) error
}

// SourceFactory builds the capture source for a run.
type SourceFactory func(ctx context.Context) (CaptureSource, error)

// Monitor owns the pipeline: one run at a time, a durable store, and a
// set of notification sinks.
type Monitor struct {
	cfg    *Config
	store  *store.Store
	sinks  sink.Sink
	logger *slog.Logger
	newSrc SourceFactory

	mu  sync.Mutex
	run *runState
}

type runState struct {
	cancel     context.CancelFunc
	done       chan struct{}
	source     CaptureSource
	session    *RunSession
	startedAt  int64
	stopDetail string
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSourceFactory overrides how capture sources are built.
func WithSourceFactory(f SourceFactory) Option {
	return func(m *Monitor) { m.newSrc = f }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// New creates a Monitor over the given store, delivering events to the
// given sinks.
func New(st *store.Store, cfg *Config, sinks []sink.Sink, opts ...Option) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}
	m := &Monitor{
		cfg:    cfg,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sinks = sink.NewRouter(m.logger, sinks...)
	if m.newSrc == nil {
		m.newSrc = m.cdpFactory
	}
	return m
}

// cdpFactory attaches to the configured Chrome, restores stored session
// cookies, and starts streaming.
func (m *Monitor) cdpFactory(ctx context.Context) (CaptureSource, error) {
	src, err := capture.NewCDPSource(capture.CDPConfig{
		ControlURL: m.cfg.Browser.ControlURL,
		AppURL:     m.cfg.Browser.AppURL,
		Filter: capture.Filter{
			HostSubstrings: m.cfg.Capture.HostSubstrings,
			URLKeywords:    m.cfg.Capture.URLKeywords,
		},
		Logger: m.logger,
	})
	if err != nil {
		return nil, err
	}

	if blob, err := m.store.LoadSession(ctx); err != nil {
		m.logger.Warn("monitor: load session failed", "error", err)
	} else if blob != "" {
		if err := capture.ImportCookies(src.Browser(), blob); err != nil {
			m.logger.Warn("monitor: restore session failed", "error", err)
		}
	}

	if err := src.Start(ctx); err != nil {
		src.Close()
		return nil, err
	}
	return &cdpSource{src}, nil
}

// cdpSource adapts CDPSource's browser-level cookie calls to the
// cookieCarrier interface.
type cdpSource struct {
	*capture.CDPSource
}

func (s *cdpSource) ExportCookies() (string, error) {
	return capture.ExportCookies(s.Browser())
}

func (s *cdpSource) ImportCookies(blob string) error {
	return capture.ImportCookies(s.Browser(), blob)
}

// StartRun begins a monitoring run. Returns ErrRunActive when one is
// already in progress; a session or browser failure is returned to the
// caller and no run is started.
func (m *Monitor) StartRun(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.run != nil {
		return ErrRunActive
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	src, err := m.newSrc(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("monitor: start run: %w", err)
	}

	rs := &runState{
		cancel:    cancel,
		done:      make(chan struct{}),
		source:    src,
		session:   NewRunSession(),
		startedAt: time.Now().UnixMilli(),
	}
	m.run = rs

	if err := m.store.LogActivity(ctx, store.ActionRunStarted, "", "", ""); err != nil {
		m.logger.Warn("monitor: log run start failed", "error", err)
	}
	m.emitStatus(ctx, "running", "")
	m.logger.Info("monitor: run started")

	go m.loop(runCtx, rs)
	return nil
}

// StopRun stops the active run and waits for the loop to drain.
func (m *Monitor) StopRun(ctx context.Context) error {
	m.mu.Lock()
	rs := m.run
	m.mu.Unlock()
	if rs == nil {
		return ErrNoRun
	}

	rs.cancel()
	select {
	case <-rs.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// loop is the single pipeline worker: captures in, profiles out. It
// exits when the run context is cancelled or the source dies; either
// way the run transitions to stopped.
func (m *Monitor) loop(ctx context.Context, rs *runState) {
	defer m.finishRun(rs)

	ticker := time.NewTicker(m.cfg.Capture.PollInterval)
	defer ticker.Stop()

	if sv, ok := rs.source.(sectionVisitor); ok && len(m.cfg.Capture.SectionURLs) > 0 {
		go m.sectionSweep(ctx, sv)
	}

	var cycles int
	detail := ""
	for {
		select {
		case <-ctx.Done():
			return

		case rc, ok := <-rs.source.Captures():
			if !ok {
				// Browser or session went away. Fatal to this run only.
				detail = "capture source closed"
				m.logger.Error("monitor: capture source closed, stopping run")
				m.setStopDetail(rs, detail)
				return
			}
			m.processCapture(ctx, rs, rc)

		case <-ticker.C:
			cycles++
			m.maybeAutolike(ctx, rs, cycles)
		}
	}
}

func (m *Monitor) setStopDetail(rs *runState, detail string) {
	m.mu.Lock()
	rs.stopDetail = detail
	m.mu.Unlock()
}

// finishRun tears down the run state and notifies listeners. Runs once
// per run, regardless of how the loop exited.
func (m *Monitor) finishRun(rs *runState) {
	rs.cancel()
	rs.source.Close()

	m.mu.Lock()
	detail := rs.stopDetail
	if m.run == rs {
		m.run = nil
	}
	m.mu.Unlock()

	ctx := context.Background()
	if err := m.store.LogActivity(ctx, store.ActionRunStopped, "", "", detail); err != nil {
		m.logger.Warn("monitor: log run stop failed", "error", err)
	}
	m.emitStatus(ctx, "stopped", detail)
	m.logger.Info("monitor: run stopped",
		"new_likes", rs.session.NewLikes(),
		"matches", rs.session.Matches(),
		"autolikes", rs.session.Autolikes())
	close(rs.done)
}

// processCapture runs one intercepted response through the pipeline:
// classify, resolve vote, normalize, dedup, persist, notify.
func (m *Monitor) processCapture(ctx context.Context, rs *runState, rc capture.RawCapture) {
	candidates := extract.Classify(rc.Body)
	if len(candidates) == 0 {
		return
	}
	m.logger.Debug("monitor: candidates found", "url", rc.URL, "count", len(candidates))

	for _, c := range candidates {
		voted := extract.ResolveVoted(c, rc.URL)
		p, err := extract.Normalize(c.User, voted)
		if err != nil {
			// Candidate without an identifier. Skip it, keep the batch.
			continue
		}
		if !rs.session.Accept(p.ID) {
			continue
		}

		if err := m.store.UpsertProfile(ctx, p); err != nil {
			m.logger.Warn("monitor: upsert failed", "id", p.ID, "error", err)
			m.emitWarning(ctx, fmt.Sprintf("store profile %s: %v", p.ID, err))
			continue
		}

		m.recordDiscovery(ctx, rs, p)
	}
}

// recordDiscovery logs, counts, and announces one accepted profile.
func (m *Monitor) recordDiscovery(ctx context.Context, rs *runState, p *store.Profile) {
	action := store.ActionLikeReceived
	if p.HasVoted {
		action = store.ActionMatch
		rs.session.CountMatch()
	} else {
		rs.session.CountNewLike()
	}

	details := discoveryDetails(p)
	if err := m.store.LogActivity(ctx, action, p.ID, p.DisplayName, details); err != nil {
		m.logger.Warn("monitor: log activity failed", "error", err)
	}

	likes, matches := 0, 0
	if p.HasVoted {
		matches = 1
	} else {
		likes = 1
	}
	if err := m.store.BumpDailyStat(ctx, likes, matches, 0); err != nil {
		m.logger.Warn("monitor: bump daily stats failed", "error", err)
	}

	m.logger.Info("monitor: profile discovered",
		"id", p.ID, "name", p.DisplayName, "age", p.Age,
		"city", p.City, "voted", p.HasVoted)

	ev := sink.NewEvent(sink.EventNewProfile)
	ev.Profile = p
	m.send(ctx, ev)
	m.emitStats(ctx)
}

// discoveryDetails formats the activity-log detail line for a profile.
func discoveryDetails(p *store.Profile) string {
	city := p.City
	if city == "" {
		city = "unknown location"
	}
	details := fmt.Sprintf("%d, %s", p.Age, city)
	if p.IsVerified {
		details += ", verified"
	}
	return details
}

// maybeAutolike clicks the configured like control every N cycles.
func (m *Monitor) maybeAutolike(ctx context.Context, rs *runState, cycles int) {
	cfg := m.cfg.Autolike
	if !cfg.Enabled || cfg.Selector == "" || cycles%cfg.EveryCycles != 0 {
		return
	}
	lk, ok := rs.source.(liker)
	if !ok {
		return
	}

	clicked, err := lk.ClickLike(ctx, cfg.Selector, 2*time.Second)
	if err != nil {
		m.logger.Warn("monitor: autolike failed", "error", err)
		return
	}
	if !clicked {
		return
	}

	n := rs.session.CountAutolike()
	detail := fmt.Sprintf("autolike #%d", n)
	if err := m.store.LogActivity(ctx, store.ActionAutolike, "", "", detail); err != nil {
		m.logger.Warn("monitor: log autolike failed", "error", err)
	}
	if err := m.store.BumpDailyStat(ctx, 0, 0, 1); err != nil {
		m.logger.Warn("monitor: bump daily stats failed", "error", err)
	}
	m.logger.Info("monitor: autolike sent", "count", n)

	ev := sink.NewEvent(sink.EventActivity)
	ev.Detail = detail
	m.send(ctx, ev)
}

// sectionSweep periodically walks the configured app sections so their
// API calls land in the capture stream.
func (m *Monitor) sectionSweep(ctx context.Context, sv sectionVisitor) {
	cc := m.cfg.Capture
	ticker := time.NewTicker(cc.SectionInterval)
	defer ticker.Stop()

	for {
		if err := sv.VisitSections(ctx, cc.SectionURLs, cc.SectionDwell); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("monitor: section sweep failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) emitStats(ctx context.Context) {
	stats, err := m.store.CountStats(ctx)
	if err != nil {
		m.logger.Warn("monitor: count stats failed", "error", err)
		return
	}
	ev := sink.NewEvent(sink.EventStatsChanged)
	ev.Stats = stats
	m.send(ctx, ev)
}

func (m *Monitor) emitStatus(ctx context.Context, status, detail string) {
	ev := sink.NewEvent(sink.EventRunStatus)
	ev.Status = status
	ev.Detail = detail
	m.send(ctx, ev)
}

func (m *Monitor) emitWarning(ctx context.Context, detail string) {
	ev := sink.NewEvent(sink.EventWarning)
	ev.Detail = detail
	m.send(ctx, ev)
}

// send delivers fire-and-forget; sink errors are already logged by the
// router.
func (m *Monitor) send(ctx context.Context, ev sink.Event) {
	_ = m.sinks.Send(ctx, ev)
}
