package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const captureBuffer = 128

// CDPConfig configures a CDPSource.
type CDPConfig struct {
	// ControlURL is the DevTools websocket of an already running Chrome
	// (for example ws://127.0.0.1:9222). The source attaches to it; it
	// never launches a browser of its own.
	ControlURL string
	// AppURL is the page the monitored account lives on. When no open
	// tab matches it, a new stealth tab is opened there.
	AppURL string
	// Filter selects which responses get their bodies fetched.
	Filter Filter
	Logger *slog.Logger
}

func (c *CDPConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// CDPSource attaches to a running Chrome over DevTools, enables network
// tracking on the app tab, and streams matching response bodies.
type CDPSource struct {
	cfg      CDPConfig
	browser  *rod.Browser
	page     *rod.Page
	ownsPage bool
	ch       chan RawCapture

	mu         sync.Mutex
	cancel     context.CancelFunc
	disconnect context.CancelFunc
	closed     bool
}

// NewCDPSource connects to the browser and locates or opens the app tab.
func NewCDPSource(cfg CDPConfig) (*CDPSource, error) {
	cfg.defaults()

	// The browser lives on its own cancellable context so Close can drop
	// the websocket without sending Browser.close to a browser the user
	// owns.
	bctx, disconnect := context.WithCancel(context.Background())
	b := rod.New().ControlURL(cfg.ControlURL).Context(bctx)
	if err := b.Connect(); err != nil {
		disconnect()
		return nil, fmt.Errorf("capture: connect %s: %w", cfg.ControlURL, err)
	}

	page, owns, err := appPage(b, cfg.AppURL)
	if err != nil {
		disconnect()
		return nil, err
	}

	return &CDPSource{
		cfg:        cfg,
		browser:    b,
		page:       page,
		ownsPage:   owns,
		disconnect: disconnect,
		ch:         make(chan RawCapture, captureBuffer),
	}, nil
}

// Browser exposes the underlying connection for cookie handling.
func (s *CDPSource) Browser() *rod.Browser { return s.browser }

// Page exposes the app tab for section visiting and autolike clicks.
func (s *CDPSource) Page() *rod.Page { return s.page }

// Captures returns the stream of intercepted responses. The channel is
// closed when the source stops.
func (s *CDPSource) Captures() <-chan RawCapture { return s.ch }

// Start enables network tracking and begins streaming until ctx is done
// or Close is called. Responses arriving faster than the consumer drains
// them are dropped, never queued unboundedly.
func (s *CDPSource) Start(ctx context.Context) error {
	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return fmt.Errorf("capture: enable network: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.listen(ctx)
	return nil
}

func (s *CDPSource) listen(ctx context.Context) {
	log := s.cfg.Logger
	defer close(s.ch)

	wait := s.page.Context(ctx).EachEvent(func(e *proto.NetworkResponseReceived) {
		resp := e.Response
		if !s.cfg.Filter.Match(resp.URL, resp.MIMEType, resp.Status) {
			return
		}

		// Give the renderer a moment to finish buffering the body.
		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
			return
		}

		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(s.page)
		if err != nil {
			// Bodies of evicted responses are gone by the time we ask.
			if !strings.Contains(err.Error(), "No data found") {
				log.Debug("capture: get body failed", "url", resp.URL, "error", err)
			}
			return
		}

		raw := []byte(body.Body)
		if body.Base64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body.Body)
			if err != nil {
				log.Debug("capture: base64 decode failed", "url", resp.URL, "error", err)
				return
			}
			raw = decoded
		}

		rc := RawCapture{
			URL:        resp.URL,
			MimeType:   resp.MIMEType,
			StatusCode: resp.Status,
			Body:       raw,
		}
		select {
		case s.ch <- rc:
		default:
			log.Warn("capture: buffer full, dropping response", "url", resp.URL)
		}
	})

	wait()
}

// Close stops streaming and detaches from the browser. The tab the
// source opened, if any, is closed; tabs the user opened and the browser
// itself are left alone. The browser keeps running, the source never
// owned it.
func (s *CDPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.ownsPage {
		if err := s.page.Close(); err != nil {
			s.cfg.Logger.Debug("capture: close tab failed", "error", err)
		}
	}
	s.disconnect()
	return nil
}

// appPage finds an open tab on the app URL or opens a stealth tab there.
// The second return reports whether the tab was opened here and so belongs
// to the source.
func appPage(b *rod.Browser, appURL string) (*rod.Page, bool, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, false, fmt.Errorf("capture: list pages: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if appURL != "" && strings.HasPrefix(info.URL, appURL) {
			return p, false, nil
		}
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, false, fmt.Errorf("capture: open tab: %w", err)
	}
	if appURL != "" {
		if err := page.Navigate(appURL); err != nil {
			page.Close()
			return nil, false, fmt.Errorf("capture: navigate %s: %w", appURL, err)
		}
	}
	return page, true, nil
}
