package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// VisitSections navigates the app tab through the given section URLs in
// order, dwelling on each long enough for the page to issue its API
// calls. The network listener picks up whatever those calls return; the
// navigation itself produces nothing.
func (s *CDPSource) VisitSections(ctx context.Context, urls []string, dwell time.Duration) error {
	if dwell <= 0 {
		dwell = 3 * time.Second
	}
	log := s.cfg.Logger
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.page.Context(ctx).Navigate(u); err != nil {
			return fmt.Errorf("capture: visit %s: %w", u, err)
		}
		log.Debug("capture: visiting section", "url", u)
		select {
		case <-time.After(dwell):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ClickLike clicks the like control identified by the configured CSS
// selector on the app tab. It reports false when the element is not
// present within the timeout, which is the normal case between cards.
func (s *CDPSource) ClickLike(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if selector == "" {
		return false, nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	page := s.page.Context(ctx).Timeout(timeout)
	el, err := page.Element(selector)
	if err != nil {
		s.cfg.Logger.Debug("capture: like element not found", "selector", selector)
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("capture: click like: %w", err)
	}
	return true, nil
}
