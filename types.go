package beewatch

import "github.com/hazyhaar/beewatch/internal/store"

// Profile is the canonical, persisted representation of one discovered
// user.
type Profile = store.Profile

// ActivityEntry is one append-only activity log record.
type ActivityEntry = store.ActivityEntry

// Stats holds aggregate profile counters.
type Stats = store.Stats

// DailyStats holds additive per-day counters.
type DailyStats = store.DailyStats

// Activity action types.
const (
	ActionLikeReceived = store.ActionLikeReceived
	ActionMatch        = store.ActionMatch
	ActionAutolike     = store.ActionAutolike
	ActionRunStarted   = store.ActionRunStarted
	ActionRunStopped   = store.ActionRunStopped
	ActionCleared      = store.ActionCleared
)
