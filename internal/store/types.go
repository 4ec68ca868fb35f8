package store

// Profile is the canonical, persisted representation of one discovered user.
// ID is assigned by the upstream API and immutable once stored.
type Profile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	DisplayName        string   `json:"display_name"` // name with RTL scripts reversed for rendering
	Age                int      `json:"age"`
	HasVoted           bool     `json:"has_voted"` // true = match/contacted, false = new undecided like
	Photo              *string  `json:"photo,omitempty"`
	Interests          []string `json:"interests"`
	Education          string   `json:"education"`
	Height             string   `json:"height"`
	Smoking            string   `json:"smoking"`
	Drinking           string   `json:"drinking"`
	Exercise           string   `json:"exercise"`
	Pets               string   `json:"pets"`
	Politics           string   `json:"politics"`
	Religion           string   `json:"religion"`
	Zodiac             string   `json:"zodiac"`
	DatingIntentions   string   `json:"dating_intentions"`
	City               string   `json:"city"`
	Country            string   `json:"country"`
	DistanceShort      string   `json:"distance_short"`
	OnlineStatus       int      `json:"online_status"`
	IsVerified         bool     `json:"is_verified"`
	InstagramConnected bool     `json:"instagram_connected"`
	SpotifyTrack       string   `json:"spotify_track"`
	FirstSeen          int64    `json:"first_seen"` // epoch ms
	LastSeen           int64    `json:"last_seen"`  // epoch ms
}

// ActivityEntry is one append-only activity log record.
type ActivityEntry struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	ActionType  string `json:"action_type"`
	ProfileID   string `json:"profile_id,omitempty"`
	ProfileName string `json:"profile_name,omitempty"`
	Details     string `json:"details"`
}

// Activity action types.
const (
	ActionLikeReceived = "like_received"
	ActionMatch        = "match"
	ActionAutolike     = "autolike"
	ActionRunStarted   = "run_started"
	ActionRunStopped   = "run_stopped"
	ActionCleared      = "cleared"
)

// Stats holds aggregate profile counters.
type Stats struct {
	Total         int `json:"total"`
	NewLikes      int `json:"new_likes"`
	Matches       int `json:"matches"`
	Verified      int `json:"verified"`
	WithInstagram int `json:"with_instagram"`
	WithInterests int `json:"with_interests"`
}

// DailyStats holds additive per-day counters.
type DailyStats struct {
	Date          string `json:"date"` // YYYY-MM-DD
	LikesReceived int    `json:"likes_received"`
	Matches       int    `json:"matches"`
	Autolikes     int    `json:"autolikes"`
}
