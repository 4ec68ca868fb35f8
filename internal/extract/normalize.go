package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/beewatch/internal/store"
)

// maxInterests caps how many interest names are carried per profile.
const maxInterests = 10

// attributeFields maps profile_fields id substrings to Profile attributes.
// Matching is by substring containment and entries are checked in order;
// the first matching substring wins for a given field entry, while a later
// entry can still overwrite an attribute set by an earlier one. The upstream
// id for zodiac is spelled "zodiak"; the mapping preserves that exactly.
var attributeFields = []struct {
	substr string
	assign func(p *store.Profile, v string)
}{
	{"education", func(p *store.Profile, v string) { p.Education = v }},
	{"height", func(p *store.Profile, v string) { p.Height = v }},
	{"smoking", func(p *store.Profile, v string) { p.Smoking = v }},
	{"drinking", func(p *store.Profile, v string) { p.Drinking = v }},
	{"exercise", func(p *store.Profile, v string) { p.Exercise = v }},
	{"pets", func(p *store.Profile, v string) { p.Pets = v }},
	{"politics", func(p *store.Profile, v string) { p.Politics = v }},
	{"religion", func(p *store.Profile, v string) { p.Religion = v }},
	{"zodiak", func(p *store.Profile, v string) { p.Zodiac = v }},
	{"dating_intentions", func(p *store.Profile, v string) { p.DatingIntentions = v }},
}

// Normalize builds a canonical Profile from one candidate's user object.
// A missing or malformed nested path yields the field's zero value,
// never an error. Only a missing
// identifier fails, with ErrInvalidProfile.
func Normalize(user map[string]any, voted bool) (*store.Profile, error) {
	id := stringValue(user, "user_id")
	if id == "" {
		return nil, ErrInvalidProfile
	}

	now := time.Now().UnixMilli()
	name := stringValue(user, "name")
	p := &store.Profile{
		ID:            id,
		Name:          name,
		DisplayName:   displayName(name),
		Age:           intValue(user, "age"),
		HasVoted:      voted,
		Photo:         photoURL(user),
		Interests:     interestNames(user),
		City:          stringValue(mapValue(user, "city"), "name"),
		Country:       stringValue(mapValue(user, "country"), "name"),
		DistanceShort: stringValue(user, "distance_short"),
		OnlineStatus:  intValue(user, "online_status"),
		IsVerified:    boolValue(user, "is_verified", false),
		SpotifyTrack:  spotifyTrack(user),
		FirstSeen:     now,
		LastSeen:      now,
	}

	for _, raw := range sliceValue(user, "profile_fields") {
		field, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fieldID := stringValue(field, "id")
		value := stringValue(field, "display_value")
		for _, attr := range attributeFields {
			if strings.Contains(fieldID, attr.substr) {
				attr.assign(p, value)
				break
			}
		}
	}

	// Instagram shows up as an album with type code 12 from external
	// provider code 12.
	for _, raw := range sliceValue(user, "albums") {
		album, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if intValue(album, "album_type") == 12 && intValue(album, "external_provider") == 12 {
			p.InstagramConnected = true
			break
		}
	}

	return p, nil
}

// photoURL pulls the first photo of the first album, rewriting
// protocol-relative URLs to https.
func photoURL(user map[string]any) *string {
	albums := sliceValue(user, "albums")
	if len(albums) == 0 {
		return nil
	}
	first, ok := albums[0].(map[string]any)
	if !ok {
		return nil
	}
	photos := sliceValue(first, "photos")
	if len(photos) == 0 {
		return nil
	}
	photo, ok := photos[0].(map[string]any)
	if !ok {
		return nil
	}
	u := stringValue(photo, "large_url")
	if u == "" {
		return nil
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return &u
}

func interestNames(user map[string]any) []string {
	out := []string{}
	for _, raw := range sliceValue(user, "interests") {
		if len(out) == maxInterests {
			break
		}
		interest, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, stringValue(interest, "name"))
	}
	return out
}

func spotifyTrack(user map[string]any) string {
	song := mapValue(user, "spotify_mood_song")
	if song == nil {
		return ""
	}
	name := stringValue(song, "name")
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s - %s", name, stringValue(song, "artist_name"))
}

// stringValue also stringifies numeric identifiers, which some endpoints
// emit as JSON numbers. Classify decodes with UseNumber, so the digits
// come through verbatim regardless of magnitude.
func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func intValue(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	}
	return 0
}
