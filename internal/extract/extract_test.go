package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify_ClientEncounters(t *testing.T) {
	// WHAT: The primary swipe/feed shape yields one candidate per result.
	// WHY: client_encounters carries most new likes; it is rule one.
	body := []byte(`{"body":[{"client_encounters":{"results":[
		{"user":{"user_id":"1","name":"Ana"}},
		{"user":{"user_id":"2","name":"Eva"}}
	]}}]}`)
	got := Classify(body)
	if len(got) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(got))
	}
	if got[0].User["user_id"] != "1" || got[1].User["user_id"] != "2" {
		t.Errorf("ids: %v, %v", got[0].User["user_id"], got[1].User["user_id"])
	}
	if got[0].HintSet {
		t.Error("feed candidates carry no vote hint")
	}
}

func TestClassify_ClientUserList(t *testing.T) {
	// WHAT: client_user_list is matched via section.users, section.items,
	// or a direct users key.
	// WHY: The beeline endpoint switched between these layouts across
	// app versions; all three must resolve.
	for _, tc := range []struct {
		name string
		body string
	}{
		{"section users", `{"body":[{"client_user_list":{"section":{"users":[{"user_id":"3"}]}}}]}`},
		{"section items", `{"body":[{"client_user_list":{"section":{"items":[{"user_id":"3"}]}}}]}`},
		{"direct users", `{"body":[{"client_user_list":{"users":[{"user_id":"3"}]}}]}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify([]byte(tc.body))
			if len(got) != 1 || got[0].User["user_id"] != "3" {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestClassify_EmptySectionOwnsUserList(t *testing.T) {
	// WHAT: When client_user_list carries a section, the sibling users key
	// is never consulted, even if the section holds no users or items. The
	// shape yields nothing and later rules get their turn.
	// WHY: section and users are alternative layouts, not fallbacks for
	// each other; reading past an empty section would surface records the
	// endpoint chose not to place there.
	body := []byte(`{"body":[{"client_user_list":{
		"section":{"header":"promo"},
		"users":[{"user_id":"3"}]
	}}]}`)
	if got := Classify(body); got != nil {
		t.Errorf("empty section must not fall back to users: got %+v", got)
	}

	// A later shape in the same body still resolves.
	withUsers := []byte(`{"body":[{
		"client_user_list":{"section":{"header":"promo"}},
		"users":[{"user_id":"4"}]
	}]}`)
	got := Classify(withUsers)
	if len(got) != 1 || got[0].User["user_id"] != "4" {
		t.Errorf("later rule blocked: got %+v", got)
	}
}

func TestClassify_Sections(t *testing.T) {
	// WHAT: With multiple sections, the first one holding users or items
	// wins; sections without either are skipped.
	// WHY: The sections shape interleaves promo blocks with user blocks.
	body := []byte(`{"body":[{"sections":[
		{"banner":"x"},
		{"items":[{"user_id":"9"}]},
		{"users":[{"user_id":"ignored"}]}
	]}]}`)
	got := Classify(body)
	if len(got) != 1 || got[0].User["user_id"] != "9" {
		t.Errorf("got %+v", got)
	}

	// A lone singular section works too.
	single := []byte(`{"body":[{"section":{"users":[{"user_id":"8"}]}}]}`)
	got = Classify(single)
	if len(got) != 1 || got[0].User["user_id"] != "8" {
		t.Errorf("singular section: got %+v", got)
	}
}

func TestClassify_BodyFallbacks(t *testing.T) {
	// WHAT: encounters, users, and results inside body[0] each resolve
	// when the higher-priority shapes are absent.
	// WHY: These are the plain list fallbacks of rules three, five, six.
	for _, key := range []string{"encounters", "users", "results"} {
		body := fmt.Sprintf(`{"body":[{%q:[{"user_id":"5"}]}]}`, key)
		got := Classify([]byte(body))
		if len(got) != 1 || got[0].User["user_id"] != "5" {
			t.Errorf("%s: got %+v", key, got)
		}
	}
}

func TestClassify_Connections(t *testing.T) {
	// WHAT: Each connection wraps its user and derives a vote hint from
	// has_conversation OR is_match, with is_match defaulting to true.
	// WHY: Connections are presumed mutual unless the payload says
	// otherwise; downstream match labeling depends on this default.
	body := []byte(`{"body":[{"connections":[
		{"user":{"user_id":"a"},"has_conversation":true,"is_match":false},
		{"user":{"user_id":"b"},"has_conversation":false,"is_match":false},
		{"user":{"user_id":"c"}}
	]}]}`)
	got := Classify(body)
	if len(got) != 3 {
		t.Fatalf("candidates: got %d, want 3", len(got))
	}
	want := []bool{true, false, true}
	for i, c := range got {
		if !c.HintSet {
			t.Errorf("candidate %d: hint not set", i)
		}
		if c.VotedHint != want[i] {
			t.Errorf("candidate %d: voted %v, want %v", i, c.VotedHint, want[i])
		}
	}
}

func TestClassify_TopLevelShapes(t *testing.T) {
	// WHAT: Envelope-less payloads resolve via top-level encounters,
	// beeline, matches, and conversations.
	// WHY: Some endpoints skip the body wrapper entirely.
	for _, tc := range []struct {
		name      string
		body      string
		wantVoted bool
		hintSet   bool
	}{
		{"encounters", `{"encounters":[{"user_id":"1"}]}`, false, false},
		{"beeline", `{"beeline":[{"user_id":"1"}]}`, false, false},
		{"matches", `{"matches":[{"user":{"user_id":"1"}}]}`, true, true},
		{"conversations person", `{"conversations":[{"person":{"user_id":"1"}}]}`, true, true},
		{"conversations user", `{"conversations":[{"user":{"user_id":"1"}}]}`, true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify([]byte(tc.body))
			if len(got) != 1 {
				t.Fatalf("candidates: got %d, want 1", len(got))
			}
			if got[0].HintSet != tc.hintSet || got[0].VotedHint != tc.wantVoted {
				t.Errorf("hint: set=%v voted=%v, want set=%v voted=%v",
					got[0].HintSet, got[0].VotedHint, tc.hintSet, tc.wantVoted)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// WHAT: A payload matching both rule one and rule seven is classified
	// by rule one only.
	// WHY: Rules are fallbacks, never additive; a double match would
	// duplicate every profile in the batch.
	body := []byte(`{"body":[{
		"client_encounters":{"results":[{"user":{"user_id":"feed"}}]},
		"connections":[{"user":{"user_id":"conn"}}]
	}]}`)
	got := Classify(body)
	if len(got) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(got))
	}
	if got[0].User["user_id"] != "feed" {
		t.Errorf("classified via wrong rule: got id %v", got[0].User["user_id"])
	}
}

func TestClassify_NoMatch(t *testing.T) {
	// WHAT: Unrecognized and malformed bodies yield an empty result.
	// WHY: Most intercepted traffic carries no profile data; silence is
	// the expected outcome, not an error.
	for _, body := range []string{
		`{"status":"ok"}`,
		`{"body":[]}`,
		`{"body":[{"client_encounters":{"results":[]}}]}`,
		`not json at all`,
		`[1,2,3]`,
	} {
		if got := Classify([]byte(body)); len(got) != 0 {
			t.Errorf("%s: got %d candidates, want 0", body, len(got))
		}
	}
}

func TestResolveVoted(t *testing.T) {
	// WHAT: An explicit true hint wins; otherwise the source URL decides,
	// and everything else defaults to a fresh like.
	// WHY: connections, matches, and conversation endpoints only ever
	// return people the account has already interacted with.
	for _, tc := range []struct {
		name string
		c    Candidate
		url  string
		want bool
	}{
		{"explicit hint", Candidate{VotedHint: true, HintSet: true}, "https://x.com/feed", true},
		{"false hint, neutral url", Candidate{VotedHint: false, HintSet: true}, "https://x.com/feed", false},
		{"connections url", Candidate{}, "https://x.com/api/CONNECTIONS?x=1", true},
		{"matches url", Candidate{}, "https://x.com/v2/matches", true},
		{"conversation url", Candidate{}, "https://x.com/conversationList", true},
		{"plain feed", Candidate{}, "https://x.com/encounters", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveVoted(tc.c, tc.url); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalize_MinimalUser(t *testing.T) {
	// WHAT: A user object carrying only an identifier normalizes with
	// every documented default and no error.
	// WHY: normalize must be total over well-formed-but-incomplete input.
	p, err := Normalize(map[string]any{"user_id": "77"}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.ID != "77" || p.Name != "" || p.Age != 0 || p.HasVoted {
		t.Errorf("defaults: %+v", p)
	}
	if p.Photo != nil {
		t.Errorf("photo: got %v, want nil", *p.Photo)
	}
	if diff := cmp.Diff([]string{}, p.Interests); diff != "" {
		t.Errorf("interests (-want +got):\n%s", diff)
	}
	if p.Education != "" || p.Zodiac != "" || p.City != "" || p.SpotifyTrack != "" {
		t.Errorf("attribute defaults: %+v", p)
	}
	if p.FirstSeen == 0 || p.LastSeen != p.FirstSeen {
		t.Errorf("timestamps: first=%d last=%d", p.FirstSeen, p.LastSeen)
	}
}

func TestNormalize_MissingID(t *testing.T) {
	// WHAT: Candidates without a usable identifier fail with
	// ErrInvalidProfile.
	// WHY: Such candidates are skipped individually, never fatal to the
	// batch, so the error must be a recognizable sentinel.
	for _, user := range []map[string]any{nil, {}, {"name": "Ana"}} {
		if _, err := Normalize(user, false); !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("user %v: got %v, want ErrInvalidProfile", user, err)
		}
	}
}

func TestNormalize_NumericID(t *testing.T) {
	// WHAT: A numeric user_id is stringified.
	// WHY: Some endpoints emit identifiers as JSON numbers.
	p, err := Normalize(map[string]any{"user_id": float64(123456)}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.ID != "123456" {
		t.Errorf("id: got %q", p.ID)
	}
}

func TestNormalize_LargeNumericID(t *testing.T) {
	// WHAT: A numeric id above 2^53 survives the Classify-to-Normalize
	// path digit for digit.
	// WHY: float64 cannot represent such identifiers exactly; the decoder
	// keeps numbers as literals so none of the digits drift.
	body := []byte(`{"body":[{"users":[{"user_id":9007199254740993,"age":31}]}]}`)
	got := Classify(body)
	if len(got) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(got))
	}
	p, err := Normalize(got[0].User, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.ID != "9007199254740993" {
		t.Errorf("id: got %q, want 9007199254740993", p.ID)
	}
	if p.Age != 31 {
		t.Errorf("age: got %d, want 31", p.Age)
	}
}

func TestNormalize_Photo(t *testing.T) {
	// WHAT: The first photo of the first album is extracted and
	// protocol-relative URLs are rewritten to https.
	// WHY: The API emits scheme-less CDN URLs that break naive clients.
	user := map[string]any{
		"user_id": "1",
		"albums": []any{map[string]any{
			"photos": []any{
				map[string]any{"large_url": "//cdn.example.com/a.jpg"},
				map[string]any{"large_url": "//cdn.example.com/b.jpg"},
			},
		}},
	}
	p, err := Normalize(user, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.Photo == nil || *p.Photo != "https://cdn.example.com/a.jpg" {
		t.Errorf("photo: got %v", p.Photo)
	}

	user["albums"] = []any{map[string]any{
		"photos": []any{map[string]any{"large_url": "https://cdn.example.com/c.jpg"}},
	}}
	p, _ = Normalize(user, false)
	if p.Photo == nil || *p.Photo != "https://cdn.example.com/c.jpg" {
		t.Errorf("absolute photo rewritten: got %v", p.Photo)
	}
}

func TestNormalize_InterestsCapped(t *testing.T) {
	// WHAT: At most ten interest names are kept, in order.
	// WHY: The cap bounds storage per profile.
	var interests []any
	for i := 0; i < 15; i++ {
		interests = append(interests, map[string]any{"name": fmt.Sprintf("i%d", i)})
	}
	p, err := Normalize(map[string]any{"user_id": "1", "interests": interests}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(p.Interests) != 10 || p.Interests[0] != "i0" || p.Interests[9] != "i9" {
		t.Errorf("interests: %v", p.Interests)
	}
}

func TestNormalize_ProfileFields(t *testing.T) {
	// WHAT: profile_fields entries map to attributes by id substring,
	// including the upstream "zodiak" spelling mapping to zodiac, and a
	// later entry overwrites an earlier match for the same attribute.
	// WHY: Substring containment and last-write-wins are observed
	// upstream behavior and downstream consumers rely on both.
	user := map[string]any{
		"user_id": "1",
		"profile_fields": []any{
			map[string]any{"id": "lifestyle_smoking", "display_value": "Never"},
			map[string]any{"id": "zodiak_sign", "display_value": "Leo"},
			map[string]any{"id": "education_level", "display_value": "PhD"},
			map[string]any{"id": "education_school", "display_value": "MIT"},
			map[string]any{"id": "unrelated", "display_value": "x"},
		},
	}
	p, err := Normalize(user, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.Smoking != "Never" {
		t.Errorf("smoking: %q", p.Smoking)
	}
	if p.Zodiac != "Leo" {
		t.Errorf("zodiac: %q", p.Zodiac)
	}
	if p.Education != "MIT" {
		t.Errorf("education last-write-wins: %q", p.Education)
	}
}

func TestNormalize_Instagram(t *testing.T) {
	// WHAT: instagram_connected is true only when an album has type 12
	// from external provider 12.
	// WHY: Either code alone identifies a different album kind.
	for _, tc := range []struct {
		name string
		alb  map[string]any
		want bool
	}{
		{"both codes", map[string]any{"album_type": float64(12), "external_provider": float64(12)}, true},
		{"type only", map[string]any{"album_type": float64(12)}, false},
		{"provider only", map[string]any{"external_provider": float64(12)}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := Normalize(map[string]any{"user_id": "1", "albums": []any{tc.alb}}, false)
			if p.InstagramConnected != tc.want {
				t.Errorf("got %v, want %v", p.InstagramConnected, tc.want)
			}
		})
	}
}

func TestNormalize_Spotify(t *testing.T) {
	// WHAT: A mood song formats as "name - artist"; a song without a name
	// yields the empty string.
	// WHY: Dashboard display expects the combined form or nothing.
	user := map[string]any{
		"user_id": "1",
		"spotify_mood_song": map[string]any{
			"name": "Song", "artist_name": "Artist",
		},
	}
	p, _ := Normalize(user, false)
	if p.SpotifyTrack != "Song - Artist" {
		t.Errorf("spotify: %q", p.SpotifyTrack)
	}

	user["spotify_mood_song"] = map[string]any{"artist_name": "Artist"}
	p, _ = Normalize(user, false)
	if p.SpotifyTrack != "" {
		t.Errorf("nameless song: %q", p.SpotifyTrack)
	}
}

func TestNormalize_HebrewDisplayName(t *testing.T) {
	// WHAT: A Hebrew name gets its runes reversed in display_name while
	// name stays untouched; non-Hebrew names pass through.
	// WHY: Right-to-left text renders backwards in the terminal and in
	// naive HTML clients.
	p, _ := Normalize(map[string]any{"user_id": "1", "name": "שלום"}, false)
	if p.Name != "שלום" {
		t.Errorf("name mutated: %q", p.Name)
	}
	if p.DisplayName != "םולש" {
		t.Errorf("display_name: %q", p.DisplayName)
	}

	p, _ = Normalize(map[string]any{"user_id": "1", "name": "Ana"}, false)
	if p.DisplayName != "Ana" {
		t.Errorf("latin name changed: %q", p.DisplayName)
	}
}

func TestMatchesEndpointRoundTrip(t *testing.T) {
	// WHAT: A matches capture flows classify, resolve, normalize into one
	// voted profile with the expected fields.
	// WHY: This is the end-to-end contract of the extraction pipeline.
	body := []byte(`{"matches":[{"user":{"user_id":"42","name":"Ana","age":28}}]}`)
	url := "https://app.example.com/api/v2/matches"

	candidates := Classify(body)
	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(candidates))
	}
	voted := ResolveVoted(candidates[0], url)
	p, err := Normalize(candidates[0].User, voted)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.ID != "42" || !p.HasVoted || p.Age != 28 || p.Name != "Ana" {
		t.Errorf("profile: %+v", p)
	}
	if diff := cmp.Diff([]string{}, p.Interests); diff != "" {
		t.Errorf("interests (-want +got):\n%s", diff)
	}
}

func TestFeedCandidateNotVoted(t *testing.T) {
	// WHAT: A bare feed candidate with no hint from a neutral URL
	// normalizes with has_voted false.
	// WHY: Fresh incoming likes must never be mislabeled as matches.
	body := []byte(`{"body":[{"client_encounters":{"results":[{"user":{"user_id":"7"}}]}}]}`)
	candidates := Classify(body)
	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d", len(candidates))
	}
	voted := ResolveVoted(candidates[0], "https://app.example.com/feed")
	p, err := Normalize(candidates[0].User, voted)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.HasVoted {
		t.Error("feed candidate labeled as voted")
	}
}

func TestClassifyRealisticEnvelope(t *testing.T) {
	// WHAT: A full envelope with metadata alongside the data key still
	// classifies correctly.
	// WHY: Real responses carry version and message-type noise around the
	// body array.
	payload := map[string]any{
		"$gpb":          "some.MessageType",
		"version":       1,
		"message_id":    9001,
		"message_type":  124,
		"response_time": 30,
		"body": []any{map[string]any{
			"message_type": 124,
			"client_encounters": map[string]any{
				"results": []any{
					map[string]any{"user": map[string]any{"user_id": "x1", "name": "Mia"}},
				},
			},
		}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	got := Classify(raw)
	if len(got) != 1 || got[0].User["user_id"] != "x1" {
		t.Errorf("got %+v", got)
	}
}
