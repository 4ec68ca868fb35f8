package extract

import (
	"bytes"
	"encoding/json"
	"strings"
)

// shapeRule pairs a name with an extractor for one known payload shape.
// Rules are tried in a fixed priority order; the first rule that yields a
// non-empty candidate list wins and later rules are never consulted.
type shapeRule struct {
	name    string
	extract func(root map[string]any) []Candidate
}

var shapeRules = []shapeRule{
	{"client_encounters", func(root map[string]any) []Candidate {
		return plainCandidates(slicePath(firstBody(root), "client_encounters", "results"))
	}},
	{"client_user_list", func(root map[string]any) []Candidate {
		list := mapValue(firstBody(root), "client_user_list")
		if list == nil {
			return nil
		}
		// A present section owns the lookup even when it holds nothing;
		// the sibling users list is only read when section is absent.
		if section := mapValue(list, "section"); section != nil {
			if users := sliceValue(section, "users"); users != nil {
				return plainCandidates(users)
			}
			return plainCandidates(sliceValue(section, "items"))
		}
		return plainCandidates(sliceValue(list, "users"))
	}},
	{"encounters", func(root map[string]any) []Candidate {
		return plainCandidates(sliceValue(firstBody(root), "encounters"))
	}},
	{"sections", func(root map[string]any) []Candidate {
		body := firstBody(root)
		if body == nil {
			return nil
		}
		sections := sliceValue(body, "sections")
		if sections == nil {
			if section := mapValue(body, "section"); section != nil {
				sections = []any{section}
			}
		}
		for _, raw := range sections {
			section, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if users := sliceValue(section, "users"); users != nil {
				return plainCandidates(users)
			}
			if items := sliceValue(section, "items"); items != nil {
				return plainCandidates(items)
			}
		}
		return nil
	}},
	{"users", func(root map[string]any) []Candidate {
		return plainCandidates(sliceValue(firstBody(root), "users"))
	}},
	{"results", func(root map[string]any) []Candidate {
		return plainCandidates(sliceValue(firstBody(root), "results"))
	}},
	{"connections", func(root map[string]any) []Candidate {
		var out []Candidate
		for _, raw := range sliceValue(firstBody(root), "connections") {
			conn, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			user := mapValue(conn, "user")
			if user == nil {
				continue
			}
			// Connections are presumed mutual: is_match defaults to true
			// when the payload carries neither flag.
			voted := boolValue(conn, "has_conversation", false) ||
				boolValue(conn, "is_match", true)
			out = append(out, Candidate{User: user, VotedHint: voted, HintSet: true})
		}
		return out
	}},
	{"top_encounters", func(root map[string]any) []Candidate {
		return plainCandidates(sliceValue(root, "encounters"))
	}},
	{"top_beeline", func(root map[string]any) []Candidate {
		return plainCandidates(sliceValue(root, "beeline"))
	}},
	{"top_matches", func(root map[string]any) []Candidate {
		var out []Candidate
		for _, raw := range sliceValue(root, "matches") {
			match, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if user := mapValue(match, "user"); user != nil {
				out = append(out, Candidate{User: user, VotedHint: true, HintSet: true})
			}
		}
		return out
	}},
	{"top_conversations", func(root map[string]any) []Candidate {
		var out []Candidate
		for _, raw := range sliceValue(root, "conversations") {
			conv, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			user := mapValue(conv, "person")
			if user == nil {
				user = mapValue(conv, "user")
			}
			if user != nil {
				out = append(out, Candidate{User: user, VotedHint: true, HintSet: true})
			}
		}
		return out
	}},
}

// Classify parses a raw capture body and extracts its user-bearing records.
// Payloads that fail to parse or match no known shape yield an empty result;
// both are expected outcomes, not errors, since most intercepted traffic
// carries no profile data.
func Classify(body []byte) []Candidate {
	// UseNumber keeps numeric identifiers as their literal digits; large
	// ids would lose precision through float64.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil
	}
	for _, rule := range shapeRules {
		if out := rule.extract(root); len(out) > 0 {
			return out
		}
	}
	return nil
}

// ResolveVoted decides whether a candidate counts as already voted on.
// An explicit true hint wins; otherwise endpoints that only ever return
// already-contacted people (connections, matches, conversations) imply true.
func ResolveVoted(c Candidate, sourceURL string) bool {
	if c.HintSet && c.VotedHint {
		return true
	}
	u := strings.ToLower(sourceURL)
	return strings.Contains(u, "connections") ||
		strings.Contains(u, "matches") ||
		strings.Contains(u, "conversation")
}

// plainCandidates wraps generic records: the nested user object when one
// exists, the record itself otherwise, honoring an explicit voted hint.
func plainCandidates(records []any) []Candidate {
	var out []Candidate
	for _, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := Candidate{User: rec}
		if user := mapValue(rec, "user"); user != nil {
			c.User = user
		}
		if hint, ok := rec["has_user_voted"].(bool); ok {
			c.VotedHint = hint
			c.HintSet = true
		}
		out = append(out, c)
	}
	return out
}

// firstBody returns body[0] when the envelope carries a non-empty body array.
func firstBody(root map[string]any) map[string]any {
	arr, ok := root["body"].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	m, _ := arr[0].(map[string]any)
	return m
}

func mapValue(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func sliceValue(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]any)
	return v
}

func slicePath(m map[string]any, keys ...string) []any {
	for _, key := range keys[:len(keys)-1] {
		m = mapValue(m, key)
	}
	return sliceValue(m, keys[len(keys)-1])
}

func boolValue(m map[string]any, key string, def bool) bool {
	v, ok := m[key].(bool)
	if !ok {
		return def
	}
	return v
}
