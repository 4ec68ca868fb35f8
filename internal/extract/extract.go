// Package extract turns intercepted API payloads into canonical profiles.
//
// The upstream API serves the same logical "list of people" intent through
// at least nine distinct JSON shapes depending on endpoint and app version.
// Classify locates the user-bearing records inside a raw body, ResolveVoted
// tags each record as match or fresh like, and Normalize builds the durable
// Profile, tolerating absent or malformed optional fields.
package extract

import "errors"

// ErrInvalidProfile marks a candidate whose user object is absent or has no
// identifier. Such candidates are skipped, never fatal to the batch.
var ErrInvalidProfile = errors.New("extract: candidate has no user id")

// Candidate is one user-bearing record located inside a capture body.
// VotedHint is only meaningful when HintSet is true; rules that know the
// vote state of their records (connections, matches, conversations) set it.
type Candidate struct {
	User      map[string]any
	VotedHint bool
	HintSet   bool
}
