package beewatch

import "sync"

// RunSession tracks the profile IDs accepted during one monitoring run,
// plus the run's counters. It suppresses duplicate notifications within
// a run without re-querying durable storage; it is discarded when the
// run ends.
type RunSession struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	newLikes  int
	matches   int
	autolikes int
}

// NewRunSession creates an empty session.
func NewRunSession() *RunSession {
	return &RunSession{seen: make(map[string]struct{})}
}

// Reset forgets every accepted id, so re-captured profiles count as new
// again. Counters are kept; they describe the run, not the stored set.
func (s *RunSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
}

// Accept reports whether id is new to this run, recording it if so.
func (s *RunSession) Accept(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Seen reports how many distinct profiles this run has accepted.
func (s *RunSession) Seen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *RunSession) CountNewLike() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newLikes++
}

func (s *RunSession) CountMatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches++
}

// CountAutolike increments and returns the autolike counter.
func (s *RunSession) CountAutolike() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autolikes++
	return s.autolikes
}

func (s *RunSession) NewLikes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newLikes
}

func (s *RunSession) Matches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches
}

func (s *RunSession) Autolikes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autolikes
}
