package beewatch

import "errors"

// ErrRunActive is returned when a run is started while one is already in
// progress.
var ErrRunActive = errors.New("beewatch: run already active")

// ErrNoRun is returned when a stop is requested with no run in progress.
var ErrNoRun = errors.New("beewatch: no active run")

// ErrNoSession is returned when no session cookies are stored.
var ErrNoSession = errors.New("beewatch: no stored session")
