package model

import "errors"

var (
	// ErrSignalAbsent indicates an expected page signal was missing this poll.
	ErrSignalAbsent = errors.New("signal absent")
	// ErrAmbiguousSignal indicates contradictory markers on the page.
	ErrAmbiguousSignal = errors.New("ambiguous signal")
	// ErrActionNotFound indicates no clickable pause control could be located.
	ErrActionNotFound = errors.New("pause control not found")
	// ErrDuplicatePause indicates a pause was requested while one is outstanding.
	ErrDuplicatePause = errors.New("pause already in flight")
)
