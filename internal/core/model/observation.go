package model

import (
	"errors"
	"fmt"
)

// TimerTextState is the timer mode inferred from the Live/Paused markers.
type TimerTextState string

const (
	TimerUnknown TimerTextState = "unknown"
	TimerLive    TimerTextState = "live"
	TimerPaused  TimerTextState = "paused"
)

// TimerValue is a parsed countdown reading.
type TimerValue struct {
	Minutes      int
	Seconds      int
	TotalSeconds int
}

// NewTimerValue builds a reading and reports false for out-of-range parts.
func NewTimerValue(minutes, seconds int) (TimerValue, bool) {
	if minutes < 0 || seconds < 0 || seconds > 59 {
		return TimerValue{}, false
	}
	return TimerValue{
		Minutes:      minutes,
		Seconds:      seconds,
		TotalSeconds: minutes*60 + seconds,
	}, true
}

func (value TimerValue) String() string {
	return fmt.Sprintf("%d:%02d", value.Minutes, value.Seconds)
}

// Observation is what a single poll could read from the host page.
// Zero values mean the signal was absent.
type Observation struct {
	Timer     *TimerValue
	Nominee   string
	TimerText TimerTextState
	Waiting   bool

	LiveMarker   bool
	PausedMarker bool
}

// TimerTextFromMarkers resolves the marker pair; both or neither is unknown.
func TimerTextFromMarkers(live, paused bool) TimerTextState {
	switch {
	case live && !paused:
		return TimerLive
	case paused && !live:
		return TimerPaused
	default:
		return TimerUnknown
	}
}

// Issues reports which signals were missing or contradictory, or nil.
func (obs Observation) Issues() error {
	var issues []error
	if obs.Timer == nil {
		issues = append(issues, fmt.Errorf("timer: %w", ErrSignalAbsent))
	}
	if obs.Nominee == "" && !obs.Waiting {
		issues = append(issues, fmt.Errorf("nominee: %w", ErrSignalAbsent))
	}
	switch {
	case obs.LiveMarker && obs.PausedMarker:
		issues = append(issues, fmt.Errorf("live and paused markers: %w", ErrAmbiguousSignal))
	case !obs.LiveMarker && !obs.PausedMarker:
		issues = append(issues, fmt.Errorf("timer markers: %w", ErrSignalAbsent))
	}
	return errors.Join(issues...)
}

// AuctionState is the canonical auction state folded from observations.
type AuctionState struct {
	CurrentNominee string
	TimerState     TimerTextState
	WasWaiting     bool
}

// NominationDetected marks a waiting-to-live transition onto a new nominee.
type NominationDetected struct {
	Nominee string
}

// PauseResult is the outcome of one attempt to click the pause control.
type PauseResult int

const (
	PauseNotFound PauseResult = iota
	PauseSuccess
)

func (result PauseResult) String() string {
	if result == PauseSuccess {
		return "success"
	}
	return "not_found"
}

// ControlClick is a click on a timer control reported by the host page.
// Trusted is false for synthetic clicks, including the pauser's own.
type ControlClick struct {
	Text      string
	PauseHint bool
	LiveHint  bool
	Trusted   bool
}
