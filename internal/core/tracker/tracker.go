// Package tracker folds per-poll observations into the canonical auction
// state and detects new nominations.
package tracker

import "auctionpauser/internal/core/model"

// ArmedReporter reports whether the pause controller may start a new cycle.
type ArmedReporter interface {
	Armed() bool
}

// Tracker owns the AuctionState. It is not safe for concurrent use; the poll
// loop is its only caller.
type Tracker struct {
	state    model.AuctionState
	reporter ArmedReporter
}

// New creates a Tracker with an unknown timer and no nominee.
func New(reporter ArmedReporter) *Tracker {
	return &Tracker{
		state:    model.AuctionState{TimerState: model.TimerUnknown},
		reporter: reporter,
	}
}

// State returns the current auction state.
func (tracker *Tracker) State() model.AuctionState {
	return tracker.state
}

// Reset forgets the nominee and timer state.
func (tracker *Tracker) Reset() {
	tracker.state = model.AuctionState{TimerState: model.TimerUnknown}
}

// Update applies one observation. It returns a NominationDetected only on the
// poll where the auction leaves the waiting state onto a new, live nominee
// while the controller is armed.
func (tracker *Tracker) Update(obs model.Observation) (model.AuctionState, *model.NominationDetected) {
	// Ambiguous or missing markers keep the last confident value.
	if obs.TimerText == model.TimerLive || obs.TimerText == model.TimerPaused {
		tracker.state.TimerState = obs.TimerText
	}

	isWaiting := obs.Waiting
	changed := obs.Nominee != "" && obs.Nominee != tracker.state.CurrentNominee

	var detected *model.NominationDetected
	if tracker.state.WasWaiting && !isWaiting && changed &&
		tracker.state.TimerState == model.TimerLive && tracker.armed() {
		tracker.state.CurrentNominee = obs.Nominee
		detected = &model.NominationDetected{Nominee: obs.Nominee}
	} else if changed && !isWaiting {
		tracker.state.CurrentNominee = obs.Nominee
	}

	tracker.state.WasWaiting = isWaiting
	return tracker.state, detected
}

func (tracker *Tracker) armed() bool {
	return tracker.reporter != nil && tracker.reporter.Armed()
}
