package pauser

import (
	"time"

	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/model"
)

// EventType defines the type of Engine event.
type EventType string

const (
	EventStatus      EventType = "status"
	EventNomination  EventType = "nomination"
	EventPauseIssued EventType = "pause_issued"
	EventPauseFailed EventType = "pause_failed"
	EventRearmed     EventType = "rearmed"
	EventEnabled     EventType = "enabled"
)

// Status is the operator-facing readout of the engine.
type Status struct {
	Ready          bool
	Enabled        bool
	Waiting        bool
	TimerState     model.TimerTextState
	Timer          *model.TimerValue
	CurrentNominee string
	Phase          controller.Phase
	Counters       controller.Counters
	LastPauseAt    time.Time
	LastError      string
}

// Event represents an Engine update for observers.
type Event struct {
	Type    EventType
	Status  Status
	Nominee string
	Err     error
	At      time.Time
}
