// Package status renders the engine readout as short text lines for the
// tray menu and the indicator window.
package status

import (
	"fmt"
	"time"

	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/model"
	"auctionpauser/internal/core/pauser"

	"github.com/dustin/go-humanize"
)

// Lines is a rendered status readout.
type Lines struct {
	Headline  string
	Timer     string
	Nominee   string
	Clicks    string
	LastPause string
}

// Render formats status as of now.
func Render(status pauser.Status, now time.Time) Lines {
	return Lines{
		Headline:  Headline(status),
		Timer:     timerLine(status),
		Nominee:   nomineeLine(status.CurrentNominee),
		Clicks:    fmt.Sprintf("Clicks: %d pause, %d live", status.Counters.ManualPauses, status.Counters.LiveClicks),
		LastPause: lastPauseLine(status.LastPauseAt, now),
	}
}

// Headline summarizes the engine in a few words.
func Headline(status pauser.Status) string {
	switch {
	case !status.Ready:
		return "Waiting for draft room"
	case !status.Enabled:
		return "Auto-pause off"
	case status.Waiting:
		return "Waiting for nomination"
	}
	switch status.Phase {
	case controller.PhasePauseInFlight:
		return "Pausing..."
	case controller.PhaseDisarmedWaitingResume:
		return "Paused, waiting for resume"
	default:
		return "Armed"
	}
}

func timerLine(status pauser.Status) string {
	clock := "--:--"
	if status.Timer != nil {
		clock = status.Timer.String()
	}
	switch status.TimerState {
	case model.TimerLive:
		return fmt.Sprintf("Timer: %s (live)", clock)
	case model.TimerPaused:
		return fmt.Sprintf("Timer: %s (paused)", clock)
	default:
		return fmt.Sprintf("Timer: %s", clock)
	}
}

func nomineeLine(nominee string) string {
	if nominee == "" {
		return "Player: none"
	}
	return "Player: " + nominee
}

func lastPauseLine(at, now time.Time) string {
	if at.IsZero() {
		return "Last pause: never"
	}
	return "Last pause: " + humanize.RelTime(at, now, "ago", "from now")
}
