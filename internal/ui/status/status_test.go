package status

import (
	"testing"
	"time"

	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/model"
	"auctionpauser/internal/core/pauser"

	"github.com/stretchr/testify/assert"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		name   string
		status pauser.Status
		want   string
	}{
		{name: "not ready", status: pauser.Status{Enabled: true}, want: "Waiting for draft room"},
		{name: "disabled", status: pauser.Status{Ready: true}, want: "Auto-pause off"},
		{name: "waiting", status: pauser.Status{Ready: true, Enabled: true, Waiting: true}, want: "Waiting for nomination"},
		{name: "armed", status: pauser.Status{Ready: true, Enabled: true, Phase: controller.PhaseArmed}, want: "Armed"},
		{name: "in flight", status: pauser.Status{Ready: true, Enabled: true, Phase: controller.PhasePauseInFlight}, want: "Pausing..."},
		{name: "disarmed", status: pauser.Status{Ready: true, Enabled: true, Phase: controller.PhaseDisarmedWaitingResume}, want: "Paused, waiting for resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Headline(tt.status))
		})
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	timer, ok := model.NewTimerValue(0, 9)
	assert.True(t, ok)

	lines := Render(pauser.Status{
		Ready:          true,
		Enabled:        true,
		TimerState:     model.TimerPaused,
		Timer:          &timer,
		CurrentNominee: "Gunnar Henderson",
		Counters:       controller.Counters{ManualPauses: 1, LiveClicks: 2},
		LastPauseAt:    now.Add(-2 * time.Minute),
	}, now)

	assert.Equal(t, "Timer: 0:09 (paused)", lines.Timer)
	assert.Equal(t, "Player: Gunnar Henderson", lines.Nominee)
	assert.Equal(t, "Clicks: 1 pause, 2 live", lines.Clicks)
	assert.Equal(t, "Last pause: 2 minutes ago", lines.LastPause)

	empty := Render(pauser.Status{}, now)
	assert.Equal(t, "Timer: --:--", empty.Timer)
	assert.Equal(t, "Player: none", empty.Nominee)
	assert.Equal(t, "Last pause: never", empty.LastPause)
}
