package overlay

import (
	"testing"

	"auctionpauser/internal/core/controller"
	"auctionpauser/internal/core/pauser"

	"github.com/stretchr/testify/assert"
)

func TestAccentColor(t *testing.T) {
	assert.Equal(t, disabledColor, accentColor(pauser.Status{Phase: controller.PhaseDisarmedWaitingResume}))
	assert.Equal(t, pausedColor, accentColor(pauser.Status{Enabled: true, Phase: controller.PhaseDisarmedWaitingResume}))
	assert.Equal(t, enabledColor, accentColor(pauser.Status{Enabled: true}))
}
