package preferences

import (
	"testing"
	"time"

	"auctionpauser/internal/core/model"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	defaults := DefaultSettings()

	tests := []struct {
		name  string
		form  Form
		check func(t *testing.T, got Settings)
	}{
		{
			name: "valid values",
			form: Form{Threshold: "10", PollInterval: "500", RetryDelay: "3", ResumeTimeout: "60", Cooldown: "8", CooldownEnabled: true, StartEnabled: true},
			check: func(t *testing.T, got Settings) {
				assert.Equal(t, 10*time.Second, got.Threshold)
				assert.Equal(t, 500*time.Millisecond, got.PollInterval)
				assert.Equal(t, 3*time.Second, got.RetryDelay)
				assert.Equal(t, time.Minute, got.ResumeTimeout)
				assert.Equal(t, 8*time.Second, got.Cooldown)
				assert.True(t, got.CooldownEnabled)
				assert.False(t, got.Notifications)
			},
		},
		{
			name: "invalid values keep previous",
			form: Form{Threshold: "60", PollInterval: "10", RetryDelay: "-2", ResumeTimeout: "abc", Cooldown: ""},
			check: func(t *testing.T, got Settings) {
				assert.Equal(t, defaults.Threshold, got.Threshold)
				assert.Equal(t, defaults.PollInterval, got.PollInterval)
				assert.Equal(t, defaults.RetryDelay, got.RetryDelay)
				assert.Equal(t, defaults.ResumeTimeout, got.ResumeTimeout)
				assert.Equal(t, defaults.Cooldown, got.Cooldown)
			},
		},
		{
			name: "selectors one per line",
			form: Form{PauseTargets: " .a \n\n.b\n"},
			check: func(t *testing.T, got Settings) {
				assert.Equal(t, []string{".a", ".b"}, got.PauseTargets)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Apply(defaults, tt.form))
		})
	}
}

func TestPauserConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.Threshold = 9 * time.Second
	settings.CooldownEnabled = true

	config := settings.PauserConfig()
	assert.Equal(t, 9*time.Second, config.Threshold)
	assert.True(t, config.Cooldown.Enabled)
	assert.Equal(t, model.DefaultSelectors().PauseTargets, config.Selectors.PauseTargets)

	settings.PauseTargets = []string{".custom"}
	assert.Equal(t, []string{".custom"}, settings.PauserConfig().Selectors.PauseTargets)
}
