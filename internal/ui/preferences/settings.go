package preferences

import (
	"time"

	"auctionpauser/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	Threshold     time.Duration
	PollInterval  time.Duration
	RetryDelay    time.Duration
	ResumeTimeout time.Duration

	CooldownEnabled bool
	Cooldown        time.Duration

	StartEnabled  bool
	Notifications bool

	PauseTargets []string
}

// DefaultSettings returns default settings for the auto-pauser.
func DefaultSettings() Settings {
	defaults := model.DefaultPauserConfig()
	return Settings{
		Threshold:       defaults.Threshold,
		PollInterval:    defaults.PollInterval,
		RetryDelay:      defaults.RetryDelay,
		ResumeTimeout:   defaults.ResumeTimeout,
		CooldownEnabled: defaults.Cooldown.Enabled,
		Cooldown:        defaults.Cooldown.Duration,
		StartEnabled:    true,
		Notifications:   true,
	}
}

// PauserConfig converts settings to the engine configuration.
func (settings Settings) PauserConfig() model.PauserConfig {
	config := model.DefaultPauserConfig()
	config.Threshold = settings.Threshold
	config.PollInterval = settings.PollInterval
	config.RetryDelay = settings.RetryDelay
	config.ResumeTimeout = settings.ResumeTimeout
	config.Cooldown = model.CooldownConfig{
		Enabled:  settings.CooldownEnabled,
		Duration: settings.Cooldown,
	}
	if len(settings.PauseTargets) > 0 {
		config.Selectors.PauseTargets = append([]string(nil), settings.PauseTargets...)
	}
	return config.Normalize()
}
