package model

import "time"

// CooldownConfig suppresses auto-pause for a while after a nomination.
type CooldownConfig struct {
	Enabled  bool
	Duration time.Duration
}

// Selectors locate the host page elements the pauser reads and clicks.
type Selectors struct {
	Timer         string
	AuctionBar    string
	NomineeLink   string
	NomineeName   string
	NomineeExtras []string
	NavbarCenter  string
	MarkerScope   string
	PauseTargets  []string
	ReadyBody     string
	ReadyProbe    string
}

// PauserConfig contains runtime settings for the auto-pause engine.
type PauserConfig struct {
	PollInterval  time.Duration
	Threshold     time.Duration
	RetryDelay    time.Duration
	ResumeTimeout time.Duration
	Cooldown      CooldownConfig

	MaxInitRetries int
	InitRetryDelay time.Duration

	Selectors Selectors
}

// DefaultSelectors returns the selectors for the Fantrax live draft room.
func DefaultSelectors() Selectors {
	return Selectors{
		Timer:       "draft-timer",
		AuctionBar:  "league-draft-auction-bar",
		NomineeLink: "div.scorer__info__name > a",
		NomineeName: "div.scorer__info__name",
		NomineeExtras: []string{
			`[data-test="nominated-player-name"]`,
			"div.scorer__info h1, div.scorer__info h2, div.scorer__info h3",
			".scorer__info a",
		},
		NavbarCenter: ".draft__navbar__center",
		MarkerScope:  "body",
		PauseTargets: []string{
			`.draft__navbar__status h6 span[data-click-monitored="true"]`,
			".draft__navbar__status h6 mat-icon",
			".draft__navbar__status h6",
			".draft__navbar__status",
		},
		ReadyBody:  "fantrax-app",
		ReadyProbe: ".draft-timer, draft-timer, .draft__navbar__center, .scorer__info__name",
	}
}

// DefaultPauserConfig returns the stock engine configuration.
func DefaultPauserConfig() PauserConfig {
	return PauserConfig{
		PollInterval:  time.Second,
		Threshold:     15 * time.Second,
		RetryDelay:    5 * time.Second,
		ResumeTimeout: 2 * time.Minute,
		Cooldown: CooldownConfig{
			Enabled:  false,
			Duration: 10 * time.Second,
		},
		MaxInitRetries: 20,
		InitRetryDelay: 500 * time.Millisecond,
		Selectors:      DefaultSelectors(),
	}
}

// Normalize fills zero values with defaults.
func (config PauserConfig) Normalize() PauserConfig {
	defaults := DefaultPauserConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.Threshold <= 0 {
		config.Threshold = defaults.Threshold
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.ResumeTimeout <= 0 {
		config.ResumeTimeout = defaults.ResumeTimeout
	}
	if config.Cooldown.Duration <= 0 {
		config.Cooldown.Duration = defaults.Cooldown.Duration
	}
	if config.MaxInitRetries < 0 {
		config.MaxInitRetries = 0
	}
	if config.InitRetryDelay <= 0 {
		config.InitRetryDelay = defaults.InitRetryDelay
	}
	config.Selectors = config.Selectors.withDefaults(defaults.Selectors)
	return config
}

func (selectors Selectors) withDefaults(defaults Selectors) Selectors {
	if selectors.Timer == "" {
		selectors.Timer = defaults.Timer
	}
	if selectors.AuctionBar == "" {
		selectors.AuctionBar = defaults.AuctionBar
	}
	if selectors.NomineeLink == "" {
		selectors.NomineeLink = defaults.NomineeLink
	}
	if selectors.NomineeName == "" {
		selectors.NomineeName = defaults.NomineeName
	}
	if len(selectors.NomineeExtras) == 0 {
		selectors.NomineeExtras = defaults.NomineeExtras
	}
	if selectors.NavbarCenter == "" {
		selectors.NavbarCenter = defaults.NavbarCenter
	}
	if selectors.MarkerScope == "" {
		selectors.MarkerScope = defaults.MarkerScope
	}
	if len(selectors.PauseTargets) == 0 {
		selectors.PauseTargets = defaults.PauseTargets
	}
	if selectors.ReadyBody == "" {
		selectors.ReadyBody = defaults.ReadyBody
	}
	if selectors.ReadyProbe == "" {
		selectors.ReadyProbe = defaults.ReadyProbe
	}
	return selectors
}
