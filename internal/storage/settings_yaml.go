// Package storage persists preferences as YAML under the user config dir.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auctionpauser/internal/platform"
	"auctionpauser/internal/ui/preferences"

	golog "github.com/ipfs/go-log/v2"
	"gopkg.in/yaml.v3"
)

var log = golog.Logger("storage")

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	ThresholdSeconds     int      `yaml:"threshold_seconds"`
	PollIntervalMillis   int      `yaml:"poll_interval_ms"`
	RetryDelaySeconds    int      `yaml:"retry_delay_seconds"`
	ResumeTimeoutSeconds int      `yaml:"resume_timeout_seconds"`
	CooldownEnabled      bool     `yaml:"cooldown_enabled"`
	CooldownSeconds      int      `yaml:"cooldown_seconds"`
	StartEnabled         *bool    `yaml:"start_enabled,omitempty"`
	Notifications        *bool    `yaml:"notifications,omitempty"`
	PauseTargets         []string `yaml:"pause_targets,omitempty"`
}

// Store reads and writes one settings file.
type Store struct {
	path string
}

// NewStore returns the store for settings.yaml in the config dir.
func NewStore(dirs platform.Dirs) (*Store, error) {
	configDir, err := dirs.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return &Store{path: filepath.Join(configDir, settingsFileName)}, nil
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func (store *Store) Load() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save writes user preferences to YAML.
func (store *Store) Save(settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	startEnabled := settings.StartEnabled
	notifications := settings.Notifications
	fileData := yamlSettings{
		ThresholdSeconds:     int(settings.Threshold / time.Second),
		PollIntervalMillis:   int(settings.PollInterval / time.Millisecond),
		RetryDelaySeconds:    int(settings.RetryDelay / time.Second),
		ResumeTimeoutSeconds: int(settings.ResumeTimeout / time.Second),
		CooldownEnabled:      settings.CooldownEnabled,
		CooldownSeconds:      int(settings.Cooldown / time.Second),
		StartEnabled:         &startEnabled,
		Notifications:        &notifications,
		PauseTargets:         settings.PauseTargets,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	// Write then rename so the watcher never reads a half-written file.
	tmpPath := store.path + ".tmp"
	if err := os.WriteFile(tmpPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	log.Debugf("settings saved to %s", store.path)
	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	// Thresholds at or past a minute would pause at every fresh nomination.
	if fileData.ThresholdSeconds > 0 && fileData.ThresholdSeconds < 60 {
		settings.Threshold = time.Duration(fileData.ThresholdSeconds) * time.Second
	}
	if fileData.PollIntervalMillis >= 100 {
		settings.PollInterval = time.Duration(fileData.PollIntervalMillis) * time.Millisecond
	}
	if fileData.RetryDelaySeconds > 0 {
		settings.RetryDelay = time.Duration(fileData.RetryDelaySeconds) * time.Second
	}
	if fileData.ResumeTimeoutSeconds > 0 {
		settings.ResumeTimeout = time.Duration(fileData.ResumeTimeoutSeconds) * time.Second
	}
	if fileData.CooldownSeconds > 0 {
		settings.Cooldown = time.Duration(fileData.CooldownSeconds) * time.Second
	}
	if fileData.StartEnabled != nil {
		settings.StartEnabled = *fileData.StartEnabled
	}
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}

	settings.CooldownEnabled = fileData.CooldownEnabled

	var targets []string
	for _, target := range fileData.PauseTargets {
		if target = strings.TrimSpace(target); target != "" {
			targets = append(targets, target)
		}
	}
	settings.PauseTargets = targets
}
