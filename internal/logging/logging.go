// Package logging configures the go-log subsystem loggers.
package logging

import (
	"fmt"

	golog "github.com/ipfs/go-log/v2"
	"go.uber.org/zap/zapcore"
)

// Config selects the log output.
type Config struct {
	Debug bool
	JSON  bool
	// Levels overrides the level of individual systems, e.g.
	// {"browser": LevelDebug}.
	Levels map[string]golog.LogLevel
}

// Setup configures output format and levels for every logger.
func Setup(config Config) error {
	if config.JSON {
		golog.SetupLogging(golog.Config{
			Format: golog.JSONOutput,
			Stderr: false,
			Stdout: true,
		})
	}

	level := golog.LevelInfo
	if config.Debug {
		level = golog.LevelDebug
	}
	golog.SetAllLoggers(level)

	if len(config.Levels) == 0 {
		return nil
	}
	if err := SetLogLevels(config.Levels); err != nil {
		return fmt.Errorf("set log levels: %w", err)
	}
	return nil
}

// SetLogLevels sets levels for the given systems. The "*" key applies to
// every registered subsystem.
func SetLogLevels(systems map[string]golog.LogLevel) error {
	for sys, level := range systems {
		l := zapcore.Level(level)
		if sys == "*" {
			for _, s := range golog.GetSubsystems() {
				if err := golog.SetLogLevel(s, l.CapitalString()); err != nil {
					return err
				}
			}
			continue
		}
		if err := golog.SetLogLevel(sys, l.CapitalString()); err != nil {
			return err
		}
	}
	return nil
}
