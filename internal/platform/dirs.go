package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dirs resolves the per-user directories the agent writes to.
type Dirs struct {
	appName string
	// root overrides the OS config dir, for tests.
	root string
}

// NewDirs returns the directories for appName under the OS config dir.
func NewDirs(appName string) Dirs {
	return Dirs{appName: appName}
}

// NewDirsAt roots the directories at dir instead of the OS config dir.
func NewDirsAt(dir, appName string) Dirs {
	return Dirs{appName: appName, root: dir}
}

// ConfigDir returns the application's configuration directory.
func (dirs Dirs) ConfigDir() (string, error) {
	base, err := dirs.base()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, dirs.name()), nil
}

// ProfileDir returns the browser profile directory used when launching
// Chrome, so the Fantrax login survives restarts.
func (dirs Dirs) ProfileDir() (string, error) {
	configDir, err := dirs.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "chrome-profile"), nil
}

func (dirs Dirs) base() (string, error) {
	if dirs.root != "" {
		return dirs.root, nil
	}
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return fallbackConfigDir(homeDir), nil
}

func (dirs Dirs) name() string {
	name := strings.ToLower(strings.TrimSpace(dirs.appName))
	if name == "" {
		name = "auctionpauser"
	}
	return strings.ReplaceAll(name, " ", "-")
}
