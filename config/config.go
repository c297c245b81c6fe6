// Package config implements the host-level settings file: auto-lock
// policy and the list of recently opened workspaces (§4.9, §4.2). It
// is deliberately separate from any one workspace's own metadata,
// since these are preferences about the local install, not about vault
// contents.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// envConfigPathKey overrides the default config file location.
const envConfigPathKey = "WITFLO_CONFIG_PATH"

const defaultConfigName = ".witflo.toml"

// Error wraps a config validation failure with the offending key.
type Error struct {
	Opt string
	Err error
}

func (e *Error) Error() string {
	return "config: " + strings.Join([]string{e.Opt, e.Err.Error()}, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// FileConfig is the full structure of the host settings file.
type FileConfig struct {
	AutoLock *AutoLockConfig `toml:"auto_lock" comment:"Auto-lock policy applied to every opened workspace" json:"auto_lock"`
	Recent   []RecentEntry   `toml:"recent" comment:"Recently opened workspaces, most recent first" json:"recent,omitempty"`

	path string
}

// AutoLockConfig mirrors session.Config in TOML form (§4.9).
type AutoLockConfig struct {
	Enabled          bool `toml:"enabled" comment:"Whether idle auto-lock is active" json:"enabled"`
	DurationSeconds  int  `toml:"duration_seconds" comment:"Idle timeout in seconds: one of 300, 900, 1800, 3600 (default: 900)" json:"duration_seconds,omitempty"`
	LockOnBackground bool `toml:"lock_on_background" comment:"Lock immediately when the app is backgrounded" json:"lock_on_background,omitempty"`
}

// RecentEntry is one recently opened workspace.
type RecentEntry struct {
	Root        string `toml:"root" json:"root"`
	DisplayName string `toml:"display_name,omitempty" json:"display_name,omitempty"`
}

func newFileConfig() *FileConfig {
	return &FileConfig{AutoLock: &AutoLockConfig{Enabled: true, DurationSeconds: 900}}
}

// Load reads the config from path, or the default location if path is
// empty. A missing file at the default location is not an error; it
// yields the built-in defaults.
func Load(path string) (*FileConfig, error) {
	defaultPath, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}

	configPath := cmp.Or(path, defaultPath)

	c, err := parseFileConfig(configPath)
	if err != nil {
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) {
			c = newFileConfig()
		} else {
			return nil, err
		}
	} else {
		c.path = configPath
	}

	return c, c.validate()
}

// Save writes c back to the path it was loaded from, or the default
// location if it was never loaded from disk.
func (c *FileConfig) Save() error {
	path := c.path
	if path == "" {
		var err error

		path, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	raw, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}

	c.path = path

	return nil
}

// PushRecent records root as the most recently opened workspace,
// deduplicating and capping the list at 10 entries.
func (c *FileConfig) PushRecent(root, displayName string) {
	filtered := c.Recent[:0]

	for _, e := range c.Recent {
		if e.Root != root {
			filtered = append(filtered, e)
		}
	}

	c.Recent = append([]RecentEntry{{Root: root, DisplayName: displayName}}, filtered...)

	const maxRecent = 10
	if len(c.Recent) > maxRecent {
		c.Recent = c.Recent[:maxRecent]
	}
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: user home dir: %w", err)
	}

	path := filepath.Join(home, defaultConfigName)
	if p, ok := os.LookupEnv(envConfigPathKey); ok {
		path = p
	}

	return path, nil
}

func parseFileConfig(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: stat file: %w", err)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	c := newFileConfig()
	if err := toml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	return c, nil
}

func (c *FileConfig) validate() error {
	if c == nil {
		return &Error{Err: errors.New("cannot validate a nil config")}
	}

	if c.AutoLock == nil {
		return nil
	}

	if !c.AutoLock.Enabled {
		return nil
	}

	switch c.AutoLock.DurationSeconds {
	case 0, 300, 900, 1800, 3600:
		return nil
	default:
		return &Error{Opt: "auto_lock.duration_seconds", Err: errors.New("must be one of 300, 900, 1800, 3600")}
	}
}
