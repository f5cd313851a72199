// Package config handles the configuration directory, the settings file and
// backend credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"

	"taskflow/internal/model"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// SettingsFile is the settings filename inside the config directory.
	SettingsFile = "config.toml"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"

	// DefaultDBName is the SQLite database filename.
	DefaultDBName = "taskflow.db"
)

// Backend names.
const (
	BackendApper       = "apper"
	BackendGoogleTasks = "googletasks"
	BackendSQLite      = "sqlite"
)

// ErrMissingCredentials is returned when the hosted backend credentials are
// not set in the environment.
var ErrMissingCredentials = errors.New("missing backend credentials")

// ErrInvalidSettings is returned for settings that parse but cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are read from config.toml.
type Settings struct {
	Backend         string   `toml:"backend"`
	BaseURL         string   `toml:"base_url"`
	TaskTable       string   `toml:"task_table"`
	CategoryTable   string   `toml:"category_table"`
	DefaultCategory string   `toml:"default_category"`
	SQLitePath      string   `toml:"sqlite_path"`
	Timeout         Duration `toml:"timeout"`
	LogLevel        string   `toml:"log_level"`
}

// Credentials identify the project on the hosted record store.
type Credentials struct {
	ProjectID string `env:"TASKFLOW_PROJECT_ID" env-required:"true"`
	PublicKey string `env:"TASKFLOW_PUBLIC_KEY" env-required:"true"`
}

// Duration is a time.Duration encoded as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultSettings returns the settings written on first use.
func DefaultSettings() Settings {
	return Settings{
		Backend:         BackendApper,
		BaseURL:         "https://api.apper.io/v1",
		TaskTable:       "task",
		CategoryTable:   "category",
		DefaultCategory: model.DefaultCategoryID,
		Timeout:         Duration{10 * time.Second},
		LogLevel:        "disabled",
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from the settings file.
	Settings Settings
}

// New creates a new Config with the default or specified config directory
// and default settings. Call LoadSettings to read the settings file.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// DBPath returns the SQLite database path. Relative paths are resolved
// against the config directory.
func (c *Config) DBPath() string {
	p := c.Settings.SQLitePath
	if p == "" {
		p = DefaultDBName
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// LoadSettings reads the settings file, writing the defaults if it does not
// exist. Missing keys keep their default values.
func (c *Config) LoadSettings() error {
	settings := DefaultSettings()
	path := c.SettingsPath()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := c.EnsureDir(); err != nil {
			return err
		}
		if err := writeSettings(path, settings); err != nil {
			return err
		}
		c.Settings = settings
		return nil
	}
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	if settings.DefaultCategory == "" || settings.DefaultCategory == model.AllCategoryID {
		settings.DefaultCategory = model.DefaultCategoryID
	}
	if settings.Timeout.Duration <= 0 {
		settings.Timeout = DefaultSettings().Timeout
	}
	switch settings.Backend {
	case BackendApper, BackendGoogleTasks, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidSettings, settings.Backend)
	}
	c.Settings = settings
	return nil
}

func writeSettings(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCredentials reads the hosted backend credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := cleanenv.ReadEnv(&creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}
	// env-required accepts a variable that is set but empty
	creds.ProjectID = strings.TrimSpace(creds.ProjectID)
	creds.PublicKey = strings.TrimSpace(creds.PublicKey)
	if creds.ProjectID == "" {
		return Credentials{}, fmt.Errorf("%w: TASKFLOW_PROJECT_ID is empty", ErrMissingCredentials)
	}
	if creds.PublicKey == "" {
		return Credentials{}, fmt.Errorf("%w: TASKFLOW_PUBLIC_KEY is empty", ErrMissingCredentials)
	}
	return creds, nil
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
