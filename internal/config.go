package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/robfig/cron/v3"

	"github.com/starford/podlex/internal/extract"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	Fetch    FetchConfig       `yaml:"fetch"`
	Extract  ExtractConfig     `yaml:"extract"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Schedule ScheduleConfig    `yaml:"schedule"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig locates the episode list and the article store.
type DataConfig struct {
	Path     string `yaml:"path"`
	URLsFile string `yaml:"urls_file"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.URLsFile, validation.Required),
	)
}

// ArticlesDir is where article records are stored.
func (c *DataConfig) ArticlesDir() string {
	return filepath.Join(c.Path, "articles")
}

// URLsPath resolves the episode list relative to the data directory.
func (c *DataConfig) URLsPath() string {
	if filepath.IsAbs(c.URLsFile) {
		return c.URLsFile
	}
	return filepath.Join(c.Path, c.URLsFile)
}

// ReportPath is where the first-occurrence report is written.
func (c *DataConfig) ReportPath() string {
	return filepath.Join(c.Path, "first_occurrences.json")
}

// FetchConfig controls the episode page loader.
//
// The login cookie value is read from CookieFile when set, otherwise from
// Cookie (which may come from the environment through ${VAR} expansion).
type FetchConfig struct {
	UserAgent  string        `yaml:"user_agent"`
	CookieName string        `yaml:"cookie_name"`
	Cookie     string        `yaml:"cookie"`
	CookieFile string        `yaml:"cookie_file"`
	Timeout    time.Duration `yaml:"timeout"`
	Delay      time.Duration `yaml:"delay"`
}

// Validate validates the fetch configuration.
func (c *FetchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UserAgent, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Delay, validation.Min(time.Duration(0))),
	)
}

// ExtractConfig holds the transcript detection settings.
type ExtractConfig struct {
	TranscriptMarker string `yaml:"transcript_marker"`
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ScheduleConfig enables periodic syncs while serving.
// An empty SyncCron disables scheduling.
type ScheduleConfig struct {
	SyncCron string `yaml:"sync_cron"`
	Timezone string `yaml:"timezone"`
}

// Validate validates the schedule configuration.
func (c *ScheduleConfig) Validate() error {
	if c.SyncCron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.SyncCron); err != nil {
		return fmt.Errorf("sync_cron %q: %w", c.SyncCron, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path:     "./data",
			URLsFile: "urls.txt",
		},
		Fetch: FetchConfig{
			UserAgent:  "Mozilla/5.0",
			CookieName: "wordpress_logged_in_432eefc90b98f2ff74b213258c58921e",
			CookieFile: "./secrets/userdata.txt",
			Timeout:    30 * time.Second,
			Delay:      time.Second,
		},
		Extract: ExtractConfig{
			TranscriptMarker: extract.DefaultTranscriptMarker,
		},
		SQLite: SQLiteConfig{
			Path: "./data/podlex.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Schedule: ScheduleConfig{
			Timezone: "UTC",
		},
	}
}
