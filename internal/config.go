package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/checkerhq/checker/internal/auth"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
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

// AuthConfig holds API key configuration.
//
// KeyEnv selects which key environment newly minted keys belong to. Keys of
// either environment stay valid for authentication; the marker only changes
// the prefix of keys issued by this instance.
type AuthConfig struct {
	KeyEnv           string `yaml:"key_env"`
	RegistrationOpen bool   `yaml:"registration_open"`
	MCPAPIKey        string `yaml:"mcp_api_key"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.KeyEnv == "" {
		c.KeyEnv = auth.EnvLive
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.KeyEnv, validation.Required, validation.In(auth.EnvLive, auth.EnvTest)),
	)
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
		SQLite: SQLiteConfig{
			Path: "./checker.db",
		},
		Auth: AuthConfig{
			KeyEnv:           auth.EnvLive,
			RegistrationOpen: true,
		},
	}
}
