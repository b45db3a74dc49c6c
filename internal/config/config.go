// Package config loads the scanner's settings file and merges it with
// command-line overrides. The file is optional; flags alone are enough to
// run, and a flag always beats the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/gymwatch/internal/fsutil"
)

// DefaultConfigPath is where the scanner looks for its settings when no
// -config flag is given.
const DefaultConfigPath = "config.json"

const (
	DefaultDelaySeconds = 2
	DefaultDataDir      = "data"
	DefaultWebDir       = "web"
)

// AuthServices lists the accepted -auth values.
var AuthServices = []string{"ptc", "google"}

// ErrInvalidConfig marks a config that fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything the scanner needs for one run. JSON field names
// match the settings file.
type Config struct {
	AuthService  string  `json:"auth_service,omitempty"`
	Username     string  `json:"username,omitempty"`
	Password     string  `json:"password,omitempty"`
	Location     string  `json:"location,omitempty"`
	DelaySeconds float64 `json:"delay_seconds,omitempty"`
	DataDir      string  `json:"data_dir,omitempty"`
	WebDir       string  `json:"web_dir,omitempty"`
	GeocoderURL  string  `json:"geocoder_url,omitempty"`
	ServiceURL   string  `json:"service_url,omitempty"`
}

// Default returns the baseline config before the file and flags are applied.
func Default() Config {
	return Config{
		DelaySeconds: DefaultDelaySeconds,
		DataDir:      DefaultDataDir,
		WebDir:       DefaultWebDir,
	}
}

// Load reads a settings file and merges it over the defaults. A missing file
// is not an error when the caller did not name one explicitly; required is
// true for an explicit -config path.
func Load(fs fsutil.FileSystem, path string, required bool) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fs.ReadFile(cleanPath)
	if err != nil {
		if !required && !fs.Exists(cleanPath) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("decoding config file %s: %w", cleanPath, err)
	}

	cfg.Merge(fileCfg)
	return cfg, nil
}

// Merge applies every non-zero field of override on top of c. Zero values in
// override leave the existing setting alone, so partial files and unset flags
// are safe.
func (c *Config) Merge(override Config) {
	if override.AuthService != "" {
		c.AuthService = override.AuthService
	}
	if override.Username != "" {
		c.Username = override.Username
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.Location != "" {
		c.Location = override.Location
	}
	if override.DelaySeconds != 0 {
		c.DelaySeconds = override.DelaySeconds
	}
	if override.DataDir != "" {
		c.DataDir = override.DataDir
	}
	if override.WebDir != "" {
		c.WebDir = override.WebDir
	}
	if override.GeocoderURL != "" {
		c.GeocoderURL = override.GeocoderURL
	}
	if override.ServiceURL != "" {
		c.ServiceURL = override.ServiceURL
	}
}

// Validate checks the fields a live scan needs. Offline replay calls
// ValidateOffline instead since it needs no credentials or location.
func (c *Config) Validate() error {
	if c.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidConfig)
	}
	if !validAuthService(c.AuthService) {
		return fmt.Errorf("%w: auth service must be one of %v, got %q", ErrInvalidConfig, AuthServices, c.AuthService)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if c.ServiceURL == "" {
		return fmt.Errorf("%w: service URL is required for a live scan", ErrInvalidConfig)
	}
	if c.DelaySeconds < 0 {
		return fmt.Errorf("%w: delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateOffline checks only the fields the replay path uses.
func (c *Config) ValidateOffline() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data directory is required", ErrInvalidConfig)
	}
	if c.WebDir == "" {
		return fmt.Errorf("%w: web directory is required", ErrInvalidConfig)
	}
	return nil
}

// Delay returns the per-request pause as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

func validAuthService(s string) bool {
	for _, svc := range AuthServices {
		if s == svc {
			return true
		}
	}
	return false
}
