// Package config loads the wake-light's JSON configuration. All fields are
// optional pointers so a partial file only overrides what it names; the Get*
// accessors supply the defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration. The schema matches the flags accepted by
// the daemon so a deployment can choose either mechanism.
type Config struct {
	// Hardware
	Device   *string `json:"device,omitempty"`    // serial device path; empty selects the in-memory strip
	BaudRate *int    `json:"baud_rate,omitempty"` // serial baud rate
	LedCount *int    `json:"led_count,omitempty"`

	// Layout and images
	LayoutPath *string `json:"layout_path,omitempty"` // CSV of LED positions
	ImageDir   *string `json:"image_dir,omitempty"`   // weather display photos
	DBPath     *string `json:"db_path,omitempty"`     // sqlite mapping cache and run log

	// Weather
	Location   *string `json:"location,omitempty"`     // e.g. "Berlin,DE"
	APIKeyFile *string `json:"api_key_file,omitempty"` // file holding the OpenWeatherMap key

	// Sequence timing
	Runtime  *string  `json:"runtime,omitempty"`   // duration string like "15m"
	HoldTime *string  `json:"hold_time,omitempty"` // how long the display stays lit
	Gamma    *float64 `json:"gamma,omitempty"`     // 0 disables correction

	// HTTP
	ListenAddr   *string `json:"listen_addr,omitempty"`
	SchedulePath *string `json:"schedule_path,omitempty"` // persisted alarm time
}

func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// Load reads and validates a Config from a JSON file. Fields omitted from
// the JSON keep their defaults via the Get* accessors.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration values that can be wrong in ways a
// default cannot paper over.
func (c *Config) Validate() error {
	if c.LedCount != nil && *c.LedCount < 1 {
		return fmt.Errorf("led_count must be positive, got %d", *c.LedCount)
	}
	if c.BaudRate != nil && *c.BaudRate < 1 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}
	if c.Gamma != nil && *c.Gamma < 0 {
		return fmt.Errorf("gamma must be non-negative, got %f", *c.Gamma)
	}
	if c.Runtime != nil && *c.Runtime != "" {
		if _, err := time.ParseDuration(*c.Runtime); err != nil {
			return fmt.Errorf("invalid runtime '%s': %w", *c.Runtime, err)
		}
	}
	if c.HoldTime != nil && *c.HoldTime != "" {
		if _, err := time.ParseDuration(*c.HoldTime); err != nil {
			return fmt.Errorf("invalid hold_time '%s': %w", *c.HoldTime, err)
		}
	}
	return nil
}

// GetDevice returns the serial device path; empty means run against the
// in-memory strip.
func (c *Config) GetDevice() string {
	if c.Device == nil {
		return ""
	}
	return *c.Device
}

// GetBaudRate returns the serial baud rate or the default.
func (c *Config) GetBaudRate() int {
	if c.BaudRate == nil {
		return 115200
	}
	return *c.BaudRate
}

// GetLedCount returns the strip length or the default.
func (c *Config) GetLedCount() int {
	if c.LedCount == nil {
		return 150
	}
	return *c.LedCount
}

// GetLayoutPath returns the LED layout CSV path or the default.
func (c *Config) GetLayoutPath() string {
	if c.LayoutPath == nil {
		return "layout.csv"
	}
	return *c.LayoutPath
}

// GetImageDir returns the weather image directory or the default.
func (c *Config) GetImageDir() string {
	if c.ImageDir == nil {
		return "images"
	}
	return *c.ImageDir
}

// GetDBPath returns the sqlite database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return "wakelight.db"
	}
	return *c.DBPath
}

// GetLocation returns the weather lookup location or the default.
func (c *Config) GetLocation() string {
	if c.Location == nil {
		return "Berlin,DE"
	}
	return *c.Location
}

// GetAPIKey reads the OpenWeatherMap key from the configured key file.
// Returns empty (weather disabled) when no file is configured or it cannot
// be read.
func (c *Config) GetAPIKey() string {
	if c.APIKeyFile == nil || *c.APIKeyFile == "" {
		return ""
	}
	data, err := os.ReadFile(*c.APIKeyFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// GetRuntime returns the wake sequence budget or the default.
func (c *Config) GetRuntime() time.Duration {
	if c.Runtime == nil || *c.Runtime == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(*c.Runtime)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetHoldTime returns how long the display stays fully lit before winding
// down, or the default.
func (c *Config) GetHoldTime() time.Duration {
	if c.HoldTime == nil || *c.HoldTime == "" {
		return 20 * time.Minute
	}
	d, err := time.ParseDuration(*c.HoldTime)
	if err != nil {
		return 20 * time.Minute
	}
	return d
}

// GetGamma returns the display gamma; 0 disables correction.
func (c *Config) GetGamma() float64 {
	if c.Gamma == nil {
		return 0
	}
	return *c.Gamma
}

// GetListenAddr returns the HTTP listen address or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetSchedulePath returns the persisted alarm-time file or the default.
func (c *Config) GetSchedulePath() string {
	if c.SchedulePath == nil {
		return "times.txt"
	}
	return *c.SchedulePath
}
