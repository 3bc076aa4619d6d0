package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

// DefaultRequestTimeout bounds a summarize call when nothing else is configured
const DefaultRequestTimeout = 120 * time.Second

// Environment variables read by ApplyEnv
const (
	EnvAPIBase = "API_BASE"
	EnvTimeout = "YTSUM_TIMEOUT"
	EnvHistory = "YTSUM_HISTORY"
)

// ErrMissingAPIBase is returned by Validate when no backend is configured
var ErrMissingAPIBase = errors.New("API_BASE is not set (use --api-base, the API_BASE env var, .env or api_base in config.jsonc)")

// Output formats accepted by the summarize command
var validOutputs = map[string]bool{"": true, "text": true, "json": true, "yaml": true, "summary": true}

// Duration is a time.Duration that unmarshals from "90s" style strings or plain seconds
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string like \"90s\" or a number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Settings is the resolved client configuration
type Settings struct {
	APIBase        string   `json:"api_base"`
	RequestTimeout Duration `json:"request_timeout"`
	HistoryEnabled *bool    `json:"history_enabled,omitempty"`
	Output         string   `json:"output"`
}

// Timeout returns the request timeout as a time.Duration
// Timeout is the per-call bound; an unset timeout falls back to DefaultRequestTimeout
func (s *Settings) Timeout() time.Duration {
	if s.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(s.RequestTimeout)
}

// HistoryOn reports whether settled submissions should be recorded
func (s *Settings) HistoryOn() bool {
	return s.HistoryEnabled == nil || *s.HistoryEnabled
}

// DefaultSettings returns settings with every default filled in
func DefaultSettings() *Settings {
	enabled := true
	return &Settings{
		RequestTimeout: Duration(DefaultRequestTimeout),
		HistoryEnabled: &enabled,
	}
}

// LoadSettings reads a JSONC settings file. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if settings.RequestTimeout == 0 {
		settings.RequestTimeout = Duration(DefaultRequestTimeout)
	}

	return settings, nil
}

// ReadDotEnv loads key/values from a .env file without touching the process environment.
// A missing file returns an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// ApplyEnv overlays environment variables, then .env values, onto the settings.
// Real environment variables win over the .env file.
func (s *Settings) ApplyEnv(dotenv map[string]string) error {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvAPIBase); ok {
		s.APIBase = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		if d == 0 {
			d = DefaultRequestTimeout
		}
		s.RequestTimeout = Duration(d)
	}
	if v, ok := lookup(EnvHistory); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistory, err)
		}
		s.HistoryEnabled = &enabled
	}

	return nil
}

// Validate checks that the settings are usable for a summarize call
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.APIBase) == "" {
		return ErrMissingAPIBase
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if !validOutputs[s.Output] {
		return fmt.Errorf("invalid output %q (use text, json, yaml or summary)", s.Output)
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
