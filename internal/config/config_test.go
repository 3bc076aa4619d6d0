package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitializeAt_CreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ytsum")

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}

	if DatabasePath != filepath.Join(dir, "ytsum.db") {
		t.Errorf("DatabasePath = %q", DatabasePath)
	}
	if LogFile != filepath.Join(dir, "ytsum.log") {
		t.Errorf("LogFile = %q", LogFile)
	}

	settings, err := LoadSettings(SettingsFile)
	if err != nil {
		t.Fatalf("default settings file does not parse: %v", err)
	}
	if settings.Timeout() != DefaultRequestTimeout {
		t.Errorf("Timeout() = %v, want %v", settings.Timeout(), DefaultRequestTimeout)
	}
	if !settings.HistoryOn() {
		t.Error("history should default to on")
	}
}

func TestInitializeAt_KeepsExistingSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	custom := []byte(`{"api_base": "http://localhost:8000"}`)
	if err := os.WriteFile(path, custom, FilePermissions); err != nil {
		t.Fatal(err)
	}

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != string(custom) {
		t.Errorf("settings overwritten: %s", got)
	}
}

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantBase    string
		wantTimeout time.Duration
		wantHistory bool
		wantErr     bool
	}{
		{
			name: "jsonc with comments and trailing comma",
			content: `{
				// local backend
				"api_base": "http://localhost:8000",
				"request_timeout": "3m",
				"history_enabled": false,
			}`,
			wantBase:    "http://localhost:8000",
			wantTimeout: 3 * time.Minute,
			wantHistory: false,
		},
		{
			name:        "numeric timeout in seconds",
			content:     `{"request_timeout": 45}`,
			wantTimeout: 45 * time.Second,
			wantHistory: true,
		},
		{
			name:        "empty object keeps defaults",
			content:     `{}`,
			wantTimeout: DefaultRequestTimeout,
			wantHistory: true,
		},
		{
			name:    "bad duration",
			content: `{"request_timeout": "soon"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: `api_base = "x"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.jsonc")
			if err := os.WriteFile(path, []byte(tt.content), FilePermissions); err != nil {
				t.Fatal(err)
			}

			got, err := LoadSettings(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.APIBase != tt.wantBase {
				t.Errorf("APIBase = %q, want %q", got.APIBase, tt.wantBase)
			}
			if got.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", got.Timeout(), tt.wantTimeout)
			}
			if got.HistoryOn() != tt.wantHistory {
				t.Errorf("HistoryOn() = %v, want %v", got.HistoryOn(), tt.wantHistory)
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	got, err := LoadSettings(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got.Timeout() != DefaultRequestTimeout {
		t.Errorf("Timeout() = %v", got.Timeout())
	}
}

func TestApplyEnv_Precedence(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	dotenv := "API_BASE=http://from-dotenv:8000\nYTSUM_TIMEOUT=30s\n"
	if err := os.WriteFile(envPath, []byte(dotenv), FilePermissions); err != nil {
		t.Fatal(err)
	}
	values, err := ReadDotEnv(envPath)
	if err != nil {
		t.Fatalf("ReadDotEnv() error = %v", err)
	}

	t.Run("dotenv over file", func(t *testing.T) {
		t.Setenv(EnvAPIBase, "")
		t.Setenv(EnvTimeout, "")
		s := &Settings{APIBase: "http://from-file:8000"}

		if err := s.ApplyEnv(values); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if s.APIBase != "http://from-dotenv:8000" {
			t.Errorf("APIBase = %q", s.APIBase)
		}
		if s.Timeout() != 30*time.Second {
			t.Errorf("Timeout() = %v", s.Timeout())
		}
	})

	t.Run("env over dotenv", func(t *testing.T) {
		t.Setenv(EnvAPIBase, "http://from-env:8000")
		t.Setenv(EnvTimeout, "90")
		s := &Settings{}

		if err := s.ApplyEnv(values); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if s.APIBase != "http://from-env:8000" {
			t.Errorf("APIBase = %q", s.APIBase)
		}
		if s.Timeout() != 90*time.Second {
			t.Errorf("Timeout() = %v", s.Timeout())
		}
	})

	t.Run("history toggle", func(t *testing.T) {
		t.Setenv(EnvHistory, "false")
		s := DefaultSettings()
		if err := s.ApplyEnv(nil); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if s.HistoryOn() {
			t.Error("YTSUM_HISTORY=false should disable history")
		}
	})

	t.Run("zero timeout means default", func(t *testing.T) {
		for _, v := range []string{"0", "0s"} {
			t.Setenv(EnvTimeout, v)
			s := &Settings{RequestTimeout: Duration(30 * time.Second)}
			if err := s.ApplyEnv(nil); err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			if s.Timeout() != DefaultRequestTimeout {
				t.Errorf("%s=%s: Timeout() = %v, want %v", EnvTimeout, v, s.Timeout(), DefaultRequestTimeout)
			}
		}
	})

	t.Run("unset timeout means default", func(t *testing.T) {
		if got := (&Settings{}).Timeout(); got != DefaultRequestTimeout {
			t.Errorf("Timeout() = %v, want %v", got, DefaultRequestTimeout)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv(EnvTimeout, "later")
		if err := (&Settings{}).ApplyEnv(nil); err == nil {
			t.Error("expected error for invalid timeout")
		}
	})
}

func TestReadDotEnv_Missing(t *testing.T) {
	values, err := ReadDotEnv(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("ReadDotEnv() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
		anyErr   bool
	}{
		{"ok", Settings{APIBase: "http://localhost:8000"}, nil, false},
		{"missing api base", Settings{APIBase: "  "}, ErrMissingAPIBase, true},
		{"negative timeout", Settings{APIBase: "http://x", RequestTimeout: Duration(-time.Second)}, nil, true},
		{"bad output", Settings{APIBase: "http://x", Output: "xml"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.anyErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.anyErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
