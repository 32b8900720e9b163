package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakelight.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsFromEmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.GetLedCount(); got != 150 {
		t.Errorf("GetLedCount() = %d, want 150", got)
	}
	if got := cfg.GetBaudRate(); got != 115200 {
		t.Errorf("GetBaudRate() = %d, want 115200", got)
	}
	if got := cfg.GetRuntime(); got != 15*time.Minute {
		t.Errorf("GetRuntime() = %s, want 15m", got)
	}
	if got := cfg.GetHoldTime(); got != 20*time.Minute {
		t.Errorf("GetHoldTime() = %s, want 20m", got)
	}
	if got := cfg.GetDevice(); got != "" {
		t.Errorf("GetDevice() = %q, want empty (mock strip)", got)
	}
	if got := cfg.GetListenAddr(); got != ":8080" {
		t.Errorf("GetListenAddr() = %q, want :8080", got)
	}
}

func TestPartialConfigOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"led_count": 300, "runtime": "20m"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.GetLedCount(); got != 300 {
		t.Errorf("GetLedCount() = %d, want 300", got)
	}
	if got := cfg.GetRuntime(); got != 20*time.Minute {
		t.Errorf("GetRuntime() = %s, want 20m", got)
	}
	// Untouched field keeps its default.
	if got := cfg.GetImageDir(); got != "images" {
		t.Errorf("GetImageDir() = %q, want images", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero led count", Config{LedCount: ptrInt(0)}},
		{"negative baud", Config{BaudRate: ptrInt(-9600)}},
		{"negative gamma", Config{Gamma: ptrFloat64(-1)}},
		{"unparseable runtime", Config{Runtime: ptrString("15 minutes")}},
		{"unparseable hold", Config{HoldTime: ptrString("soon")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("wakelight.yaml"); err == nil {
		t.Error("Load accepted a non-JSON path")
	}
}

func TestAPIKeyFromFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "owm.key")
	if err := os.WriteFile(keyPath, []byte("secret-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := Config{APIKeyFile: ptrString(keyPath)}
	if got := cfg.GetAPIKey(); got != "secret-key" {
		t.Errorf("GetAPIKey() = %q, want trimmed key", got)
	}

	missing := Config{APIKeyFile: ptrString(filepath.Join(t.TempDir(), "nope"))}
	if got := missing.GetAPIKey(); got != "" {
		t.Errorf("GetAPIKey() with missing file = %q, want empty", got)
	}
}
