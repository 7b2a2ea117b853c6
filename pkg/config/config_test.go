package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keyfire/keyfire/pkg/engine"
)

// TestLoadDefaults verifies the built-in safety envelope when no config
// file or environment is present.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Safety.MaxRepeat != engine.DefaultMaxRepeat {
		t.Errorf("MaxRepeat = %d, want %d", cfg.Safety.MaxRepeat, engine.DefaultMaxRepeat)
	}
	if got := cfg.Limits().Timeout; got != engine.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", got, engine.DefaultTimeout)
	}
	opts := cfg.Options()
	if opts.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want 100ms", opts.PollInterval)
	}
	if opts.StopWait != 2*time.Second {
		t.Errorf("StopWait = %v, want 2s", opts.StopWait)
	}
}

// TestLoadFromFile verifies file values override the defaults.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfire.yaml")
	content := `safety:
  max_repeat: 500
  timeout_seconds: 120
engine:
  poll_interval_ms: 25
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Safety.MaxRepeat != 500 {
		t.Errorf("MaxRepeat = %d, want 500", cfg.Safety.MaxRepeat)
	}
	if got := cfg.Limits().Timeout; got != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", got)
	}
	if got := cfg.Options().PollInterval; got != 25*time.Millisecond {
		t.Errorf("PollInterval = %v, want 25ms", got)
	}
	// Unset keys keep their defaults.
	if got := cfg.Options().StopWait; got != 2*time.Second {
		t.Errorf("StopWait = %v, want 2s default", got)
	}
}

// TestLoadFromEnv verifies KEYFIRE_ environment variables are applied.
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KEYFIRE_SAFETY_MAX_REPEAT", "7")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Safety.MaxRepeat != 7 {
		t.Errorf("MaxRepeat = %d, want 7 from env", cfg.Safety.MaxRepeat)
	}
}

// TestLoadMissingFile verifies an explicit but absent config path is an
// error rather than a silent fallback.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
