package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config", "config.test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")
}

func TestLoad(t *testing.T) {
	writeConfig(t, `
mode: debug
port: 9000
secret: "test-secret"
rpc:
  max_retries: 5
  base_delay: 500ms
  call_timeout: 3s
hub:
  call_budget: 10
  call_window: 2s
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9000 || cfg.Secret != "test-secret" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RPC.MaxRetries != 5 || cfg.RPC.BaseDelay != 500*time.Millisecond || cfg.RPC.CallTimeout != 3*time.Second {
		t.Fatalf("rpc = %+v", cfg.RPC)
	}
	if cfg.Hub.CallBudget != 10 || cfg.Hub.CallWindow != 2*time.Second {
		t.Fatalf("hub = %+v", cfg.Hub)
	}
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "mode: debug\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.RPC.MaxRetries != 3 || cfg.RPC.BaseDelay != 2*time.Second || cfg.RPC.CallTimeout != 0 {
		t.Fatalf("rpc defaults = %+v", cfg.RPC)
	}
	if cfg.Hub.CallBudget != 30 || cfg.Hub.CallWindow != 10*time.Second {
		t.Fatalf("hub defaults = %+v", cfg.Hub)
	}
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
