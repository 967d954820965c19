package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DISCORD_TOKEN", "OSU_CLIENT_ID", "OSU_CLIENT_SECRET", "OSU_API_URL", "TOP_PLAYS_LIMIT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_FromYAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
discord:
  token: abc
osu:
  client_id: "123"
  client_secret: shh
  timeout: 3s
top_plays:
  page_size: 4
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Discord.Token != "abc" || cfg.Osu.ClientID != "123" {
		t.Errorf("unexpected credentials: %+v", cfg)
	}
	if cfg.Osu.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Osu.Timeout)
	}
	if cfg.TopPlays.PageSize != 4 || cfg.TopPlays.Limit != 100 {
		t.Errorf("top plays = %+v", cfg.TopPlays)
	}
	if cfg.TopPlays.SessionIdle != 120*time.Second || cfg.TopPlays.StarRatingTimeout != 8*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg.TopPlays)
	}
	if cfg.Osu.BaseURL != "https://osu.ppy.sh/api/v2" {
		t.Errorf("base url = %q", cfg.Osu.BaseURL)
	}
}

func TestLoadConfig_EnvFallback(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("OSU_CLIENT_ID", "1")
	t.Setenv("OSU_CLIENT_SECRET", "2")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("token = %q", cfg.Discord.Token)
	}
	if cfg.Storage.LinkedAccountsPath != "linkedAccounts.json" || cfg.Storage.SettingsPath != "config.json" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
}

func TestLoadConfig_MissingSecretsFailFast(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "only-discord")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"Config.Osu.ClientID": false, "Config.Osu.ClientSecret": false}
	for _, f := range verr.Fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("expected %s in %v", f, verr.Fields)
		}
	}
}

func TestObservabilityConfig_SlogLevel(t *testing.T) {
	if got := (ObservabilityConfig{LogLevel: "debug"}).SlogLevel().String(); got != "DEBUG" {
		t.Errorf("debug -> %s", got)
	}
	if got := (ObservabilityConfig{LogLevel: "nonsense"}).SlogLevel().String(); got != "INFO" {
		t.Errorf("nonsense -> %s", got)
	}
}
