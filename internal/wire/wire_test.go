package wire

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// resetConfig clears the resolved configuration so each test loads it again.
func resetConfig(t *testing.T) {
	t.Helper()
	overrides = Overrides{}
	cfg, logger, cfgErr = nil, nil, nil
	cfgOnce = sync.Once{}
	t.Cleanup(func() {
		overrides = Overrides{}
		cfg, logger, cfgErr = nil, nil, nil
		cfgOnce = sync.Once{}
	})
}

func setupConfigDir(t *testing.T, configJSON string) {
	t.Helper()
	dir := t.TempDir()
	if configJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(configJSON), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	t.Setenv("WATOOLS_CONFIG_DIR", dir)
	t.Setenv("WATOOLS_ACCOUNT_ID", "")
	t.Setenv("WATOOLS_LOG_LEVEL", "")
	t.Setenv("WATOOLS_API_BASE_URL", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestConfig_AccountOverrideWithEnvCredentials(t *testing.T) {
	tests := []struct {
		name       string
		configJSON string
	}{
		{name: "empty config", configJSON: `{}`},
		{name: "other account in config", configJSON: `{"account_id": 7}`},
		{name: "no config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			setupConfigDir(t, tt.configJSON)
			t.Setenv("WATOOLS_CLIENT_ID", "env-id")
			t.Setenv("WATOOLS_CLIENT_SECRET", "env-secret")

			Configure(Overrides{AccountID: 42})
			c, err := Config()
			if err != nil {
				t.Fatalf("Config failed: %v", err)
			}

			if c.AccountID != 42 {
				t.Errorf("account = %d, want 42", c.AccountID)
			}
			if creds := c.Credentials(); creds.ClientID != "env-id" || creds.ClientSecret != "env-secret" {
				t.Errorf("expected env credentials for account 42, got %+v", c.Accounts)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestConfig_LogLevelOverride(t *testing.T) {
	resetConfig(t)
	setupConfigDir(t, `{"account_id": 5, "log_level": "INFO"}`)

	Configure(Overrides{LogLevel: "debug"})
	c, err := Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", c.LogLevel)
	}
}

func TestConfig_InvalidLogLevel(t *testing.T) {
	resetConfig(t)
	setupConfigDir(t, `{"account_id": 5}`)

	Configure(Overrides{LogLevel: "loud"})
	if _, err := Config(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if Logger() == nil {
		t.Error("expected a logger even when the config is invalid")
	}
}
