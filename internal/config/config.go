package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppName names the config and cache directories.
const AppName = "watools"

// File names inside the config directory.
const (
	ConfigFileName      = "config.json"
	CredentialsFileName = "credentials.json"
)

// Defaults applied when the config leaves a value unset.
const (
	DefaultAPIBaseURL        = "https://api.wildapricot.org/v2.2/"
	DefaultOAuthURL          = "https://oauth.wildapricot.org/auth/token"
	DefaultTimeoutSeconds    = 30
	DefaultRequestsPerSecond = 2.0
	DefaultCacheBackend      = CacheBackendSQLite
	DefaultContactsTTL       = 3600
	DefaultDelayMillis       = 500
	DefaultMaxRetries        = 3
)

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config represents the watools configuration.
// config.json holds settings; credentials.json holds per-account secrets and is merged in.
type Config struct {
	AccountID    int                           `json:"account_id"`
	LogLevel     string                        `json:"log_level,omitempty"`
	API          APIConfig                     `json:"api"`
	Accounts     map[string]AccountCredentials `json:"accounts,omitempty"`
	Cache        CacheConfig                   `json:"cache"`
	Registration RegistrationConfig            `json:"registration"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	BaseURL           string  `json:"api_base_url,omitempty"`
	OAuthURL          string  `json:"oauth_url,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
}

// AccountCredentials are the OAuth client credentials of one account.
type AccountCredentials struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// CacheConfig configures the contact cache.
type CacheConfig struct {
	Backend            string `json:"backend,omitempty"` // sqlite, redis or none
	ContactsTTLSeconds int    `json:"contacts_ttl_seconds,omitempty"`
	RedisAddr          string `json:"redis_addr,omitempty"`
	RedisDB            int    `json:"redis_db,omitempty"`
}

// RegistrationConfig configures bulk registration pacing.
type RegistrationConfig struct {
	DelayMillis       int   `json:"delay_ms,omitempty"`
	MaxRetries        int   `json:"max_retries,omitempty"`
	VerifyBeforeRetry *bool `json:"verify_before_retry,omitempty"` // default true
}

// ConfigDir returns the configuration directory.
// Resolution order: WATOOLS_CONFIG_DIR, $XDG_CONFIG_HOME/watools, ~/.config/watools.
func ConfigDir() (string, error) {
	return resolveDir("WATOOLS_CONFIG_DIR", "XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the cache directory.
// Resolution order: WATOOLS_CACHE_DIR, $XDG_CACHE_HOME/watools, ~/.cache/watools.
func CacheDir() (string, error) {
	return resolveDir("WATOOLS_CACHE_DIR", "XDG_CACHE_HOME", ".cache")
}

func resolveDir(overrideEnv, xdgEnv, homeSub string) (string, error) {
	if dir := os.Getenv(overrideEnv); dir != "" {
		return dir, nil
	}
	if base := os.Getenv(xdgEnv); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, homeSub, AppName), nil
}

// LoadConfig reads the optional config.json and credentials.json from dir,
// then applies defaults. Environment overrides are applied separately by ApplyEnv.
func LoadConfig(dir string) (*Config, error) {
	var cfg Config

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// everything may come from the environment
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	credsPath := filepath.Join(dir, CredentialsFileName)
	credsData, err := os.ReadFile(credsPath)
	switch {
	case err == nil:
		var creds struct {
			Accounts map[string]AccountCredentials `json:"accounts"`
		}
		if err := json.Unmarshal(credsData, &creds); err != nil {
			return nil, fmt.Errorf("failed to parse credentials %s: %w", credsPath, err)
		}
		cfg.mergeCredentials(creds.Accounts)
	case errors.Is(err, os.ErrNotExist):
		// credentials may come from the environment
	default:
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// SaveConfig writes config.json to dir. Credentials are never written here.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	out := *cfg
	out.Accounts = nil
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) mergeCredentials(accounts map[string]AccountCredentials) {
	if c.Accounts == nil {
		c.Accounts = make(map[string]AccountCredentials)
	}
	for id, creds := range accounts {
		existing := c.Accounts[id]
		if creds.ClientID != "" {
			existing.ClientID = creds.ClientID
		}
		if creds.ClientSecret != "" {
			existing.ClientSecret = creds.ClientSecret
		}
		c.Accounts[id] = existing
	}
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	if c.API.OAuthURL == "" {
		c.API.OAuthURL = DefaultOAuthURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.API.RequestsPerSecond <= 0 {
		c.API.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.ContactsTTLSeconds <= 0 {
		c.Cache.ContactsTTLSeconds = DefaultContactsTTL
	}
	if c.Registration.DelayMillis <= 0 {
		c.Registration.DelayMillis = DefaultDelayMillis
	}
	if c.Registration.MaxRetries <= 0 {
		c.Registration.MaxRetries = DefaultMaxRetries
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

// ApplyEnv loads a .env file from the working directory (if present) and
// applies WATOOLS_* environment overrides. A non-zero accountID (from the
// command line) wins over WATOOLS_ACCOUNT_ID and is the account that
// WATOOLS_CLIENT_ID / WATOOLS_CLIENT_SECRET are filed under.
func (c *Config) ApplyEnv(accountID int) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if v := os.Getenv("WATOOLS_ACCOUNT_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WATOOLS_ACCOUNT_ID %q: %w", v, err)
		}
		c.AccountID = id
	}
	if accountID != 0 {
		c.AccountID = accountID
	}
	if v := os.Getenv("WATOOLS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WATOOLS_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
		c.applyDefaults()
	}

	id, secret := os.Getenv("WATOOLS_CLIENT_ID"), os.Getenv("WATOOLS_CLIENT_SECRET")
	if (id != "" || secret != "") && c.AccountID != 0 {
		c.mergeCredentials(map[string]AccountCredentials{
			strconv.Itoa(c.AccountID): {ClientID: id, ClientSecret: secret},
		})
	}
	return nil
}

// Validate checks that an account is selected and has credentials.
func (c *Config) Validate() error {
	if c.AccountID == 0 {
		return fmt.Errorf("no account_id configured: set account_id in %s, WATOOLS_ACCOUNT_ID or --account-id", ConfigFileName)
	}
	creds, ok := c.Accounts[strconv.Itoa(c.AccountID)]
	if !ok {
		return fmt.Errorf("account %d not found in [accounts] of %s or %s", c.AccountID, ConfigFileName, CredentialsFileName)
	}

	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys for account %d: %s", c.AccountID, strings.Join(missing, ", "))
	}

	switch c.Cache.Backend {
	case CacheBackendSQLite, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires cache.redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (valid: sqlite, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Credentials returns the credentials of the selected account.
func (c *Config) Credentials() AccountCredentials {
	return c.Accounts[strconv.Itoa(c.AccountID)]
}

// ContactsTTL returns the contact cache expiry.
func (c *Config) ContactsTTL() time.Duration {
	return time.Duration(c.Cache.ContactsTTLSeconds) * time.Second
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RegistrationDelay returns the pause between registration attempts.
func (c *Config) RegistrationDelay() time.Duration {
	return time.Duration(c.Registration.DelayMillis) * time.Millisecond
}

// VerifyBeforeRetry reports whether ambiguous failures are verified before retrying.
func (c *Config) VerifyBeforeRetry() bool {
	return c.Registration.VerifyBeforeRetry == nil || *c.Registration.VerifyBeforeRetry
}

// Properties lists the resolved settings for display, with secrets masked.
func (c *Config) Properties() map[string]string {
	creds := c.Credentials()
	return map[string]string{
		"account_id":           strconv.Itoa(c.AccountID),
		"log_level":            c.LogLevel,
		"api_base_url":         c.API.BaseURL,
		"oauth_url":            c.API.OAuthURL,
		"timeout_seconds":      strconv.Itoa(c.API.TimeoutSeconds),
		"requests_per_second":  strconv.FormatFloat(c.API.RequestsPerSecond, 'f', -1, 64),
		"client_id":            mask(creds.ClientID),
		"client_secret":        mask(creds.ClientSecret),
		"cache_backend":        c.Cache.Backend,
		"contacts_ttl_seconds": strconv.Itoa(c.Cache.ContactsTTLSeconds),
		"registration_delay":   c.RegistrationDelay().String(),
		"max_retries":          strconv.Itoa(c.Registration.MaxRetries),
		"verify_before_retry":  strconv.FormatBool(c.VerifyBeforeRetry()),
	}
}

func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
