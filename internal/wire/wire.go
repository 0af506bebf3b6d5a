// Package wire provides dependency injection for the watools application.
// It creates singleton services with lazy initialization.
package wire

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	cliadapter "github.com/example/watools/internal/adapters/cli"
	"github.com/example/watools/internal/adapters/metrics"
	redisadapter "github.com/example/watools/internal/adapters/redis"
	"github.com/example/watools/internal/adapters/sqlite"
	"github.com/example/watools/internal/adapters/wildapricot"
	"github.com/example/watools/internal/app"
	"github.com/example/watools/internal/config"
	"github.com/example/watools/internal/db"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// Overrides are command-line values that take precedence over config and environment.
type Overrides struct {
	AccountID int
	LogLevel  string
}

var (
	overrides Overrides

	cfg     *config.Config
	logger  *logging.Logger
	cfgErr  error
	cfgOnce sync.Once

	client              *wildapricot.Client
	registry            *metrics.Registry
	registrationService primary.RegistrationService
	eventService        primary.EventService
	contactService      primary.ContactService
	accountService      primary.AccountService
	initErr             error
	once                sync.Once
)

// Configure records command-line overrides. Call it before any other accessor.
func Configure(o Overrides) {
	overrides = o
}

// Config returns the resolved configuration: files, then .env and
// WATOOLS_* variables, then command-line overrides. It is not validated.
func Config() (*config.Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Logger returns the diagnostic logger. Before the config is loaded it logs at INFO.
func Logger() *logging.Logger {
	cfgOnce.Do(loadConfig)
	return logger
}

func loadConfig() {
	level := logging.LevelInfo
	logger = logging.Stderr(level)

	dir, err := config.ConfigDir()
	if err != nil {
		cfgErr = err
		return
	}
	cfg, err = config.LoadConfig(dir)
	if err != nil {
		cfgErr = fmt.Errorf("%w (config dir %s)", err, dir)
		return
	}
	if err := cfg.ApplyEnv(overrides.AccountID); err != nil {
		cfgErr = err
		return
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	level, err = logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		cfgErr = err
		return
	}
	logger.SetLevel(level)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c, err := Config()
	if err != nil {
		initErr = err
		return
	}
	if err := c.Validate(); err != nil {
		initErr = err
		return
	}
	log := Logger()

	client = newClient(c, log)

	database, err := db.GetDB()
	if err != nil {
		initErr = fmt.Errorf("failed to initialize database: %w", err)
		return
	}
	runRepo := sqlite.NewRegistrationRunRepository(database)

	cache, err := newContactCache(c, log)
	if err != nil {
		initErr = err
		return
	}
	contacts := app.NewContactLoader(client, cache, c.ContactsTTL(), log)

	registry = metrics.New()

	registrationService = app.NewRegistrationService(client, contacts, log, app.RegistrationServiceOptions{
		Runs:    runRepo,
		Metrics: registry,
		Bulk: app.BulkOptions{
			Delay:      c.RegistrationDelay(),
			MaxRetries: c.Registration.MaxRetries,
		},
		VerifyBeforeRetry: c.VerifyBeforeRetry(),
	})
	eventService = app.NewEventService(client, log)
	contactService = app.NewContactService(client, contacts, log)
	accountService = app.NewAccountService(client)
}

func newClient(c *config.Config, log *logging.Logger) *wildapricot.Client {
	creds := c.Credentials()
	return wildapricot.NewClient(wildapricot.Options{
		BaseURL:           c.API.BaseURL,
		OAuthURL:          c.API.OAuthURL,
		ClientID:          creds.ClientID,
		ClientSecret:      creds.ClientSecret,
		HTTPClient:        &http.Client{Timeout: c.Timeout()},
		RequestsPerSecond: c.API.RequestsPerSecond,
		Tokens:            wildapricot.NewMemoryTokenStore(),
		Logger:            log,
	})
}

// newContactCache selects the contact cache backend. A nil cache disables caching.
func newContactCache(c *config.Config, log *logging.Logger) (secondary.ContactCache, error) {
	switch c.Cache.Backend {
	case config.CacheBackendNone:
		log.Debugf("Contact cache disabled")
		return nil, nil
	case config.CacheBackendRedis:
		log.Debugf("Contact cache: redis %s db %d", c.Cache.RedisAddr, c.Cache.RedisDB)
		return redisadapter.NewContactCache(redisadapter.NewClient(c.Cache.RedisAddr, c.Cache.RedisDB), c.ContactsTTL()), nil
	default:
		database, err := db.GetDB()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return sqlite.NewContactCacheRepository(database), nil
	}
}

// Client returns the API client, for connectivity checks.
func Client() (*wildapricot.Client, error) {
	once.Do(initServices)
	return client, initErr
}

// Metrics returns the registration metrics registry.
func Metrics() (*metrics.Registry, error) {
	once.Do(initServices)
	return registry, initErr
}

// RegistrationAdapter returns a new RegistrationAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func RegistrationAdapter() (*cliadapter.RegistrationAdapter, error) {
	return RegistrationAdapterWithOutput(os.Stdout)
}

// RegistrationAdapterWithOutput returns a new RegistrationAdapter writing to the given output.
func RegistrationAdapterWithOutput(out io.Writer) (*cliadapter.RegistrationAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewRegistrationAdapter(registrationService, out), nil
}

// EventAdapter returns a new EventAdapter writing to stdout.
func EventAdapter() (*cliadapter.EventAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewEventAdapter(eventService, os.Stdout), nil
}

// ContactAdapter returns a new ContactAdapter writing to stdout.
func ContactAdapter() (*cliadapter.ContactAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewContactAdapter(contactService, os.Stdout), nil
}

// AccountAdapter returns a new AccountAdapter writing to stdout.
func AccountAdapter() (*cliadapter.AccountAdapter, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return cliadapter.NewAccountAdapter(accountService, os.Stdout), nil
}

// Close releases the database connection.
func Close() error {
	return db.Close()
}
