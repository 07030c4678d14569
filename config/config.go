package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (l LogLevel) ToSlog() slog.Level {
	switch LogLevel(strings.ToUpper(string(l))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogFormat string

const (
	LogFormatPlaintext LogFormat = "plaintext"
	LogFormatJSON      LogFormat = "json"
)

type AppEnv string

const (
	AppEnvDev        AppEnv = "dev"
	AppEnvProduction AppEnv = "production"
)

type DatabaseDriver string

const (
	DatabaseDriverMemory   DatabaseDriver = "memory"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverSqlite   DatabaseDriver = "sqlite"
)

type Config struct {
	App      AppConfig
	Sentry   SentryConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

type AppConfig struct {
	Debug           bool
	Port            uint32
	Host            string
	Name            string
	ShutdownTimeout int32 // in seconds
	Env             AppEnv
	Version         string
	RequestTimeout  uint32 // in seconds
	// Path prefix of the contact API routes
	APIPrefix string `mapstructure:"APIPREFIX"`
}

type SentryConfig struct {
	Enabled      bool
	DSN          string
	SampleRate   float64
	TracesRate   float64
	ProfilesRate float64
}

type DatabaseConfig struct {
	Driver DatabaseDriver
	// Connection string for postgres, file path for sqlite
	URL    string
	Schema string
}

type CacheConfig struct {
	Enabled bool
	URL     string
	// Lifetime of a cached contact, in seconds
	TTL uint32
}

type LogConfig struct {
	Format  LogFormat
	Level   LogLevel
	Verbose bool
}

// Addr returns the address the HTTP server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

func (c *Config) IsTest() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test") ||
		strings.Contains(os.Args[0], "/_test/")
}

// Validate reports configuration that cannot be used to start the service.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DatabaseDriverMemory:
	case DatabaseDriverPostgres, DatabaseDriverSqlite:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Cache.Enabled && c.Cache.URL == "" {
		return errors.New("CACHE_URL is required when the cache is enabled")
	}
	if !strings.HasPrefix(c.App.APIPrefix, "/") {
		return fmt.Errorf("APP_APIPREFIX must start with a slash, got %q", c.App.APIPrefix)
	}
	return nil
}

func setDefaults(reader *viper.Viper) {
	reader.SetDefault("app_name", "directory")
	reader.SetDefault("app_host", "localhost")
	reader.SetDefault("app_port", 3000)
	reader.SetDefault("app_env", string(AppEnvProduction))
	reader.SetDefault("app_shutdowntimeout", 2)
	reader.SetDefault("app_requesttimeout", 30)
	reader.SetDefault("app_apiprefix", "/api")
	reader.SetDefault("database_driver", string(DatabaseDriverMemory))
	reader.SetDefault("database_url", "")
	reader.SetDefault("database_schema", "public")
	reader.SetDefault("cache_enabled", false)
	reader.SetDefault("cache_url", "")
	reader.SetDefault("cache_ttl", 300)
	reader.SetDefault("log_format", string(LogFormatJSON))
	reader.SetDefault("log_level", string(LogLevelInfo))
	reader.SetDefault("log_verbose", false)
	reader.SetDefault("sentry_enabled", false)
	reader.SetDefault("sentry_dsn", "")
	reader.SetDefault("sentry_samplerate", 1.0)
	reader.SetDefault("sentry_tracesrate", 0.0)
	reader.SetDefault("sentry_profilesrate", 0.0)
}

// Load the configuration file from the specified filesystem.
// You can specify additional .env files to load, by default this only checks for ".env" in the
// current working directory.
// Every key can be overridden by an environment variable such as APP_PORT or DATABASE_DRIVER.
func Load(configFS fs.FS, dotenvFiles ...string) (*Config, error) {
	file, err := configFS.Open("config.toml")
	if err != nil {
		return nil, fmt.Errorf("could not find config.toml in the configFS: %w", err)
	}
	defer file.Close()

	reader := viper.NewWithOptions(viper.KeyDelimiter("_"))
	reader.SetConfigType("toml")
	setDefaults(reader)

	if err = reader.ReadConfig(file); err != nil {
		return nil, fmt.Errorf("could not load the app configuration: %w", err)
	}

	// Environment override
	err = godotenv.Load(dotenvFiles...)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("No .env file found, continuing...")
	} else if err != nil {
		return nil, fmt.Errorf(".env file found, but could not load it: %w", err)
	}
	reader.AutomaticEnv()

	var config Config
	if err := reader.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if config.App.Debug && !config.IsTest() {
		slog.Warn("APP_DEBUG is turned on, do not run this mode in production!")
	}

	return &config, nil
}
