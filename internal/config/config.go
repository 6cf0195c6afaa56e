package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "WargaOne"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultBaseURL       = "http://localhost:8080/api/v1"
	defaultHTTPTimeout   = 15 * time.Second
	defaultTokenTTL      = 24 * time.Hour
	defaultShutdownDelay = 10 * time.Second
	defaultBackend       = BackendFile
	defaultNamespace     = "wargaone"

	httpTimeoutSecondsEnvVar = "HTTP_TIMEOUT_SECONDS"
	httpTimeoutDurEnvVar     = "HTTP_TIMEOUT"
	tokenTTLSecondsEnvVar    = "TOKEN_TTL_SECONDS"
	tokenTTLDurEnvVar        = "TOKEN_TTL"
	shutdownSecondsEnvVar    = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar   = "SHUTDOWN_TIMEOUT"
)

// Supported session store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config captures runtime configuration for the SDK and the dev server,
// loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	BaseURL          string
	HTTPTimeout      time.Duration
	SessionBackend   string
	SessionFile      string
	SessionNamespace string
	RedisURL         string
	DatabaseURL      string
	JWTSecret        string
	TokenTTL         time.Duration
	OmitLoginUser    bool
	ShutdownPeriod   time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BaseURL:          strings.TrimRight(getEnv("API_BASE_URL", defaultBaseURL), "/"),
		HTTPTimeout:      defaultHTTPTimeout,
		SessionBackend:   strings.ToLower(getEnv("SESSION_BACKEND", defaultBackend)),
		SessionFile:      os.Getenv("SESSION_FILE"),
		SessionNamespace: getEnv("SESSION_NAMESPACE", defaultNamespace),
		RedisURL:         os.Getenv("REDIS_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:         defaultTokenTTL,
		OmitLoginUser:    os.Getenv("DEV_OMIT_USER") == "1",
		ShutdownPeriod:   defaultShutdownDelay,
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv(httpTimeoutSecondsEnvVar, httpTimeoutDurEnvVar, cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv(tokenTTLSecondsEnvVar, tokenTTLDurEnvVar, cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	switch cfg.SessionBackend {
	case BackendMemory:
	case BackendFile:
		if cfg.SessionFile == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return Config{}, fmt.Errorf("SESSION_FILE must be set when no home directory is available: %w", err)
			}
			cfg.SessionFile = home + "/.wargaone/session.json"
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when SESSION_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when SESSION_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(secondsVar, durVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
