package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StationsPath points at the stations.json registry file.
	StationsPath string

	// Separate SQLite files: the observation store and the daily results
	// store are independent resources with independent writers.
	ObservationsDBPath string
	ResultsDBPath      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Upstream endpoints; tests override these with httptest servers.
	ObservationBaseURL string
	ReportBaseURL      string

	RequestTimeout time.Duration
	PacingDelay    time.Duration

	// Scheduling intervals for the server daemon.
	CollectInterval time.Duration
	ReportInterval  time.Duration
}

func LoadFromEnv() (Config, error) {
	// Best effort: a missing .env file is the normal case in prod.
	_ = godotenv.Load()

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}

	requestTimeout, err := envDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	pacingDelay, err := envDuration("PACING_DELAY", time.Second)
	if err != nil {
		return Config{}, err
	}
	collectInterval, err := envDuration("COLLECT_INTERVAL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	reportInterval, err := envDuration("REPORT_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	if collectInterval < time.Minute {
		return Config{}, fmt.Errorf("COLLECT_INTERVAL %s too short (minimum 1m)", collectInterval)
	}
	if reportInterval < time.Minute {
		return Config{}, fmt.Errorf("REPORT_INTERVAL %s too short (minimum 1m)", reportInterval)
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           envDefault("HTTP_ADDR", ":8080"),
		StationsPath:       envDefault("STATIONS_PATH", "config/stations.json"),
		ObservationsDBPath: envDefault("OBSERVATIONS_DB_PATH", "data/observations.db"),
		ResultsDBPath:      envDefault("RESULTS_DB_PATH", "data/daily_results.db"),
		MaxOpenConns:       maxOpenConns,
		MaxIdleConns:       maxIdleConns,
		ConnMaxLifetime:    connMaxLifetime,
		ObservationBaseURL: envDefault("OBSERVATION_BASE_URL", "https://api.weather.gov"),
		ReportBaseURL:      envDefault("REPORT_BASE_URL", "https://forecast.weather.gov"),
		RequestTimeout:     requestTimeout,
		PacingDelay:        pacingDelay,
		CollectInterval:    collectInterval,
		ReportInterval:     reportInterval,
	}, nil
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
