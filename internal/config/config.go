// Package config loads and validates application configuration from
// environment variables. A .env file in the working directory is read first
// when present; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Community backings accepted by COMMUNITY_SOURCE.
const (
	CommunitySourceMemory = "memory"
	CommunitySourceRemote = "remote"
)

// Config holds the settings of both the CLI and the fixture API server.
// Values are populated by Load from environment variables.
type Config struct {
	// APIBaseURL is the root of the carpool API the CLI talks to.
	// Defaults to "http://localhost:8000".
	APIBaseURL string

	// SessionFile is where the CLI keeps the bearer token.
	// Defaults to $XDG_CONFIG_HOME/ecotrajet/session.json.
	SessionFile string

	// HTTPTimeout bounds every outgoing API request. Defaults to 15s.
	HTTPTimeout time.Duration

	// CommunitySource selects the community backing: "memory" or "remote".
	CommunitySource string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// Port is the TCP port the fixture API listens on. Defaults to "8000".
	Port string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies on the fixture API. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RateLimitRPS is the per-client request rate of the fixture API.
	// Zero disables limiting. Defaults to 20.
	RateLimitRPS float64

	// RateLimitBurst is the per-client burst size. Defaults to 40.
	RateLimitBurst int
}

// Load reads configuration from the environment (after an optional .env file)
// and returns a Config. Every invalid value is reported in one error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	cfg := Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8000"),
		SessionFile:     getEnv("SESSION_FILE", defaultSessionFile()),
		CommunitySource: strings.ToLower(getEnv("COMMUNITY_SOURCE", CommunitySourceMemory)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Port:            getEnv("PORT", "8000"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var problems []string

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be a positive duration")
	}
	cfg.HTTPTimeout = timeout

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be a positive integer")
	}
	cfg.MaxBodyBytes = maxBody

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps < 0 {
		problems = append(problems, "RATE_LIMIT_RPS must be a non-negative number")
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil || burst < 1 {
		problems = append(problems, "RATE_LIMIT_BURST must be a positive integer")
	}
	cfg.RateLimitBurst = burst

	switch cfg.CommunitySource {
	case CommunitySourceMemory, CommunitySourceRemote:
	default:
		problems = append(problems, "COMMUNITY_SOURCE must be memory or remote")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, "LOG_FORMAT must be text or json")
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		problems = append(problems, "PORT must be a number")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ecotrajet-session.json"
	}
	return filepath.Join(dir, "ecotrajet", "session.json")
}
