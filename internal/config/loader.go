package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the reminder service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	SessionTTL         time.Duration
	DefaultHorizonDays int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// provided values and reporting every invalid entry at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:medreminder.db?_pragma=foreign_keys(1)",
		SessionTTL:         720 * time.Hour,
		DefaultHorizonDays: 7,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MEDREMINDER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEDREMINDER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEDREMINDER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("MEDREMINDER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEDREMINDER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("MEDREMINDER_DEFAULT_HORIZON_DAYS")); horizonValue != "" {
		horizon, err := strconv.Atoi(horizonValue)
		if err != nil || horizon < 1 || horizon > 90 {
			invalid = append(invalid, "MEDREMINDER_DEFAULT_HORIZON_DAYS")
		} else {
			cfg.DefaultHorizonDays = horizon
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
