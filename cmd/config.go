package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults for keys that may be left unset.
const (
	DefaultHTTPPort        = "8080"
	DefaultLogLevel        = "info"
	DefaultManifestKey     = "manifest:snapshot"
	DefaultGeocodeDelay    = time.Second
	DefaultGeocodeSchedule = "0 */5 * * * *"
	DefaultSyncSchedule    = "0 * * * * *"
	DefaultPhoneRegion     = "JP"
)

type Config struct {
	HTTPPort    string
	LogLevel    string
	ManifestKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	ORSAPIKey  string
	ORSBaseURL string

	GeocodeDelay    time.Duration
	GeocodeSchedule string
	SyncSchedule    string

	ExtendedStatuses  bool
	DispositionPrompt bool
	PhoneRegion       string
}

// LoadConfig reads every key through getenv. Malformed numbers and booleans are
// reported together.
func LoadConfig(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPPort:        get("HTTP_PORT", DefaultHTTPPort),
		LogLevel:        get("LOG_LEVEL", DefaultLogLevel),
		ManifestKey:     get("MANIFEST_KEY", DefaultManifestKey),
		RedisAddr:       get("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		DBHost:          get("DB_HOST", ""),
		DBPort:          get("DB_PORT", "5432"),
		DBUser:          get("DB_USER", ""),
		DBPassword:      getenv("DB_PASSWORD"),
		DBName:          get("DB_NAME", ""),
		DBSslMode:       get("DB_SSLMODE", "disable"),
		ORSAPIKey:       get("ORS_API_KEY", ""),
		ORSBaseURL:      get("ORS_BASE_URL", ""),
		GeocodeSchedule: get("GEOCODE_SCHEDULE", DefaultGeocodeSchedule),
		SyncSchedule:    get("SYNC_SCHEDULE", DefaultSyncSchedule),
		PhoneRegion:     get("PHONE_REGION", DefaultPhoneRegion),
	}

	var problems []error
	var err error
	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		problems = append(problems, fmt.Errorf("REDIS_DB: %w", err))
	}
	delayMs, err := strconv.Atoi(get("GEOCODE_DELAY_MS", strconv.Itoa(int(DefaultGeocodeDelay.Milliseconds()))))
	switch {
	case err != nil:
		problems = append(problems, fmt.Errorf("GEOCODE_DELAY_MS: %w", err))
	case delayMs < 0:
		problems = append(problems, errors.New("GEOCODE_DELAY_MS: must not be negative"))
	default:
		cfg.GeocodeDelay = time.Duration(delayMs) * time.Millisecond
	}
	if cfg.ExtendedStatuses, err = strconv.ParseBool(get("EXTENDED_STATUSES", "false")); err != nil {
		problems = append(problems, fmt.Errorf("EXTENDED_STATUSES: %w", err))
	}
	if cfg.DispositionPrompt, err = strconv.ParseBool(get("DISPOSITION_PROMPT", "true")); err != nil {
		problems = append(problems, fmt.Errorf("DISPOSITION_PROMPT: %w", err))
	}

	return cfg, errors.Join(problems...)
}

// SyncEnabled reports whether a sync backend is configured.
func (c Config) SyncEnabled() bool {
	return c.DBHost != ""
}

// GeocoderEnabled reports whether an OpenRouteService key is configured.
func (c Config) GeocoderEnabled() bool {
	return c.ORSAPIKey != ""
}

// DSN is the postgres connection string of the sync backend.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
