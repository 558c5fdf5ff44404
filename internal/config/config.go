package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// AppConfig holds everything the process reads from the environment.
type AppConfig struct {
	// Governor settings: admitted calls per trailing window.
	GovernorCapacity int
	GovernorWindow   time.Duration

	// Optional distributed governor backend. Empty address disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Timeout for outbound provider calls.
	HTTPTimeout time.Duration

	// Locations to prewarm ("City, CC" entries) and how often.
	PrewarmLocations []string
	PrewarmInterval  time.Duration

	// Report cache retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	cfg := &AppConfig{
		GovernorCapacity: getenvInt("GOVERNOR_CAPACITY", 50),
		RedisAddr:        os.Getenv("GOVERNOR_REDIS_ADDR"),
		RedisPassword:    os.Getenv("GOVERNOR_REDIS_PASSWORD"),
		RedisDB:          getenvInt("GOVERNOR_REDIS_DB", 0),
		RedisPrefix:      getenvDefault("GOVERNOR_REDIS_PREFIX", "weather-tools"),
		StoreMaxHistory:  getenvInt("STORE_MAX_HISTORY", 96),
		Port:             getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.GovernorWindow, err = getenvDuration("GOVERNOR_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PrewarmInterval, err = getenvDuration("PREWARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if raw := os.Getenv("PREWARM_LOCATIONS"); raw != "" {
		for _, loc := range strings.Split(raw, ";") {
			if loc = strings.TrimSpace(loc); loc != "" {
				cfg.PrewarmLocations = append(cfg.PrewarmLocations, loc)
			}
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
