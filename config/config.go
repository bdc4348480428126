package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultOrigin = "http://localhost:5173"

type Config struct {
	Port           string
	LogLevel       slog.Level
	AllowedOrigins []string
	RoomEvictAfter time.Duration
	MDNSEnabled    bool
	MDNSInstance   string
}

// Load reads the process environment. Call godotenv.Load first to pick up a
// .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		AllowedOrigins: splitAndTrim(getenv("ALLOWED_ORIGINS", defaultOrigin)),
		MDNSInstance:   os.Getenv("MDNS_INSTANCE"),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	cfg.LogLevel, err = parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}

	if v := os.Getenv("ROOM_EVICT_AFTER"); v != "" {
		cfg.RoomEvictAfter, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROOM_EVICT_AFTER: %w", err)
		}
		if cfg.RoomEvictAfter < 0 {
			return Config{}, fmt.Errorf("invalid ROOM_EVICT_AFTER %q: must not be negative", v)
		}
	}

	if v := os.Getenv("MDNS_ENABLED"); v != "" {
		cfg.MDNSEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MDNS_ENABLED: %w", err)
		}
	}
	if cfg.MDNSInstance == "" {
		cfg.MDNSInstance, _ = os.Hostname()
	}

	return cfg, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func (c Config) PortNumber() int {
	n, _ := strconv.Atoi(c.Port)
	return n
}

// AllowAnyOrigin reports whether the origin list contains "*".
func (c Config) AllowAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAndTrim(input string) []string {
	raw := strings.Split(input, ",")
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return []string{defaultOrigin}
	}
	return out
}
