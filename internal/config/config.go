package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	ListenAddr string

	CoachBaseURL string
	CoachAPIKey  string
	CoachModel   string

	RedisURL string

	SessionTTLSec  int
	AdvisorTimeout int // seconds
	MutedByDefault bool

	MessageOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8089",
		CoachModel:     "gpt-4o-mini",
		SessionTTLSec:  3600,
		AdvisorTimeout: 20,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}

	cfg.CoachBaseURL = strings.TrimSpace(os.Getenv("COACH_BASE_URL"))
	cfg.CoachAPIKey = strings.TrimSpace(os.Getenv("COACH_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("COACH_MODEL")); v != "" {
		cfg.CoachModel = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorTimeout = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MUTED_BY_DEFAULT")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.MutedByDefault = b
		}
	}

	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if cfg.CoachBaseURL == "" {
		return nil, errors.New("COACH_BASE_URL is required")
	}

	return cfg, nil
}
