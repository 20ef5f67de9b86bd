package config

import (
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	WSAddr   string
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	TurnTimeoutSec    int
	ReconnectGraceSec int
	MsgTemplateDir    string
	BoardImageEnabled bool
	ShutdownGraceSec  int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		WSAddr:            ":4000",
		HTTPAddr:          ":4001",
		TurnTimeoutSec:    30,
		ReconnectGraceSec: 30,
		BoardImageEnabled: true,
		ShutdownGraceSec:  10,
	}

	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MsgTemplateDir = strings.TrimSpace(os.Getenv("MSG_TEMPLATE_DIR"))

	if v := strings.TrimSpace(os.Getenv("TURN_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TurnTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RECONNECT_GRACE_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReconnectGraceSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_IMAGE_ENABLED")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.BoardImageEnabled = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_GRACE_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ShutdownGraceSec = n
		}
	}

	return cfg, nil
}
