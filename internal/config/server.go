package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type ServerConfig struct {
	Addr           string `env:"SERVER_ADDR, default=:8080"`
	MaxUploadBytes int64  `env:"SERVER_MAX_UPLOAD_BYTES, default=10485760"`
}

func NewServerConfigFromEnv() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("SERVER_MAX_UPLOAD_BYTES must be positive")
	}
	return &cfg, nil
}
