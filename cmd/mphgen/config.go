package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

const envPrefix = "mphgen"

// config holds the environment defaults. Command-line flags override them.
type config struct {
	Env       string `default:"prod"`
	Algorithm string `default:"chm"`
	Trials    int    `default:"100"`
	Seed      uint64 `default:"1"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c config) logger() (*zap.Logger, error) {
	if c.Env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
