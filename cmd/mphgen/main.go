// Mphgen builds, queries and verifies minimal perfect hash functions from
// JSON datasets.
//
// Usage:
//
//	mphgen build keys.json -o keys.mph --algorithm bdz3
//	mphgen lookup keys.mph jan feb
//	mphgen verify keys.mph keys.json
//	mphgen bench keys.json
//
// A dataset is either a JSON array of strings (payload = position) or a
// JSON object mapping keys to non-negative integers.
//
// Environment (a .env file in the working directory is read first):
//
//	MPHGEN_ENV        dev for a human-readable debug logger (default: prod)
//	MPHGEN_ALGORITHM  default algorithm (default: chm)
//	MPHGEN_TRIALS     trials per table size (default: 100)
//	MPHGEN_SEED       generator seed (default: 1)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is the common case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "mphgen: read .env: %v\n", err)
		return 1
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mphgen: %v\n", err)
		return 1
	}
	log, err := cfg.logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mphgen: build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }() // Sync fails on non-syncable stderr; nothing to do about it

	a := &app{fs: afero.NewOsFs(), log: log, cfg: cfg}
	if err := a.rootCommand().Execute(); err != nil {
		log.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}
