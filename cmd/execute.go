// Package cmd implements the veil command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	veillog "github.com/veilhq/veil/internal/log"

	"github.com/veilhq/veil/internal/config"
	"github.com/veilhq/veil/internal/observability"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the veil CLI. It handles all
// initialization, flag parsing, and command routing.
//
// Following the pattern used by standard Go CLI tools, all application
// logic lives in the cmd package, leaving main.go as a minimal entry point.
func Execute() error {
	// version and help work even when the config is invalid
	if len(os.Args) < 2 {
		printHelp()
		return nil
	}
	switch os.Args[1] {
	case "version", "--version", "-v":
		return printVersionInfo()
	case "help", "--help", "-h":
		printHelp()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := initLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := observability.Setup(ctx, observability.Config{
			Endpoint:    cfg.TracingEndpoint,
			ServiceName: cfg.TracingService,
			Environment: cfg.TracingEnvironment,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	switch os.Args[1] {
	case "kv":
		return runKV(ctx, cfg, logger, os.Args[2:])
	case "redact":
		return runRedact(ctx, cfg, logger, os.Args[2:])
	case "migrate":
		return runMigrate(cfg, logger)
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// initLogger builds the structured logger from configuration. The DEBUG
// environment variable forces debug level regardless of config.
func initLogger(cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return veillog.New(veillog.Config{Level: level, JSON: cfg.LogJSON})
}

func printVersionInfo() error {
	fmt.Printf("veil v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
	return nil
}

func printHelp() {
	fmt.Println("veil - permission-filtered retrieval core")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  veil kv get <key> [--refresh]    Load a value (optionally bypassing the cache)")
	fmt.Println("  veil kv set <key> <json>         Store a JSON value")
	fmt.Println("  veil kv del <key>                Delete a value")
	fmt.Println("  veil redact [flags]              Filter a chunk list read from stdin")
	fmt.Println("  veil migrate                     Apply PostgreSQL schema migrations")
	fmt.Println("  veil version                     Show version information")
	fmt.Println("  veil help                        Show this help")
	fmt.Println()
	fmt.Println("Redact flags:")
	fmt.Println("  --access <file>        JSON file mapping object id -> bool")
	fmt.Println("  --identity <user>      Identity to resolve access for")
	fmt.Println("  --include-unlinked     Pass through chunks that have no source links")
	fmt.Println()
	fmt.Println("Configuration: ~/.veil/config.yaml, VEIL_* environment variables,")
	fmt.Println("or DATABASE_URL / REDIS_URL shortcuts.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DEBUG    Optional: force debug logging")
}
