// parkgate - facility gateway
//
// parkgate sits between browser clients and a third-party parking and
// EV-charging facility-management backend. It hides the backend's
// credentials and its inconsistent addressing behind one stable JSON API,
// and serves a small embedded browser console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"

	"github.com/parkgate/parkgate-core/internal/api"
	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
	"github.com/parkgate/parkgate-core/internal/merge"
	"github.com/parkgate/parkgate-core/internal/resolve"
	"github.com/parkgate/parkgate-core/internal/upstream"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments (without the program name)
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("parkgate", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file (optional)")
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("PARKGATE")); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting parkgate",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	client, err := upstream.New(cfg.Upstream, log)
	if err != nil {
		return fmt.Errorf("creating upstream client: %w", err)
	}
	log.Info("upstream client ready",
		"base_url", cfg.Upstream.BaseURL,
		"collections", len(cfg.Upstream.Collections),
	)

	resolver := resolve.New(client, cfg.Upstream.Locale, log)
	merger := merge.New(resolver, cfg, log)

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Merger:  merger,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("parkgate running",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"cache_enabled", cfg.Cache.Enabled,
	)

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// loadConfig loads the YAML config when a path is given, otherwise the
// built-in defaults with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(path)
}
