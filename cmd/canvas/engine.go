package main

import (
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/oliver-os/canvas"
	"github.com/oliver-os/canvas/internal/config"
	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/adapters/file"
	redisAdapter "github.com/oliver-os/canvas/pkg/adapters/redis"
)

// newEngine builds an engine from the persistent flags and the
// environment. Every command shares this wiring.
func newEngine(cmd *cobra.Command, extra ...canvas.Option) (*canvas.Engine, config.Config, *slog.Logger, error) {
	registryPath, _ := cmd.Flags().GetString("registry")
	assetsDir, _ := cmd.Flags().GetString("assets")

	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	loader, err := file.NewLoader(registryPath)
	if err != nil {
		return nil, cfg, logger, fmt.Errorf("failed to open registry %s: %w", registryPath, err)
	}

	opts := []canvas.Option{
		canvas.WithRegistry(loader),
		canvas.WithFetcher(file.NewFetcher(assetsDir)),
		canvas.WithLogger(logger),
		canvas.WithCacheCapacity(cfg.CacheCapacity),
		canvas.WithConcurrency(cfg.LoadConcurrency),
		canvas.WithGridSnap(cfg.GridEnabled, cfg.GridSpacing),
	}
	if cfg.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: cfg.RedisAddr})
		opts = append(opts, canvas.WithEventSink(
			redisAdapter.NewSink(client, redisAdapter.WithChannel(cfg.RedisChannel)),
		))
	}
	opts = append(opts, extra...)

	eng, err := canvas.New(opts...)
	if err != nil {
		return nil, cfg, logger, err
	}
	return eng, cfg, logger, nil
}
