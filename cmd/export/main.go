package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/dataset"
	"github.com/jwebster45206/ml-interface/internal/logger"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
)

// dumpCollections are written by the dump command.
var dumpCollections = []string{
	telemetry.CollectionAPIOutput,
	telemetry.CollectionInput,
	telemetry.CollectionOutput,
}

const usage = `Usage: %s <command> [args]

Commands:
  dump <dir>             write stored documents to <dir>/<collection>/<id>.json
  dataset <sqlite-path>  build disposition training rows into a SQLite database
  drain                  move queued telemetry records into MongoDB
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch {
	case cmd == "dump" && len(args) == 1:
		err = dump(ctx, cfg, log, args[0])
	case cmd == "dataset" && len(args) == 1:
		err = buildDataset(ctx, cfg, log, args[0])
	case cmd == "drain" && len(args) == 0:
		err = drain(ctx, cfg, log)
	default:
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}
	if err != nil {
		log.Error("Export failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*telemetry.MongoStore, error) {
	if cfg.Telemetry.MongoDBURI == "" {
		return nil, fmt.Errorf("TELEMETRY_MONGODB_URI is not set")
	}
	return telemetry.NewMongoStore(ctx, cfg.Telemetry.MongoDBURI, cfg.Telemetry.Database, log)
}

// dump writes each collection concurrently.
func dump(ctx context.Context, cfg *config.Config, log *slog.Logger, dir string) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range dumpCollections {
		g.Go(func() error {
			target := filepath.Join(dir, name)
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}

			n := 0
			err := store.Each(gctx, name, func(id string, doc []byte) error {
				n++
				return os.WriteFile(filepath.Join(target, id+".json"), doc, 0o644)
			})
			if err != nil {
				return err
			}
			log.Info("Dumped collection", "collection", name, "documents", n, "dir", target)
			return nil
		})
	}
	return g.Wait()
}

func buildDataset(ctx context.Context, cfg *config.Config, log *slog.Logger, path string) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	convs, err := store.Conversations(ctx)
	if err != nil {
		return err
	}
	rows := dataset.BuildRows(convs, log)

	w, err := dataset.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	log.Info("Dataset written", "path", path, "rows", len(rows), "skipped", len(convs)-len(rows))
	return nil
}

func drain(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Telemetry.RedisURL == "" {
		return fmt.Errorf("TELEMETRY_REDIS_URL is not set")
	}
	queue, err := telemetry.NewRedisQueue(ctx, cfg.Telemetry.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := queue.Drain(ctx, store.Send)
	log.Info("Drained telemetry queue", "records", n)
	return err
}
