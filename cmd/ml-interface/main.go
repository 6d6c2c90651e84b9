package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jwebster45206/ml-interface/internal/backend"
	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/logger"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		_, _ = fmt.Fprintf(stderr, "Usage: %s <backend> <input.json>\n", args[0])
		return 1
	}
	// The backend is resolved before the input is looked at, so a missing
	// path surfaces as a file error.
	name, path := args[1], ""
	if len(args) > 2 {
		path = args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log := logger.WithInvocationID(logger.Setup(cfg), uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := telemetry.Open(ctx, cfg.Telemetry, log)
	if sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				log.Warn("Error closing telemetry", "error", err)
			}
		}()
	}

	deps := backend.Deps{
		Config:    cfg,
		Logger:    log,
		Telemetry: sink,
		Rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Stderr:    stderr,
	}

	b, err := backend.DefaultRegistry().Create(ctx, name, deps)
	if errors.Is(err, backend.ErrBackendNotRegistered) {
		_, _ = fmt.Fprintf(stderr, "Error: backend %s not found\n%v\n", name, err)
		return 1
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log.Debug("Running backend", "backend", name, "input", path)
	out, err := b.Predict(ctx, path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintln(stdout, out)
	return 0
}
