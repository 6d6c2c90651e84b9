package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/ml-interface/internal/backend"
	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/logger"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// logFileEnv names an optional file for console logs. The terminal belongs to
// the UI, so logs are discarded otherwise.
const logFileEnv = "CONSOLE_LOG_FILE"

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <backend> <snapshot.json>\n", os.Args[0])
		os.Exit(1)
	}
	name, path := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if p := os.Getenv(logFileEnv); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	log := logger.WithInvocationID(logger.New(cfg, logOut), uuid.NewString())

	s, err := snapshot.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	sink := telemetry.Open(ctx, cfg.Telemetry, log)
	if sink != nil {
		defer func() { _ = sink.Close() }()
	}

	b, err := backend.DefaultRegistry().Create(ctx, name, backend.Deps{
		Config:    cfg,
		Logger:    log,
		Telemetry: sink,
		Rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Stderr:    io.Discard,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	r, ok := b.(backend.Responder)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: backend %s cannot answer an in-memory snapshot\n", name)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(ctx, name, r, s),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
