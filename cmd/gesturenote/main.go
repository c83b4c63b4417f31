// Command gesturenote captures gesture samples, builds feature datasets,
// trains the gesture classifier and runs it against a live camera.
//
// Usage:
//
//	gesturenote collect  [-camera N] [-samples N]
//	gesturenote dataset  [-data DIR] [-out FILE]
//	gesturenote train    [-dataset ID | -in FILE] [-out FILE]
//	gesturenote detect   [-model ID | -in FILE] [-camera N] [-addr ADDR]
//	gesturenote models
//
// Defaults come from GESTURENOTE_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/gesturenote/internal/config"
	"github.com/ayusman/gesturenote/internal/store"
)

var errUsage = errors.New("usage: gesturenote <collect|dataset|train|detect|models> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("gesturenote failed")
		stop()
		os.Exit(1)
	}
}

// command is one gesturenote subcommand.
type command func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error

var commands = map[string]command{
	"collect": runCollect,
	"dataset": runDataset,
	"train":   runTrain,
	"detect":  runDetect,
	"models":  runModels,
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	return cmd(ctx, cfg, args[1:], stdout)
}

// openStore opens the artifact registry at the configured path.
func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}
