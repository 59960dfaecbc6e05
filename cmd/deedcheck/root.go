package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deedcheck/internal/app"
	"deedcheck/internal/config"
	"deedcheck/internal/logger"
)

// errRejected signals that at least one record was rejected. The details
// have already been printed.
var errRejected = errors.New("record rejected")

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deedcheck",
		Short:         "Validate and enrich recorded deed data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		validateCmd(),
		extractCmd(),
		batchCmd(),
		scoreCmd(),
		spellCmd(),
	)

	return root
}

// bootstrap loads config, builds a logger and wires the app.
func bootstrap(ctx context.Context, withExtractor bool) (*app.App, *zap.Logger, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a, err := app.Build(ctx, cfg, log, app.Options{WithExtractor: withExtractor})
	if err != nil {
		return nil, nil, nil, err
	}
	return a, log, cfg, nil
}

// readInput reads the named file, or stdin when the name is "-" or absent.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
