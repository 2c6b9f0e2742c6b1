// Command behavio computes behavioral indicators from per-person
// event logs: load CSV histories, run the indicator battery, and
// export the results as CSV or JSON.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sodalab/behavio/internal/config"
	"github.com/sodalab/behavio/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "behavio",
	Short:         "behavio - behavioral indicators from event logs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(indicatorsCmd, describeCmd, sampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup initializes logging and loads the process configuration,
// shared by every subcommand.
func setup(ctx context.Context) (*config.Config, error) {
	if err := logger.Init(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
