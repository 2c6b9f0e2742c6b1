package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sodalab/behavio/internal/battery"
	"github.com/sodalab/behavio/internal/config"
	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/export"
	"github.com/sodalab/behavio/internal/load"
	"github.com/sodalab/behavio/pkg/logger"
)

var (
	placesFlag string
	outputFlag string
	formatFlag string
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators <records.csv> [more-records.csv ...]",
	Short: "Run the indicator battery over one record file per person",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndicators,
}

func init() {
	indicatorsCmd.Flags().StringVar(&placesFlag, "places", "", "Place table CSV (place_id,label)")
	indicatorsCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default stdout)")
	indicatorsCmd.Flags().StringVar(&formatFlag, "format", "", "Output format: csv or json (default from output extension)")
}

func runIndicators(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}

	svc := batteryService(cfg)
	userOpts, err := cfg.UserOptions()
	if err != nil {
		return err
	}

	reports := make([]*battery.Report, 0, len(args))
	for _, path := range args {
		name := personName(path)
		u, ignored, err := load.User(ctx, name, path, placesFlag, userOpts...)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		rep, err := svc.Run(ctx, u)
		if err != nil {
			return fmt.Errorf("compute %s: %w", name, err)
		}
		rep.Reporting.Ignored = ignored.Map()
		if failed := rep.Failed(); len(failed) > 0 {
			logger.Get().Warn(ctx, "indicators failed",
				logger.String("user", name), logger.Any("indicators", failed))
		}
		reports = append(reports, rep)
	}

	out, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if format == "json" {
		return export.ToJSON(out, reports)
	}
	return export.ToCSV(out, reports, cfg.ExportDigits)
}

// batteryService maps process configuration onto a battery service.
func batteryService(cfg *config.Config) *battery.Service {
	groupBy := group.None
	if cfg.GroupBy == "week" {
		groupBy = group.ByWeek
	}
	return battery.New(
		battery.WithConfig(cfg.IndicatorConfig()),
		battery.WithGroupBy(groupBy),
		battery.WithSplitWeek(cfg.SplitWeek),
		battery.WithSplitDay(cfg.SplitDay),
	)
}

// personName derives the person identifier from the record file name.
func personName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func outputFormat() (string, error) {
	format := formatFlag
	if format == "" {
		if strings.HasSuffix(outputFlag, ".json") {
			format = "json"
		} else {
			format = "csv"
		}
	}
	if format != "csv" && format != "json" {
		return "", fmt.Errorf("unknown format %q (want csv or json)", format)
	}
	return format, nil
}

func outputWriter() (io.Writer, func(), error) {
	if outputFlag == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFlag)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
