package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sodalab/behavio/internal/load"
	"github.com/sodalab/behavio/internal/sample"
)

var (
	sampleSeed     int64
	sampleDays     int
	sampleContacts int
	sampleOutput   string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Emit a synthetic record CSV for demos and smoke tests",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

func init() {
	defaults := sample.DefaultConfig()
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", defaults.Seed, "Random seed; same seed, same history")
	sampleCmd.Flags().IntVar(&sampleDays, "days", defaults.Days, "Number of days to span")
	sampleCmd.Flags().IntVar(&sampleContacts, "contacts", defaults.Contacts, "Size of the contact circle")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "Output file (default stdout)")
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := setup(ctx); err != nil {
		return err
	}

	cfg := sample.DefaultConfig()
	cfg.Seed = sampleSeed
	cfg.Days = sampleDays
	cfg.Contacts = sampleContacts

	gen := sample.New(sample.WithConfig(cfg))
	recs := gen.Records(ctx)

	out := os.Stdout
	if sampleOutput != "" {
		f, err := os.Create(sampleOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return load.WriteRecords(out, recs)
}
