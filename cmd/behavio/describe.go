package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
	"github.com/sodalab/behavio/internal/load"
)

var (
	okMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Render("[x]")
	missMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("[ ]")
	nameStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var describeCmd = &cobra.Command{
	Use:   "describe <records.csv>",
	Short: "Summarize a record file: span, contacts, kinds, home detection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&placesFlag, "places", "", "Place table CSV (place_id,label)")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	userOpts, err := cfg.UserOptions()
	if err != nil {
		return err
	}

	name := personName(args[0])
	u, ignored, err := load.User(ctx, name, args[0], placesFlag, userOpts...)
	if err != nil {
		return err
	}

	fmt.Println(nameStyle.Render(name))
	for _, line := range describeLines(u, ignored) {
		fmt.Println(line)
	}
	return nil
}

func describeLines(u *user.User, ignored load.Ignored) []string {
	lines := []string{checked(len(u.Records()) > 0, recordsLine(u))}

	contacts := make(map[string]bool)
	for _, r := range u.Records() {
		if r.Correspondent != "" {
			contacts[r.Correspondent] = true
		}
	}
	lines = append(lines, checked(len(contacts) > 0, fmt.Sprintf("%d contacts", len(contacts))))

	for _, kind := range []record.Interaction{record.Call, record.Text, record.Physical, record.Screen, record.Stop} {
		lines = append(lines, checked(u.Has(kind), "has "+string(kind)+" records"))
	}

	if u.HasHome() {
		lines = append(lines, checked(true, "home detected: "+u.PlaceLabel(u.Home)))
	} else {
		lines = append(lines, checked(false, "no home detected"))
	}
	lines = append(lines, checked(len(u.Places()) > 0, fmt.Sprintf("%d labelled places", len(u.Places()))))

	if ignored.All > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("    %d records ignored at load", ignored.All)))
	}
	return lines
}

func recordsLine(u *user.User) string {
	start, end, ok := u.Span()
	if !ok {
		return "0 records"
	}
	return fmt.Sprintf("%d records from %s to %s",
		len(u.Records()), start.Format(load.TimeLayout), end.Format(load.TimeLayout))
}

func checked(ok bool, text string) string {
	mark := missMark
	if ok {
		mark = okMark
	}
	return mark + " " + text
}
