// Package battery runs the full indicator set for one person through
// the grouping engine and assembles the ordered report. Indicator
// failures are isolated: a contract violation in one indicator is
// recorded and the rest of the battery still runs.
package battery

import (
	"context"
	"sort"
	"time"

	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/indicator"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
	"github.com/sodalab/behavio/pkg/logger"
	"github.com/sodalab/behavio/pkg/metrics"
)

// Service evaluates indicator batteries.
type Service struct {
	descriptors []group.Descriptor
	groupBy     group.GroupBy
	splitWeek   bool
	splitDay    bool
	log         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig rebuilds the standard registry with custom indicator
// tuning.
func WithConfig(c indicator.Config) Option {
	return func(s *Service) { s.descriptors = indicator.Registry(c) }
}

// WithDescriptors replaces the indicator set entirely.
func WithDescriptors(ds []group.Descriptor) Option {
	return func(s *Service) {
		if len(ds) > 0 {
			s.descriptors = ds
		}
	}
}

// WithGroupBy sets the week axis mode for every indicator.
func WithGroupBy(g group.GroupBy) Option {
	return func(s *Service) { s.groupBy = g }
}

// WithSplitWeek enables the weekday/weekend axis.
func WithSplitWeek(v bool) Option {
	return func(s *Service) { s.splitWeek = v }
}

// WithSplitDay enables the day/night axis.
func WithSplitDay(v bool) Option {
	return func(s *Service) { s.splitDay = v }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a battery service with the standard registry and week
// grouping disabled.
func New(opts ...Option) *Service {
	s := &Service{
		descriptors: indicator.Registry(indicator.DefaultConfig()),
		log:         logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reporting is the metadata block attached to every report.
type Reporting struct {
	GroupBy         string         `json:"groupby"`
	SplitWeek       bool           `json:"split_week"`
	SplitDay        bool           `json:"split_day"`
	StartTime       string         `json:"start_time"`
	EndTime         string         `json:"end_time"`
	NightStart      string         `json:"night_start"`
	NightEnd        string         `json:"night_end"`
	Weekend         []int          `json:"weekend"`
	Bins            int            `json:"bins"`
	NumberOfRecords int            `json:"number_of_records"`
	Ignored         map[string]int `json:"ignored_records,omitempty"`
}

// Result is one indicator's nested output, or the error that kept it
// from being computed.
type Result struct {
	Name   string
	Labels []string
	Values group.Result
	Err    error
}

// Report is the ordered battery output for one person.
type Report struct {
	Name      string
	Reporting Reporting
	Results   []Result
}

// Failed returns the names of indicators that could not be computed.
func (r *Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if res.Err != nil {
			names = append(names, res.Name)
		}
	}
	return names
}

const timeLayout = "2006-01-02 15:04:05"

// Run evaluates every registered indicator for the user. The returned
// error covers input contract violations only; per-indicator errors
// are carried inside the report.
func (s *Service) Run(ctx context.Context, u *user.User) (*Report, error) {
	start := time.Now()
	if err := record.ValidateAll(u.Records()); err != nil {
		return nil, err
	}

	bins := group.WeekCount(u.Records())
	if s.groupBy == group.ByWeek && bins <= 1 {
		s.log.Warn(ctx, "grouping by week, but all records fall in a single week",
			logger.String("user", u.Name))
	}

	report := &Report{
		Name:      u.Name,
		Reporting: s.reporting(u, bins),
	}

	evalOpts := []group.Option{
		group.WithGroupBy(s.groupBy),
		group.WithSplitWeek(s.splitWeek),
		group.WithSplitDay(s.splitDay),
	}
	for _, d := range s.descriptors {
		values, err := group.Evaluate(u, d, evalOpts...)
		if err != nil {
			s.log.Error(ctx, "indicator failed",
				logger.String("indicator", d.Name), logger.Error(err))
			metrics.IndicatorFailed()
			report.Results = append(report.Results, Result{Name: d.Name, Labels: d.Labels(), Err: err})
			continue
		}
		metrics.IndicatorComputed()
		report.Results = append(report.Results, Result{Name: d.Name, Labels: d.Labels(), Values: values})
	}

	metrics.PersonProcessed(time.Since(start))
	return report, nil
}

func (s *Service) reporting(u *user.User, bins int) Reporting {
	rep := Reporting{
		GroupBy:         "none",
		SplitWeek:       s.splitWeek,
		SplitDay:        s.splitDay,
		NightStart:      u.NightStart.String(),
		NightEnd:        u.NightEnd.String(),
		Bins:            bins,
		NumberOfRecords: len(u.Records()),
	}
	if s.groupBy == group.ByWeek {
		rep.GroupBy = "week"
	}
	if start, end, ok := u.Span(); ok {
		rep.StartTime = start.Format(timeLayout)
		rep.EndTime = end.Format(timeLayout)
	}
	for _, d := range u.Weekend() {
		// Report in 1..7 form (1 = Monday), as loaders configure it.
		n := int(d)
		if n == 0 {
			n = 7
		}
		rep.Weekend = append(rep.Weekend, n)
	}
	sort.Ints(rep.Weekend)
	return rep
}
