// Package group implements the temporal/categorical grouping engine:
// it partitions a chronological event stream along the calendar-week,
// weekday/weekend, day/night and interaction-subset axes, applies an
// indicator function to each partition, and reassembles the results
// into a nested mapping.
package group

import (
	"fmt"
	"sort"
	"time"

	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
)

// Axis labels used as keys in the nested result.
const (
	AllWeek = "allweek"
	Weekday = "weekday"
	Weekend = "weekend"
	AllDay  = "allday"
	Day     = "day"
	Night   = "night"
)

// Subset names an interaction-kind selection an indicator operates
// on. A subset with one kind is that kind's own partition; a subset
// with several kinds is a combined stream (e.g. callandtext), kept
// interleaved in time order.
type Subset struct {
	Label string
	Kinds []record.Interaction
}

// Kind builds the single-kind subset labelled by the kind itself.
func Kind(k record.Interaction) Subset {
	return Subset{Label: string(k), Kinds: []record.Interaction{k}}
}

// Combined builds a multi-kind subset under one label.
func Combined(label string, kinds ...record.Interaction) Subset {
	return Subset{Label: label, Kinds: kinds}
}

func (s Subset) matches(k record.Interaction) bool {
	for _, kind := range s.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Func computes an indicator over one partition's records. The user
// argument is nil unless the descriptor declares NeedsUser. Functions
// are pure: no shared state, no side effects, never called on empty
// partitions.
type Func func(recs []record.Record, u *user.User) Value

// Descriptor declares an indicator to the engine: its reporting name,
// the interaction subsets it is computed over, and whether it needs
// the person-level configuration.
type Descriptor struct {
	Name      string
	Subsets   []Subset
	NeedsUser bool
	Compute   Func
}

// Labels returns the subset labels in declaration order.
func (d Descriptor) Labels() []string {
	labels := make([]string, len(d.Subsets))
	for i, s := range d.Subsets {
		labels[i] = s.Label
	}
	return labels
}

// Result is the nested indicator output:
// {week start date or "allweek"} -> {"allweek"/"weekday"/"weekend"} ->
// {"allday"/"day"/"night"} -> {subset label} -> Value.
// Only the axis labels enabled by the evaluation options are present;
// the un-split views ("allweek", "allday") always are.
type Result map[string]map[string]map[string]map[string]Value

// Single returns the fully-unsplit value for one subset label, the
// scalar view callers use when grouping is disabled.
func (r Result) Single(label string) Value {
	return r[AllWeek][AllWeek][AllDay][label]
}

// WeekKeys returns the week-bin keys in ascending date order,
// excluding the "allweek" aggregate.
func (r Result) WeekKeys() []string {
	var keys []string
	for k := range r {
		if k != AllWeek {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// GroupBy selects the week axis mode.
type GroupBy int

const (
	// None disables week binning; only the "allweek" aggregate is
	// produced.
	None GroupBy = iota
	// ByWeek bins records by ISO calendar week, keyed by the date
	// of the week's Monday, in addition to the aggregate.
	ByWeek
)

type options struct {
	groupBy   GroupBy
	splitWeek bool
	splitDay  bool
}

// Option configures an evaluation.
type Option func(*options)

// WithGroupBy sets the week axis mode.
func WithGroupBy(g GroupBy) Option { return func(o *options) { o.groupBy = g } }

// WithSplitWeek also computes each partition restricted to weekdays
// and to the weekend.
func WithSplitWeek(v bool) Option { return func(o *options) { o.splitWeek = v } }

// WithSplitDay also computes each partition restricted to day and to
// night, per the person's night window.
func WithSplitDay(v bool) Option { return func(o *options) { o.splitDay = v } }

// WeekStart returns the Monday of t's ISO week, at midnight in t's
// location.
func WeekStart(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -back)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// WeekKey is the nested-result key for t's week bin.
func WeekKey(t time.Time) string { return WeekStart(t).Format("2006-01-02") }

// WeekCount returns the number of distinct calendar weeks the records
// span. The battery warns when week grouping is requested over a
// single week.
func WeekCount(recs []record.Record) int {
	weeks := make(map[string]bool)
	for _, r := range recs {
		weeks[WeekKey(r.Time)] = true
	}
	return len(weeks)
}

// Evaluate runs one indicator through the grouping engine and
// reassembles the nested result. Records are assumed validated and in
// chronological order. Partitions with no matching records yield the
// no-data value without invoking the function.
func Evaluate(u *user.User, d Descriptor, opts ...Option) (Result, error) {
	if d.Compute == nil {
		return nil, fmt.Errorf("%w: %q", ErrNilCompute, d.Name)
	}
	if len(d.Subsets) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSubsets, d.Name)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %q", ErrNilUser, d.Name)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	result := make(Result)
	for _, subset := range d.Subsets {
		filtered := filterKinds(u.Records(), subset)

		for week, wrecs := range weekBins(filtered, o.groupBy) {
			for part, precs := range weekParts(wrecs, u, o.splitWeek) {
				for daypart, drecs := range dayParts(precs, u, o.splitDay) {
					setLeaf(result, week, part, daypart, subset.Label, evalLeaf(d, drecs, u))
				}
			}
		}
	}
	return result, nil
}

func evalLeaf(d Descriptor, recs []record.Record, u *user.User) Value {
	if len(recs) == 0 {
		return NoData()
	}
	if !d.NeedsUser {
		u = nil
	}
	return d.Compute(recs, u)
}

func filterKinds(recs []record.Record, s Subset) []record.Record {
	var out []record.Record
	for _, r := range recs {
		if s.matches(r.Interaction) {
			out = append(out, r)
		}
	}
	return out
}

// weekBins returns the "allweek" aggregate and, under ByWeek, one bin
// per calendar week that holds at least one record.
func weekBins(recs []record.Record, g GroupBy) map[string][]record.Record {
	bins := map[string][]record.Record{AllWeek: recs}
	if g != ByWeek {
		return bins
	}
	for _, r := range recs {
		key := WeekKey(r.Time)
		bins[key] = append(bins[key], r)
	}
	return bins
}

func weekParts(recs []record.Record, u *user.User, split bool) map[string][]record.Record {
	parts := map[string][]record.Record{AllWeek: recs}
	if !split {
		return parts
	}
	var weekday, weekend []record.Record
	for _, r := range recs {
		if u.IsWeekend(r.Time) {
			weekend = append(weekend, r)
		} else {
			weekday = append(weekday, r)
		}
	}
	parts[Weekday] = weekday
	parts[Weekend] = weekend
	return parts
}

func dayParts(recs []record.Record, u *user.User, split bool) map[string][]record.Record {
	parts := map[string][]record.Record{AllDay: recs}
	if !split {
		return parts
	}
	var day, night []record.Record
	for _, r := range recs {
		if u.IsNight(r.Time) {
			night = append(night, r)
		} else {
			day = append(day, r)
		}
	}
	parts[Day] = day
	parts[Night] = night
	return parts
}

func setLeaf(r Result, week, part, daypart, label string, v Value) {
	if r[week] == nil {
		r[week] = make(map[string]map[string]map[string]Value)
	}
	if r[week][part] == nil {
		r[week][part] = make(map[string]map[string]Value)
	}
	if r[week][part][daypart] == nil {
		r[week][part][daypart] = make(map[string]Value)
	}
	r[week][part][daypart][label] = v
}
