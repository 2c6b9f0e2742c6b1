// Package user holds the per-person aggregate the indicator engine is
// evaluated against: the sorted event records, the place lookup table,
// and the person-level configuration (night window, weekend day set).
package user

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sodalab/behavio/internal/domain/record"
)

// Clock is a time of day with minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ParseWeekend maps day numbers 1..7 (1 = Monday, 7 = Sunday) to
// weekdays, the numbering used in configuration files.
func ParseWeekend(days []int) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekend, d)
		}
		out = append(out, time.Weekday(d%7))
	}
	return out, nil
}

// seconds since midnight.
func (c Clock) seconds() int { return c.Hour*3600 + c.Minute*60 }

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// Defaults for the person-level configuration.
var (
	DefaultNightStart = Clock{Hour: 22}
	DefaultNightEnd   = Clock{Hour: 7}
	DefaultWeekend    = []time.Weekday{time.Saturday, time.Sunday}
)

// homeBin is the chunk size used when voting for the home place over
// nocturnal stop records.
const homeBin = 30 * time.Minute

// User is one person's event history and configuration. Records are
// read-only once set; all indicator computation works on independent
// views of the slice.
type User struct {
	Name string

	records []record.Record
	places  map[string]string // place id -> label

	NightStart Clock
	NightEnd   Clock
	weekend    map[time.Weekday]bool

	// Home is the inferred home place identifier, empty when no
	// nocturnal stop records exist to vote with.
	Home string
}

// Option configures a User.
type Option func(*User)

// WithNightWindow overrides the night window. A start after the end
// means the window wraps past midnight.
func WithNightWindow(start, end Clock) Option {
	return func(u *User) {
		u.NightStart = start
		u.NightEnd = end
	}
}

// WithWeekend overrides the weekend day set.
func WithWeekend(days ...time.Weekday) Option {
	return func(u *User) {
		if len(days) == 0 {
			return
		}
		u.weekend = make(map[time.Weekday]bool, len(days))
		for _, d := range days {
			u.weekend[d] = true
		}
	}
}

// WithPlaces sets the place lookup table (identifier -> label).
func WithPlaces(places map[string]string) Option {
	return func(u *User) {
		u.places = places
	}
}

// New creates a user with default configuration.
func New(name string, opts ...Option) *User {
	u := &User{
		Name:       name,
		NightStart: DefaultNightStart,
		NightEnd:   DefaultNightEnd,
		weekend:    map[time.Weekday]bool{time.Saturday: true, time.Sunday: true},
		places:     map[string]string{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SetRecords validates and installs the person's event history. The
// input is sorted stably by timestamp before validation, so callers
// may hand over per-source slices in any interleaving; per-record
// contract violations still fail fast.
func (u *User) SetRecords(recs []record.Record) error {
	sorted := make([]record.Record, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	if err := record.ValidateAll(sorted); err != nil {
		return err
	}
	u.records = sorted
	u.RecomputeHome()
	return nil
}

// Records returns the sorted event history. Callers must not modify
// the returned slice.
func (u *User) Records() []record.Record { return u.records }

// Span returns the timestamps of the first and last record.
func (u *User) Span() (start, end time.Time, ok bool) {
	if len(u.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return u.records[0].Time, u.records[len(u.records)-1].Time, true
}

// Has reports whether any record of the given kind is present.
func (u *User) Has(kind record.Interaction) bool {
	for _, r := range u.records {
		if r.Interaction == kind {
			return true
		}
	}
	return false
}

// Weekend returns the configured weekend days in week order.
func (u *User) Weekend() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if u.weekend[d] {
			days = append(days, d)
		}
	}
	return days
}

// IsWeekend classifies a timestamp against the weekend day set.
func (u *User) IsWeekend(t time.Time) bool { return u.weekend[t.Weekday()] }

// IsNight classifies a timestamp against the night window. A window
// with start < end selects times strictly inside (start, end); a
// wrapped window (start > end) selects everything outside [end, start].
func (u *User) IsNight(t time.Time) bool {
	s := secondsOfDay(t)
	start, end := u.NightStart.seconds(), u.NightEnd.seconds()
	if start < end {
		return s > start && s < end
	}
	return !(s > end && s < start)
}

// PlaceLabel resolves a place identifier to its label, falling back
// to the identifier itself when the lookup table has no entry.
func (u *User) PlaceLabel(id string) string {
	if label, ok := u.places[id]; ok {
		return label
	}
	return id
}

// Places returns the place lookup table.
func (u *User) Places() map[string]string { return u.places }

// RecomputeHome infers the home place: the place with the most
// 30-minute nocturnal bins across stop records. Binning keeps a long
// stay from being outvoted by many short samples elsewhere.
func (u *User) RecomputeHome() string {
	type bin struct {
		place string
		slot  int64
	}
	votes := make(map[string]int)
	seen := make(map[bin]bool)
	for _, r := range u.records {
		if r.Interaction != record.Stop || r.Position.Place == "" {
			continue
		}
		if !u.IsNight(r.Time) {
			continue
		}
		b := bin{place: r.Position.Place, slot: r.Time.Unix() / int64(homeBin/time.Second)}
		if seen[b] {
			continue
		}
		seen[b] = true
		votes[r.Position.Place]++
	}

	best, bestVotes := "", 0
	for place, n := range votes {
		if n > bestVotes || (n == bestVotes && place < best) {
			best, bestVotes = place, n
		}
	}
	u.Home = best
	return best
}

// HasHome reports whether a home place has been inferred.
func (u *User) HasHome() bool { return u.Home != "" }
