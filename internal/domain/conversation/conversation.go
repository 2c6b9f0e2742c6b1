// Package conversation groups a per-correspondent, time-ordered event
// sequence into conversations: maximal runs of temporally adjacent
// exchanges, bounded by an inactivity timeout and a call rule.
package conversation

import (
	"time"

	"github.com/sodalab/behavio/internal/domain/record"
)

// Policy selects the call-boundary rule.
type Policy int

const (
	// CallInclusive appends calls like any other record, but an
	// answered call (duration above the threshold) immediately
	// closes and emits the conversation.
	CallInclusive Policy = iota

	// CallExcludes closes the open conversation on any call and
	// discards the call itself; the next conversation starts empty.
	CallExcludes
)

// Segmentation defaults.
const (
	DefaultTimeout           = time.Hour
	DefaultAnsweredThreshold = 1 // seconds; a longer call counts as answered
)

type config struct {
	timeout   time.Duration
	policy    Policy
	threshold int
}

// Option configures a segmentation run.
type Option func(*config)

// WithTimeout sets the inactivity timeout that splits conversations.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPolicy sets the call-boundary policy.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithAnsweredThreshold sets the call duration (seconds) above which
// a call counts as answered under the call-inclusive policy.
func WithAnsweredThreshold(seconds int) Option {
	return func(c *config) { c.threshold = seconds }
}

// Segment splits records for one correspondent into conversations.
// The input must be in non-decreasing time order. Emitted
// conversations are never empty; the gap comparison is strict, so a
// gap of exactly the timeout starts a new conversation.
func Segment(recs []record.Record, opts ...Option) [][]record.Record {
	cfg := config{
		timeout:   DefaultTimeout,
		policy:    CallInclusive,
		threshold: DefaultAnsweredThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.policy == CallExcludes {
		return segmentExcluding(recs, cfg)
	}
	return segmentInclusive(recs, cfg)
}

func segmentInclusive(recs []record.Record, cfg config) [][]record.Record {
	var out [][]record.Record
	var open []record.Record
	var last time.Time
	haveLast := false

	for _, r := range recs {
		if !haveLast || r.Time.Sub(last) < cfg.timeout {
			open = append(open, r)
			if r.Interaction == record.Call && r.Duration > cfg.threshold {
				out = append(out, open)
				open = nil
			}
		} else {
			if len(open) > 0 {
				out = append(out, open)
			}
			open = []record.Record{r}
		}
		last = r.Time
		haveLast = true
	}
	if len(open) > 0 {
		out = append(out, open)
	}
	return out
}

func segmentExcluding(recs []record.Record, cfg config) [][]record.Record {
	var out [][]record.Record
	var open []record.Record
	var last time.Time
	haveLast := false

	for _, r := range recs {
		if !haveLast || r.Time.Sub(last) < cfg.timeout {
			if r.Interaction != record.Call {
				open = append(open, r)
			} else if len(open) > 0 {
				// A call always ends the conversation and is
				// itself discarded.
				out = append(out, open)
				open = nil
			}
		} else {
			if len(open) > 0 {
				out = append(out, open)
			}
			if r.Interaction == record.Call {
				open = nil
			} else {
				open = []record.Record{r}
			}
		}
		last = r.Time
		haveLast = true
	}
	if len(open) > 0 {
		out = append(out, open)
	}
	return out
}

// ByKey groups records by their grouping key, preserving record order
// inside each group and returning keys in first-seen order. Most
// indicators segment each group independently.
func ByKey(recs []record.Record) (keys []string, groups map[string][]record.Record) {
	groups = make(map[string][]record.Record)
	for _, r := range recs {
		if _, seen := groups[r.Key]; !seen {
			keys = append(keys, r.Key)
		}
		groups[r.Key] = append(groups[r.Key], r)
	}
	return keys, groups
}
