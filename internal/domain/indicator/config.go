// Package indicator implements the behavioral indicator functions and
// the registry of descriptors the battery feeds to the grouping
// engine. Every function is a pure reduction over one partition's
// records; degenerate inputs produce the no-data value, never a panic.
package indicator

import "time"

// Default tuning constants. The near-duplicate variants in deployed
// pipelines differ only in these values, so they live in configuration
// rather than in forked functions.
const (
	DefaultTimeout           = time.Hour
	DefaultPhysicalTimeout   = 5 * time.Minute
	DefaultAnsweredThreshold = 1
	DefaultParetoPercentage  = 0.8
	DefaultMinCallDuration   = 5
	DefaultContactCutoff     = 1
)

// Config carries the tunable constants shared by the indicator set.
type Config struct {
	// Timeout is the conversation inactivity timeout for call and
	// text streams.
	Timeout time.Duration

	// PhysicalTimeout is the tighter timeout used when segmenting
	// physical co-presence events into sessions.
	PhysicalTimeout time.Duration

	// AnsweredThreshold is the call duration (seconds) above which
	// a call counts as answered.
	AnsweredThreshold int

	// ParetoPercentage is the mass target of the concentration
	// indicators.
	ParetoPercentage float64

	// MinCallDuration is the duration floor below which a timed
	// record does not count toward a contact's interaction tally.
	MinCallDuration int

	// ContactCutoff is the conversation-count ceiling for the
	// rarely-seen-contacts indicator.
	ContactCutoff int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Timeout:           DefaultTimeout,
		PhysicalTimeout:   DefaultPhysicalTimeout,
		AnsweredThreshold: DefaultAnsweredThreshold,
		ParetoPercentage:  DefaultParetoPercentage,
		MinCallDuration:   DefaultMinCallDuration,
		ContactCutoff:     DefaultContactCutoff,
	}
}
