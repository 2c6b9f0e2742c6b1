// Package config defines process configuration and loading.
//
// Conventions:
//   - Defaults come from New; Load layers an optional YAML file and
//     environment variables on top.
//   - External errors are wrapped via this package's sentinel values.
package config

import (
	"time"

	"github.com/sodalab/behavio/internal/domain/indicator"
	"github.com/sodalab/behavio/internal/domain/user"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GroupBy selects the week axis: "week" or "none".
	GroupBy string `koanf:"groupby"`

	// SplitWeek also computes indicators for weekday/weekend.
	SplitWeek bool `koanf:"split_week"`

	// SplitDay also computes indicators for day/night.
	SplitDay bool `koanf:"split_day"`

	// NightStart and NightEnd bound the nocturnal window (HH:MM).
	// A start after the end wraps past midnight.
	NightStart string `koanf:"night_start"`
	NightEnd   string `koanf:"night_end"`

	// Weekend lists weekend days as 1..7 with 1 = Monday.
	Weekend []int `koanf:"weekend"`

	// ConversationTimeoutS is the inactivity timeout, in seconds,
	// that splits call/text conversations.
	ConversationTimeoutS int `koanf:"conversation_timeout_s"`

	// PhysicalTimeoutS is the tighter timeout for physical
	// co-presence sessions.
	PhysicalTimeoutS int `koanf:"physical_timeout_s"`

	// AnsweredThresholdS is the call duration above which a call
	// counts as answered.
	AnsweredThresholdS int `koanf:"answered_threshold_s"`

	// ParetoPercentage is the mass target of the concentration
	// indicators.
	ParetoPercentage float64 `koanf:"pareto_percentage"`

	// ExportDigits is the float precision of CSV exports.
	ExportDigits int `koanf:"export_digits"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		GroupBy:              "week",
		SplitWeek:            false,
		SplitDay:             false,
		NightStart:           user.DefaultNightStart.String(),
		NightEnd:             user.DefaultNightEnd.String(),
		Weekend:              []int{6, 7},
		ConversationTimeoutS: int(indicator.DefaultTimeout / time.Second),
		PhysicalTimeoutS:     int(indicator.DefaultPhysicalTimeout / time.Second),
		AnsweredThresholdS:   indicator.DefaultAnsweredThreshold,
		ParetoPercentage:     indicator.DefaultParetoPercentage,
		ExportDigits:         5,
	}
}

// IndicatorConfig maps the process configuration onto the indicator
// tuning.
func (c *Config) IndicatorConfig() indicator.Config {
	ic := indicator.DefaultConfig()
	if c.ConversationTimeoutS > 0 {
		ic.Timeout = time.Duration(c.ConversationTimeoutS) * time.Second
	}
	if c.PhysicalTimeoutS > 0 {
		ic.PhysicalTimeout = time.Duration(c.PhysicalTimeoutS) * time.Second
	}
	if c.AnsweredThresholdS > 0 {
		ic.AnsweredThreshold = c.AnsweredThresholdS
	}
	if c.ParetoPercentage > 0 && c.ParetoPercentage <= 1 {
		ic.ParetoPercentage = c.ParetoPercentage
	}
	return ic
}

// UserOptions maps the process configuration onto per-person options.
func (c *Config) UserOptions() ([]user.Option, error) {
	start, err := user.ParseClock(c.NightStart)
	if err != nil {
		return nil, err
	}
	end, err := user.ParseClock(c.NightEnd)
	if err != nil {
		return nil, err
	}
	weekend, err := user.ParseWeekend(c.Weekend)
	if err != nil {
		return nil, err
	}
	return []user.Option{
		user.WithNightWindow(start, end),
		user.WithWeekend(weekend...),
	}, nil
}
