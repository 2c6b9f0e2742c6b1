// Package record contains the event records the indicator engine
// operates on. A Record is an immutable value describing one
// interaction or mobility sample; records belonging to one person are
// always processed in non-decreasing time order.
package record

import (
	"fmt"
	"time"
)

// Interaction is the kind of event a record describes.
type Interaction string

// Known interaction kinds.
const (
	Call     Interaction = "call"
	Text     Interaction = "text"
	Physical Interaction = "physical"
	Screen   Interaction = "screen"
	Stop     Interaction = "stop"
)

// Known returns whether k is one of the recognized interaction kinds.
func (k Interaction) Known() bool {
	switch k {
	case Call, Text, Physical, Screen, Stop:
		return true
	}
	return false
}

// HasDirection reports whether records of this kind carry a direction.
func (k Interaction) HasDirection() bool {
	switch k {
	case Call, Text, Physical:
		return true
	}
	return false
}

// HasDuration reports whether records of this kind carry a duration.
func (k Interaction) HasDuration() bool {
	switch k {
	case Call, Screen, Stop:
		return true
	}
	return false
}

// Direction of an interaction, from the owning person's perspective.
type Direction string

// Directions. Screen and stop records carry no direction.
const (
	In  Direction = "in"
	Out Direction = "out"
)

// Position references the place a record was observed at. It holds
// either a place identifier, resolved lazily against the person's
// place lookup table, or raw coordinates.
type Position struct {
	Place       string
	Lat, Lon    float64
	HasLocation bool
}

// IsZero reports whether the position carries no information.
func (p Position) IsZero() bool {
	return p.Place == "" && !p.HasLocation
}

func (p Position) String() string {
	switch {
	case p.Place != "" && p.HasLocation:
		return fmt.Sprintf("place=%s (%.5f,%.5f)", p.Place, p.Lat, p.Lon)
	case p.Place != "":
		return "place=" + p.Place
	case p.HasLocation:
		return fmt.Sprintf("(%.5f,%.5f)", p.Lat, p.Lon)
	}
	return "unknown"
}

// Record is one timestamped interaction or mobility sample. Two
// records are equal iff all attributes match, which the loader relies
// on to collapse exact duplicates.
type Record struct {
	Interaction   Interaction
	Direction     Direction
	Correspondent string
	Time          time.Time
	Duration      int // seconds; meaningful for call, screen and stop
	Position      Position

	// Key is the grouping key, fixed at construction: the
	// correspondent for interaction records, the place identifier
	// for stop records.
	Key string
}

// New builds a record and fixes its grouping key.
func New(kind Interaction, dir Direction, correspondent string, t time.Time, duration int, pos Position) Record {
	r := Record{
		Interaction:   kind,
		Direction:     dir,
		Correspondent: correspondent,
		Time:          t,
		Duration:      duration,
		Position:      pos,
	}
	r.Key = groupKey(r)
	return r
}

func groupKey(r Record) string {
	if r.Correspondent != "" {
		return r.Correspondent
	}
	return r.Position.Place
}

// Equal reports attribute-wise equality.
func (r Record) Equal(o Record) bool {
	return r.Interaction == o.Interaction &&
		r.Direction == o.Direction &&
		r.Correspondent == o.Correspondent &&
		r.Time.Equal(o.Time) &&
		r.Duration == o.Duration &&
		r.Position == o.Position
}

// Validate checks the record against the per-kind field contract.
func (r Record) Validate() error {
	if !r.Interaction.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownInteraction, string(r.Interaction))
	}
	if r.Time.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrInvalidRecord)
	}
	if r.Interaction.HasDirection() {
		if r.Direction != In && r.Direction != Out {
			return fmt.Errorf("%w: %s record needs a direction", ErrInvalidRecord, r.Interaction)
		}
	}
	if r.Interaction.HasDuration() && r.Duration < 0 {
		return fmt.Errorf("%w: %s record needs a non-negative duration", ErrInvalidRecord, r.Interaction)
	}
	return nil
}

// ValidateAll checks every record and the chronological ordering the
// engine assumes. It fails fast on the first violation.
func ValidateAll(recs []Record) error {
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if i > 0 && r.Time.Before(recs[i-1].Time) {
			return fmt.Errorf("%w: record %d precedes record %d", ErrNotChronological, i, i-1)
		}
	}
	return nil
}

// Dedupe collapses exact duplicate records, preserving order, and
// returns the number of duplicates removed. The input must be sorted
// by time; only runs of equal-timestamp records can hold duplicates,
// so a single pass with a small window suffices.
func Dedupe(recs []Record) ([]Record, int) {
	if len(recs) == 0 {
		return recs, 0
	}
	out := make([]Record, 0, len(recs))
	removed := 0
	for _, r := range recs {
		dup := false
		for j := len(out) - 1; j >= 0 && out[j].Time.Equal(r.Time); j-- {
			if out[j].Equal(r) {
				dup = true
				break
			}
		}
		if dup {
			removed++
			continue
		}
		out = append(out, r)
	}
	return out, removed
}
