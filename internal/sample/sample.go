// Package sample generates synthetic event histories, used to
// exercise the indicator battery without real data and to seed demo
// CSV files.
package sample

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
	"github.com/sodalab/behavio/pkg/logger"
)

// Generation ranges.
const (
	callDurationMin   = 5
	callDurationRange = 900
	stopDurationMin   = 600
	stopDurationRange = 6 * 3600
	screenSessionMin  = 10
	screenSessionMax  = 1200
	eventsPerDayMin   = 4
	eventsPerDayRange = 16
)

// Place labels the generator draws stops from.
var samplePlaces = []string{"home", "campus", "supermarket", "friday bar", "gym"}

// Config tunes a generation run.
type Config struct {
	Seed     int64
	Days     int
	Contacts int
	Start    time.Time
}

// DefaultConfig spans six weeks with a small contact circle, enough
// for week grouping to produce several bins.
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		Days:     42,
		Contacts: 8,
		Start:    time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
	}
}

// Generator produces reproducible synthetic histories.
type Generator struct {
	cfg Config
	rng *rand.Rand
	log logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithConfig replaces the generation parameters.
func WithConfig(c Config) Option {
	return func(g *Generator) { g.cfg = c }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a generator. The same seed always yields the same
// history.
func New(opts ...Option) *Generator {
	g := &Generator{
		cfg: DefaultConfig(),
		log: logger.Get(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rng = rand.New(rand.NewSource(g.cfg.Seed))
	return g
}

// Records generates a chronological synthetic history mixing every
// interaction kind.
func (g *Generator) Records(ctx context.Context) []record.Record {
	// Contact ids are drawn from the seeded source so a seed fully
	// determines the history.
	contacts := make([]string, g.cfg.Contacts)
	for i := range contacts {
		id, err := uuid.NewRandomFromReader(g.rng)
		if err != nil {
			id = uuid.Nil
		}
		contacts[i] = id.String()
	}

	var recs []record.Record
	for day := 0; day < g.cfg.Days; day++ {
		dayStart := g.cfg.Start.AddDate(0, 0, day)
		n := eventsPerDayMin + g.rng.Intn(eventsPerDayRange)
		for i := 0; i < n; i++ {
			t := dayStart.Add(time.Duration(g.rng.Intn(24*3600)) * time.Second)
			recs = append(recs, g.event(t, contacts))
		}
		// Nights mostly spent at one place, so home detection has
		// something to vote on.
		recs = append(recs, g.nightStop(dayStart))
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })
	g.log.Info(ctx, "generated synthetic history",
		logger.Int("records", len(recs)), logger.Int("days", g.cfg.Days))
	return recs
}

// User wraps a generated history in a ready person, named after the
// seed.
func (g *Generator) User(ctx context.Context) (*user.User, error) {
	u := user.New(fmt.Sprintf("sample-%d", g.cfg.Seed))
	if err := u.SetRecords(g.Records(ctx)); err != nil {
		return nil, err
	}
	return u, nil
}

func (g *Generator) event(t time.Time, contacts []string) record.Record {
	contact := contacts[g.rng.Intn(len(contacts))]
	dir := record.In
	if g.rng.Intn(2) == 1 {
		dir = record.Out
	}

	switch g.rng.Intn(10) {
	case 0, 1, 2:
		d := callDurationMin + g.rng.Intn(callDurationRange)
		return record.New(record.Call, dir, contact, t, d, record.Position{})
	case 3, 4, 5, 6:
		return record.New(record.Text, dir, contact, t, 0, record.Position{})
	case 7:
		return record.New(record.Physical, dir, contact, t, 0, record.Position{})
	case 8:
		d := screenSessionMin + g.rng.Intn(screenSessionMax-screenSessionMin)
		return record.New(record.Screen, "", "", t, d, record.Position{})
	default:
		place := samplePlaces[g.rng.Intn(len(samplePlaces))]
		d := stopDurationMin + g.rng.Intn(stopDurationRange)
		return record.New(record.Stop, "", "", t, d, record.Position{Place: place})
	}
}

func (g *Generator) nightStop(dayStart time.Time) record.Record {
	t := dayStart.Add(23*time.Hour + time.Duration(g.rng.Intn(3600))*time.Second)
	d := stopDurationMin + g.rng.Intn(stopDurationRange)
	return record.New(record.Stop, "", "", t, d, record.Position{Place: "home"})
}
