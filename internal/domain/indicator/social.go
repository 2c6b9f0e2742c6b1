package indicator

import (
	"math"
	"sort"

	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/stats"
	"github.com/sodalab/behavio/internal/domain/user"
)

// keyCounts tallies interactions per grouping key.
func keyCounts(recs []record.Record) map[string]float64 {
	counts := make(map[string]float64)
	for _, r := range recs {
		counts[r.Key]++
	}
	return counts
}

// numberOfContacts counts grouping keys with more than one
// interaction. Timed records below the duration floor do not count:
// a two-second pocket call is not contact.
func (c Config) numberOfContacts(recs []record.Record, _ *user.User) group.Value {
	counts := make(map[string]int)
	for _, r := range recs {
		if r.Interaction.HasDuration() && r.Duration <= c.MinCallDuration {
			continue
		}
		counts[r.Key]++
	}
	n := 0
	for _, v := range counts {
		if v > 1 {
			n++
		}
	}
	return group.Scalar(float64(n))
}

func numberOfInteractions(recs []record.Record, _ *user.User) group.Value {
	return group.Scalar(float64(len(recs)))
}

func numberOfInteractionsDirected(dir record.Direction) group.Func {
	return func(recs []record.Record, _ *user.User) group.Value {
		n := 0
		for _, r := range recs {
			if r.Direction == dir {
				n++
			}
		}
		return group.Scalar(float64(n))
	}
}

// entropyOfContacts is the normalized Shannon entropy of the
// per-contact (or per-place, for stops) interaction counts.
func entropyOfContacts(recs []record.Record, _ *user.User) group.Value {
	counts := keyCounts(recs)
	values := make([]float64, 0, len(counts))
	for _, v := range counts {
		values = append(values, v)
	}
	return group.Scalar(stats.EntropyNormalized(values))
}

// interactionsPerContact is the ratio of distinct grouping keys to
// total interactions.
func interactionsPerContact(recs []record.Record, _ *user.User) group.Value {
	return group.Scalar(float64(len(keyCounts(recs))) / float64(len(recs)))
}

// balanceOfInteractions is the outgoing share of all directed
// interactions in the partition.
func balanceOfInteractions(recs []record.Record, _ *user.User) group.Value {
	out := 0
	for _, r := range recs {
		if r.Direction == record.Out {
			out++
		}
	}
	return group.Scalar(float64(out) / float64(len(recs)))
}

// paretoShare returns the fraction of grouping keys needed to cover
// the target share of the total mass. Keys are taken largest mass
// first; equal masses are broken by key, larger identifiers first, so
// the result does not depend on map iteration order.
func paretoShare(mass map[string]float64, percentage float64) group.Value {
	if len(mass) == 0 {
		return group.NoData()
	}
	keys := make([]string, 0, len(mass))
	var total float64
	for k, m := range mass {
		keys = append(keys, k)
		total += m
	}
	sort.Slice(keys, func(i, j int) bool {
		if mass[keys[i]] != mass[keys[j]] {
			return mass[keys[i]] > mass[keys[j]]
		}
		return keys[i] > keys[j]
	})

	target := math.Ceil(total * percentage)
	taken := 0
	for _, k := range keys {
		if target <= 0 {
			break
		}
		target -= mass[k]
		taken++
	}
	return group.Scalar(float64(taken) / float64(len(mass)))
}

// paretoInteractions: share of contacts accounting for the target
// percentage of interactions.
func (c Config) paretoInteractions(recs []record.Record, _ *user.User) group.Value {
	return paretoShare(keyCounts(recs), c.ParetoPercentage)
}

// paretoDurations: share of contacts (or places) accounting for the
// target percentage of cumulative duration.
func (c Config) paretoDurations(recs []record.Record, _ *user.User) group.Value {
	mass := make(map[string]float64)
	for _, r := range recs {
		mass[r.Key] += float64(r.Duration)
	}
	return paretoShare(mass, c.ParetoPercentage)
}
