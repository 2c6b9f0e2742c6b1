package indicator

import (
	"time"

	"github.com/sodalab/behavio/internal/domain/conversation"
	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/stats"
	"github.com/sodalab/behavio/internal/domain/user"
)

// segment runs the call-inclusive segmenter with this configuration's
// timeout for the given stream.
func (c Config) segment(recs []record.Record, timeout time.Duration) [][]record.Record {
	return conversation.Segment(recs,
		conversation.WithTimeout(timeout),
		conversation.WithAnsweredThreshold(c.AnsweredThreshold),
	)
}

// responseRate: among conversations opened by an incoming text, the
// fraction the person answered with at least one outgoing record,
// computed per contact and reduced across contacts. Contacts with no
// incoming-initiated conversations contribute nothing.
func (c Config) responseRate(recs []record.Record, _ *user.User) group.Value {
	keys, groups := conversation.ByKey(recs)

	var rates []float64
	for _, key := range keys {
		received, responded := 0, 0
		for _, conv := range c.segment(groups[key], c.Timeout) {
			first := conv[0]
			if first.Interaction != record.Text || first.Direction != record.In {
				continue
			}
			received++
			for _, r := range conv {
				if r.Direction == record.Out {
					responded++
					break
				}
			}
		}
		if received > 0 {
			rates = append(rates, float64(responded)/float64(received))
		}
	}
	return group.Distribution(rates)
}

// responseDelay: elapsed seconds of every immediately-adjacent
// incoming-to-outgoing pair inside a conversation. Non-positive
// delays are discarded as clock anomalies before reduction.
func (c Config) responseDelay(recs []record.Record, _ *user.User) group.Value {
	_, groups := conversation.ByKey(recs)

	var delays []float64
	for _, g := range groups {
		for _, conv := range c.segment(g, c.Timeout) {
			for i := 1; i < len(conv); i++ {
				a, b := conv[i-1], conv[i]
				if a.Direction != record.In || b.Direction != record.Out {
					continue
				}
				if d := b.Time.Sub(a.Time).Seconds(); d > 0 {
					delays = append(delays, d)
				}
			}
		}
	}
	return group.Distribution(delays)
}

// conversationEdge reduces, per contact, the fraction of
// conversations whose first (or last) record is outgoing.
func (c Config) conversationEdge(last bool) group.Func {
	return func(recs []record.Record, _ *user.User) group.Value {
		keys, groups := conversation.ByKey(recs)

		var fractions []float64
		for _, key := range keys {
			convs := c.segment(groups[key], c.Timeout)
			if len(convs) == 0 {
				continue
			}
			outgoing := 0
			for _, conv := range convs {
				edge := conv[0]
				if last {
					edge = conv[len(conv)-1]
				}
				if edge.Direction == record.Out {
					outgoing++
				}
			}
			fractions = append(fractions, float64(outgoing)/float64(len(convs)))
		}
		return group.Distribution(fractions)
	}
}

// conversationDuration reduces session lengths: timed kinds report
// their recorded durations as-is, text and physical streams report
// the mean conversation span per contact.
func (c Config) conversationDuration(recs []record.Record, _ *user.User) group.Value {
	if recs[0].Interaction.HasDuration() {
		durations := make([]float64, len(recs))
		for i, r := range recs {
			durations[i] = float64(r.Duration)
		}
		return group.Distribution(durations)
	}

	timeout := c.Timeout
	if recs[0].Interaction == record.Physical {
		timeout = c.PhysicalTimeout
	}
	keys, groups := conversation.ByKey(recs)
	var means []float64
	for _, key := range keys {
		var spans []float64
		for _, conv := range c.segment(groups[key], timeout) {
			spans = append(spans, conv[len(conv)-1].Time.Sub(conv[0].Time).Seconds())
		}
		if m, ok := stats.Mean(spans); ok {
			means = append(means, m)
		}
	}
	return group.Distribution(means)
}

// spanSeconds appends every whole second in [from, to) to set.
func spanSeconds(set map[int64]int, from, to time.Time) {
	for ts := from.Unix(); ts < to.Unix(); ts++ {
		set[ts]++
	}
}

// overlapConversations: share of conversation seconds covered by more
// than one concurrent conversation, relative to the covered total.
func (c Config) overlapConversations(recs []record.Record, _ *user.User) group.Value {
	timeout := c.Timeout
	if recs[0].Interaction == record.Physical {
		timeout = c.PhysicalTimeout
	}
	_, groups := conversation.ByKey(recs)

	seconds := make(map[int64]int)
	for _, g := range groups {
		for _, conv := range c.segment(g, timeout) {
			spanSeconds(seconds, conv[0].Time, conv[len(conv)-1].Time)
		}
	}
	if len(seconds) == 0 {
		return group.NoData()
	}
	overlap := 0
	for _, n := range seconds {
		if n > 1 {
			overlap++
		}
	}
	return group.Scalar(float64(overlap) / float64(len(seconds)))
}

// overlapScreenPhysical: share of physical co-presence seconds that
// fall inside a screen session.
func (c Config) overlapScreenPhysical(recs []record.Record, _ *user.User) group.Value {
	screen := make(map[int64]int)
	var physical []record.Record
	for _, r := range recs {
		switch r.Interaction {
		case record.Screen:
			spanSeconds(screen, r.Time, r.Time.Add(time.Duration(r.Duration)*time.Second))
		case record.Physical:
			physical = append(physical, r)
		}
	}

	_, groups := conversation.ByKey(physical)
	presence := make(map[int64]int)
	for _, g := range groups {
		for _, conv := range c.segment(g, c.PhysicalTimeout) {
			spanSeconds(presence, conv[0].Time, conv[len(conv)-1].Time)
		}
	}
	if len(presence) == 0 {
		return group.NoData()
	}
	both := 0
	for ts := range presence {
		if screen[ts] > 0 {
			both++
		}
	}
	return group.Scalar(float64(both) / float64(len(presence)))
}

// rarelySeenContacts: fraction of grouping keys observed in no more
// than the cutoff number of conversations (stop streams count raw
// records per place instead, places have no conversations).
func (c Config) rarelySeenContacts(recs []record.Record, _ *user.User) group.Value {
	keys, groups := conversation.ByKey(recs)

	counts := make([]int, 0, len(keys))
	if recs[0].Interaction == record.Stop {
		for _, key := range keys {
			counts = append(counts, len(groups[key]))
		}
	} else {
		timeout := c.Timeout
		if recs[0].Interaction == record.Physical {
			timeout = c.PhysicalTimeout
		}
		for _, key := range keys {
			counts = append(counts, len(c.segment(groups[key], timeout)))
		}
	}

	rare := 0
	for _, n := range counts {
		if n <= c.ContactCutoff {
			rare++
		}
	}
	return group.Scalar(float64(rare) / float64(len(counts)))
}
