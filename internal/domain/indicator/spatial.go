package indicator

import (
	"time"

	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/stats"
	"github.com/sodalab/behavio/internal/domain/user"
)

// Place labels the dwell-time and place-context indicators report on.
const (
	PlaceHome      = "home"
	PlaceCampus    = "campus"
	PlaceOther     = "other"
	PlaceFridayBar = "friday_bar"
)

// percentAtPlace: share of cumulative stop duration spent at the
// named place.
func percentAtPlace(place string) group.Func {
	return func(recs []record.Record, u *user.User) group.Value {
		var at, total float64
		for _, r := range recs {
			if u.PlaceLabel(r.Position.Place) == place {
				at += float64(r.Duration)
			}
			total += float64(r.Duration)
		}
		if total == 0 {
			return group.NoData()
		}
		return group.Scalar(at / total)
	}
}

// percentInteractionsAt walks the combined interaction/stop stream,
// tracking which stop window is open, and reports the share of
// interactions that happened while stopped at the named place.
// Interactions outside any stop window are not counted at all.
func percentInteractionsAt(place string) group.Func {
	return func(recs []record.Record, u *user.User) group.Value {
		var (
			label     string
			windowEnd time.Time
			atPlace   int
			total     int
		)
		for _, r := range recs {
			if r.Interaction == record.Stop {
				label = u.PlaceLabel(r.Position.Place)
				windowEnd = r.Time.Add(time.Duration(r.Duration) * time.Second)
				continue
			}
			if r.Time.Before(windowEnd) {
				total++
				if label == place {
					atPlace++
				}
			}
		}
		if total == 0 {
			return group.NoData()
		}
		return group.Scalar(float64(atPlace) / float64(total))
	}
}

// percentOutsideCampusFromCampus: of the contacts met away from
// campus, the share also met on campus. With nobody met away, anyone
// met on campus yields 1 and an empty partition yields no data.
func percentOutsideCampusFromCampus(recs []record.Record, u *user.User) group.Value {
	var (
		label     string
		windowEnd time.Time
	)
	campus := make(map[string]bool)
	other := make(map[string]bool)
	for _, r := range recs {
		if r.Interaction == record.Stop {
			label = u.PlaceLabel(r.Position.Place)
			windowEnd = r.Time.Add(time.Duration(r.Duration) * time.Second)
			continue
		}
		if !r.Time.Before(windowEnd) {
			continue
		}
		switch label {
		case PlaceCampus:
			campus[r.Correspondent] = true
		case PlaceOther:
			other[r.Correspondent] = true
		}
	}

	if len(other) == 0 {
		if len(campus) == 0 {
			return group.NoData()
		}
		return group.Scalar(1)
	}
	both := 0
	for id := range other {
		if campus[id] {
			both++
		}
	}
	return group.Scalar(float64(both) / float64(len(other)))
}

// firstSeenResponseRate: for each incoming text, whether the person
// replied within the same screen session that first showed it.
// Replies without a preceding pending text, or texts never replied
// to, contribute nothing; inconsistent orderings are skipped.
func firstSeenResponseRate(recs []record.Record, _ *user.User) group.Value {
	var (
		sessionID  = -1
		sessionEnd time.Time
		pending    = make(map[string]int)
		responses  []float64
	)
	for _, r := range recs {
		switch {
		case r.Interaction == record.Screen:
			sessionID++
			sessionEnd = r.Time.Add(time.Duration(r.Duration) * time.Second)
		case r.Interaction == record.Text && r.Direction == record.In:
			if _, ok := pending[r.Correspondent]; !ok {
				firstSeen := sessionID
				if !r.Time.Before(sessionEnd) {
					firstSeen = sessionID + 1
				}
				pending[r.Correspondent] = firstSeen
			}
		case r.Interaction == record.Text && r.Direction == record.Out:
			firstSeen, ok := pending[r.Correspondent]
			if !ok {
				continue
			}
			switch {
			case firstSeen == sessionID:
				responses = append(responses, 1)
			case firstSeen < sessionID:
				responses = append(responses, 0)
			}
			delete(pending, r.Correspondent)
		}
	}
	if m, ok := stats.Mean(responses); ok {
		return group.Scalar(m)
	}
	return group.NoData()
}
