package indicator

import (
	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
)

// intereventTime reduces the gaps, in seconds, between consecutive
// events. A single-record partition has no gap and reports no data.
func intereventTime(recs []record.Record, _ *user.User) group.Value {
	var gaps []float64
	for i := 1; i < len(recs); i++ {
		gaps = append(gaps, recs[i].Time.Sub(recs[i-1].Time).Seconds())
	}
	return group.Distribution(gaps)
}

// percentNocturnal is the share of events inside the person's night
// window.
func percentNocturnal(recs []record.Record, u *user.User) group.Value {
	night := 0
	for _, r := range recs {
		if u.IsNight(r.Time) {
			night++
		}
	}
	return group.Scalar(float64(night) / float64(len(recs)))
}

// activeDays counts distinct calendar dates with at least one event.
func activeDays(recs []record.Record, _ *user.User) group.Value {
	days := make(map[string]bool)
	for _, r := range recs {
		days[r.Time.Format("2006-01-02")] = true
	}
	return group.Scalar(float64(len(days)))
}
