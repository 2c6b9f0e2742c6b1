package group_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
)

// 2024-03-04 is a Monday.
var monday = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

func text(t time.Time) record.Record {
	return record.New(record.Text, record.In, "a", t, 0, record.Position{})
}

func countDescriptor() group.Descriptor {
	return group.Descriptor{
		Name:    "count",
		Subsets: []group.Subset{group.Kind(record.Text)},
		Compute: func(recs []record.Record, _ *user.User) group.Value {
			return group.Scalar(float64(len(recs)))
		},
	}
}

func newUser(recs ...record.Record) *user.User {
	u := user.New("g")
	So(u.SetRecords(recs), ShouldBeNil)
	return u
}

func TestWeekStart(t *testing.T) {
	Convey("Given the week binning helpers", t, func() {
		Convey("Then any day maps to its week's Monday", func() {
			sunday := time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC)
			So(group.WeekKey(monday), ShouldEqual, "2024-03-04")
			So(group.WeekKey(sunday), ShouldEqual, "2024-03-04")
			So(group.WeekKey(sunday.Add(2*time.Hour)), ShouldEqual, "2024-03-11")
		})

		Convey("Then WeekCount counts distinct weeks", func() {
			recs := []record.Record{
				text(monday),
				text(monday.AddDate(0, 0, 3)),
				text(monday.AddDate(0, 0, 9)),
			}
			So(group.WeekCount(recs), ShouldEqual, 2)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a counting indicator over a two-week history", t, func() {
		u := newUser(
			text(monday),
			text(monday.AddDate(0, 0, 1)),
			// Saturday of the first week.
			text(monday.AddDate(0, 0, 5)),
			// Second week, at night.
			text(monday.AddDate(0, 0, 7).Add(11*time.Hour)),
		)

		Convey("When evaluating without grouping", func() {
			res, err := group.Evaluate(u, countDescriptor())
			So(err, ShouldBeNil)

			Convey("Then only the fully-aggregated leaf exists", func() {
				So(res, ShouldHaveLength, 1)
				v, ok := res.Single("text").Float()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 4)
			})
		})

		Convey("When grouping by week", func() {
			res, err := group.Evaluate(u, countDescriptor(), group.WithGroupBy(group.ByWeek))
			So(err, ShouldBeNil)

			Convey("Then week bins appear next to the aggregate", func() {
				So(res.WeekKeys(), ShouldResemble, []string{"2024-03-04", "2024-03-11"})
			})

			Convey("Then the bins partition the aggregate", func() {
				v1, _ := res["2024-03-04"][group.AllWeek][group.AllDay]["text"].Float()
				v2, _ := res["2024-03-11"][group.AllWeek][group.AllDay]["text"].Float()
				all, _ := res.Single("text").Float()
				So(v1+v2, ShouldEqual, all)
			})
		})

		Convey("When splitting weekday and weekend", func() {
			res, err := group.Evaluate(u, countDescriptor(), group.WithSplitWeek(true))
			So(err, ShouldBeNil)

			Convey("Then the parts partition the aggregate", func() {
				wd, _ := res[group.AllWeek][group.Weekday][group.AllDay]["text"].Float()
				we, _ := res[group.AllWeek][group.Weekend][group.AllDay]["text"].Float()
				So(wd, ShouldEqual, 3)
				So(we, ShouldEqual, 1)
			})
		})

		Convey("When splitting day and night", func() {
			res, err := group.Evaluate(u, countDescriptor(), group.WithSplitDay(true))
			So(err, ShouldBeNil)

			Convey("Then the nocturnal record lands in the night part", func() {
				day, _ := res[group.AllWeek][group.AllWeek][group.Day]["text"].Float()
				night, _ := res[group.AllWeek][group.AllWeek][group.Night]["text"].Float()
				So(day, ShouldEqual, 3)
				So(night, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a partition with no matching records", t, func() {
		u := newUser(text(monday))
		d := group.Descriptor{
			Name:    "never",
			Subsets: []group.Subset{group.Kind(record.Call)},
			Compute: func(recs []record.Record, _ *user.User) group.Value {
				// Must not run on empty partitions.
				So(recs, ShouldNotBeEmpty)
				return group.Scalar(1)
			},
		}

		Convey("When evaluating", func() {
			res, err := group.Evaluate(u, d)
			So(err, ShouldBeNil)

			Convey("Then the leaf is the no-data value", func() {
				So(res.Single("call").IsNoData(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a combined subset", t, func() {
		u := newUser(
			text(monday),
			record.New(record.Call, record.Out, "a", monday.Add(time.Hour), 60, record.Position{}),
		)
		d := group.Descriptor{
			Name:    "count",
			Subsets: []group.Subset{group.Combined("callandtext", record.Call, record.Text)},
			Compute: func(recs []record.Record, _ *user.User) group.Value {
				return group.Scalar(float64(len(recs)))
			},
		}

		Convey("Then both kinds feed one interleaved partition", func() {
			res, err := group.Evaluate(u, d)
			So(err, ShouldBeNil)
			v, ok := res.Single("callandtext").Float()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 2)
		})
	})

	Convey("Given malformed descriptors", t, func() {
		u := newUser(text(monday))

		Convey("When the compute function is nil", func() {
			_, err := group.Evaluate(u, group.Descriptor{Name: "x", Subsets: []group.Subset{group.Kind(record.Text)}})
			So(err, ShouldWrap, group.ErrNilCompute)
		})

		Convey("When no subsets are declared", func() {
			d := countDescriptor()
			d.Subsets = nil
			_, err := group.Evaluate(u, d)
			So(err, ShouldWrap, group.ErrNoSubsets)
		})

		Convey("When the user is nil", func() {
			_, err := group.Evaluate(nil, countDescriptor())
			So(err, ShouldWrap, group.ErrNilUser)
		})
	})
}

func TestValueJSON(t *testing.T) {
	Convey("Given the leaf value JSON encoding", t, func() {
		Convey("When the value is no-data", func() {
			b, err := group.NoData().MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "null")
		})

		Convey("When the value is a scalar", func() {
			b, err := group.Scalar(0.5).MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "0.5")
		})

		Convey("When the value is a distribution", func() {
			b, err := group.Distribution([]float64{1, 2, 3}).MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"mean":2`)
			So(string(b), ShouldContainSubstring, `"n":3`)
		})

		Convey("When a distribution is built from nothing", func() {
			So(group.Distribution(nil).IsNoData(), ShouldBeTrue)
		})
	})
}
