package record_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sodalab/behavio/internal/domain/record"
)

func ts(min int) time.Time {
	return time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
}

func TestInteractionKinds(t *testing.T) {
	Convey("Given the interaction kind predicates", t, func() {
		Convey("Then only the five kinds are known", func() {
			for _, k := range []record.Interaction{record.Call, record.Text, record.Physical, record.Screen, record.Stop} {
				So(k.Known(), ShouldBeTrue)
			}
			So(record.Interaction("email").Known(), ShouldBeFalse)
			So(record.Interaction("").Known(), ShouldBeFalse)
		})

		Convey("Then direction belongs to call, text and physical", func() {
			So(record.Call.HasDirection(), ShouldBeTrue)
			So(record.Text.HasDirection(), ShouldBeTrue)
			So(record.Physical.HasDirection(), ShouldBeTrue)
			So(record.Screen.HasDirection(), ShouldBeFalse)
			So(record.Stop.HasDirection(), ShouldBeFalse)
		})

		Convey("Then duration belongs to call, screen and stop", func() {
			So(record.Call.HasDuration(), ShouldBeTrue)
			So(record.Screen.HasDuration(), ShouldBeTrue)
			So(record.Stop.HasDuration(), ShouldBeTrue)
			So(record.Text.HasDuration(), ShouldBeFalse)
			So(record.Physical.HasDuration(), ShouldBeFalse)
		})
	})
}

func TestNewFixesKey(t *testing.T) {
	Convey("Given records built through New", t, func() {
		Convey("When the record has a correspondent", func() {
			r := record.New(record.Call, record.In, "alice", ts(0), 60, record.Position{})

			Convey("Then the key is the correspondent", func() {
				So(r.Key, ShouldEqual, "alice")
			})
		})

		Convey("When the record is a stop", func() {
			r := record.New(record.Stop, "", "", ts(0), 600, record.Position{Place: "p1"})

			Convey("Then the key is the place identifier", func() {
				So(r.Key, ShouldEqual, "p1")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the per-kind field contract", t, func() {
		Convey("When a call has direction and duration", func() {
			r := record.New(record.Call, record.Out, "bob", ts(0), 30, record.Position{})
			So(r.Validate(), ShouldBeNil)
		})

		Convey("When the interaction kind is unknown", func() {
			r := record.New("email", record.Out, "bob", ts(0), 0, record.Position{})
			So(r.Validate(), ShouldWrap, record.ErrUnknownInteraction)
		})

		Convey("When a text is missing its direction", func() {
			r := record.New(record.Text, "", "bob", ts(0), 0, record.Position{})
			So(r.Validate(), ShouldWrap, record.ErrInvalidRecord)
		})

		Convey("When a screen session has a negative duration", func() {
			r := record.New(record.Screen, "", "", ts(0), -1, record.Position{})
			So(r.Validate(), ShouldWrap, record.ErrInvalidRecord)
		})

		Convey("When the timestamp is zero", func() {
			r := record.New(record.Screen, "", "", time.Time{}, 10, record.Position{})
			So(r.Validate(), ShouldWrap, record.ErrInvalidRecord)
		})
	})
}

func TestValidateAll(t *testing.T) {
	Convey("Given a chronological stream", t, func() {
		recs := []record.Record{
			record.New(record.Text, record.In, "a", ts(0), 0, record.Position{}),
			record.New(record.Text, record.Out, "a", ts(1), 0, record.Position{}),
			record.New(record.Call, record.In, "b", ts(1), 20, record.Position{}),
		}

		Convey("Then validation passes, ties included", func() {
			So(record.ValidateAll(recs), ShouldBeNil)
		})

		Convey("When two records are swapped", func() {
			recs[0], recs[2] = recs[2], recs[0]

			Convey("Then the ordering violation is reported", func() {
				So(record.ValidateAll(recs), ShouldWrap, record.ErrNotChronological)
			})
		})
	})
}

func TestDedupe(t *testing.T) {
	Convey("Given a sorted stream with exact duplicates", t, func() {
		a := record.New(record.Text, record.In, "a", ts(0), 0, record.Position{})
		b := record.New(record.Call, record.In, "a", ts(0), 15, record.Position{})
		c := record.New(record.Text, record.Out, "a", ts(5), 0, record.Position{})

		recs := []record.Record{a, b, a, c, c}

		Convey("When deduplicating", func() {
			out, removed := record.Dedupe(recs)

			Convey("Then exact duplicates collapse and order survives", func() {
				So(removed, ShouldEqual, 2)
				So(out, ShouldHaveLength, 3)
				So(out[0].Equal(a), ShouldBeTrue)
				So(out[1].Equal(b), ShouldBeTrue)
				So(out[2].Equal(c), ShouldBeTrue)
			})
		})

		Convey("When records share a timestamp but differ in fields", func() {
			out, removed := record.Dedupe([]record.Record{a, b})

			Convey("Then both are kept", func() {
				So(removed, ShouldEqual, 0)
				So(out, ShouldHaveLength, 2)
			})
		})

		Convey("When the stream is empty", func() {
			out, removed := record.Dedupe(nil)
			So(out, ShouldBeEmpty)
			So(removed, ShouldEqual, 0)
		})
	})
}
