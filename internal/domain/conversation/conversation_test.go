package conversation_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sodalab/behavio/internal/domain/conversation"
	"github.com/sodalab/behavio/internal/domain/record"
)

var base = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func text(dir record.Direction, min int) record.Record {
	return record.New(record.Text, dir, "a", base.Add(time.Duration(min)*time.Minute), 0, record.Position{})
}

func call(dir record.Direction, min, duration int) record.Record {
	return record.New(record.Call, dir, "a", base.Add(time.Duration(min)*time.Minute), duration, record.Position{})
}

func TestSegmentInclusive(t *testing.T) {
	Convey("Given the call-inclusive policy", t, func() {
		Convey("When texts fall within the timeout", func() {
			recs := []record.Record{text(record.In, 0), text(record.Out, 10), text(record.In, 30)}
			convs := conversation.Segment(recs)

			Convey("Then they form one conversation", func() {
				So(convs, ShouldHaveLength, 1)
				So(convs[0], ShouldHaveLength, 3)
			})
		})

		Convey("When a gap reaches the timeout exactly", func() {
			recs := []record.Record{text(record.In, 0), text(record.Out, 60)}
			convs := conversation.Segment(recs)

			Convey("Then the tie starts a new conversation", func() {
				So(convs, ShouldHaveLength, 2)
			})
		})

		Convey("When an answered call arrives mid-conversation", func() {
			recs := []record.Record{text(record.In, 0), call(record.Out, 5, 120), text(record.In, 10)}
			convs := conversation.Segment(recs)

			Convey("Then the call closes and joins the conversation", func() {
				So(convs, ShouldHaveLength, 2)
				So(convs[0], ShouldHaveLength, 2)
				So(convs[0][1].Interaction, ShouldEqual, record.Call)
				So(convs[1], ShouldHaveLength, 1)
			})
		})

		Convey("When a call is too short to count as answered", func() {
			recs := []record.Record{text(record.In, 0), call(record.Out, 5, 1), text(record.In, 10)}
			convs := conversation.Segment(recs)

			Convey("Then the call rides along like any record", func() {
				So(convs, ShouldHaveLength, 1)
				So(convs[0], ShouldHaveLength, 3)
			})
		})

		Convey("When segmenting with a custom timeout", func() {
			recs := []record.Record{text(record.In, 0), text(record.Out, 10)}
			convs := conversation.Segment(recs, conversation.WithTimeout(5*time.Minute))

			Convey("Then the tighter timeout splits the pair", func() {
				So(convs, ShouldHaveLength, 2)
			})
		})

		Convey("When the input is empty", func() {
			So(conversation.Segment(nil), ShouldBeEmpty)
		})

		Convey("Then every input record appears in exactly one conversation, in order", func() {
			recs := []record.Record{
				text(record.In, 0), call(record.Out, 20, 300), text(record.In, 25),
				text(record.Out, 100), text(record.In, 170), call(record.In, 180, 0),
			}
			convs := conversation.Segment(recs)

			var flat []record.Record
			for _, c := range convs {
				So(c, ShouldNotBeEmpty)
				flat = append(flat, c...)
			}
			So(flat, ShouldHaveLength, len(recs))
			for i := range flat {
				So(flat[i].Equal(recs[i]), ShouldBeTrue)
			}
		})
	})
}

func TestSegmentExcluding(t *testing.T) {
	Convey("Given the call-excluding policy", t, func() {
		seg := func(recs []record.Record) [][]record.Record {
			return conversation.Segment(recs, conversation.WithPolicy(conversation.CallExcludes))
		}

		Convey("When a call interrupts a text exchange", func() {
			recs := []record.Record{text(record.In, 0), call(record.Out, 5, 120), text(record.In, 10)}
			convs := seg(recs)

			Convey("Then the call splits the exchange and is discarded", func() {
				So(convs, ShouldHaveLength, 2)
				So(convs[0], ShouldHaveLength, 1)
				So(convs[1], ShouldHaveLength, 1)
				for _, c := range convs {
					for _, r := range c {
						So(r.Interaction, ShouldNotEqual, record.Call)
					}
				}
			})
		})

		Convey("When the stream holds only calls", func() {
			recs := []record.Record{call(record.In, 0, 60), call(record.Out, 10, 30)}

			Convey("Then no conversations are emitted", func() {
				So(seg(recs), ShouldBeEmpty)
			})
		})

		Convey("When a call arrives with no open conversation", func() {
			recs := []record.Record{call(record.In, 0, 60), text(record.In, 5), text(record.Out, 8)}
			convs := seg(recs)

			Convey("Then the texts still form their own conversation", func() {
				So(convs, ShouldHaveLength, 1)
				So(convs[0], ShouldHaveLength, 2)
			})
		})
	})
}

func TestByKey(t *testing.T) {
	Convey("Given records for several correspondents", t, func() {
		recs := []record.Record{
			record.New(record.Text, record.In, "b", base, 0, record.Position{}),
			record.New(record.Text, record.In, "a", base.Add(time.Minute), 0, record.Position{}),
			record.New(record.Text, record.Out, "b", base.Add(2*time.Minute), 0, record.Position{}),
		}

		Convey("When grouping by key", func() {
			keys, groups := conversation.ByKey(recs)

			Convey("Then keys come back in first-seen order", func() {
				So(keys, ShouldResemble, []string{"b", "a"})
			})

			Convey("Then each group preserves record order", func() {
				So(groups["b"], ShouldHaveLength, 2)
				So(groups["b"][0].Time.Before(groups["b"][1].Time), ShouldBeTrue)
				So(groups["a"], ShouldHaveLength, 1)
			})
		})
	})
}
