package group

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/sodalab/behavio/internal/domain/stats"
)

type valueKind int

const (
	kindNoData valueKind = iota
	kindScalar
	kindSummary
)

// Value is one leaf of the nested indicator result: a scalar, a
// summary-statistics record, or the no-data sentinel used for empty
// and degenerate partitions.
type Value struct {
	kind    valueKind
	scalar  float64
	summary stats.Summary
}

// NoData is the sentinel for partitions the indicator is undefined on.
func NoData() Value { return Value{} }

// Scalar wraps a plain numeric result.
func Scalar(v float64) Value { return Value{kind: kindScalar, scalar: v} }

// Distribution reduces observations to a summary value. An empty
// input yields NoData.
func Distribution(values []float64) Value {
	s := stats.Summarize(values)
	if s.Empty() {
		return NoData()
	}
	return Value{kind: kindSummary, summary: s}
}

// FromSummary wraps an existing summary, mapping the empty summary to
// NoData.
func FromSummary(s stats.Summary) Value {
	if s.Empty() {
		return NoData()
	}
	return Value{kind: kindSummary, summary: s}
}

// IsNoData reports whether the value is the no-data sentinel.
func (v Value) IsNoData() bool { return v.kind == kindNoData }

// Float returns the scalar value, if the value is a scalar.
func (v Value) Float() (float64, bool) {
	if v.kind != kindScalar {
		return 0, false
	}
	return v.scalar, true
}

// Summary returns the summary record, if the value is a distribution.
func (v Value) Summary() (stats.Summary, bool) {
	if v.kind != kindSummary {
		return stats.Summary{}, false
	}
	return v.summary, true
}

// MarshalJSON renders no-data as null, scalars as numbers, and
// summaries as flat objects. NaN never leaks into the output.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindScalar:
		return jsonNumber(v.scalar), nil
	case kindSummary:
		s := v.summary
		obj := map[string]json.RawMessage{
			"mean":     jsonNumber(s.Mean),
			"std":      jsonNumber(s.Std),
			"median":   jsonNumber(s.Median),
			"skewness": jsonNumber(s.Skewness),
			"kurtosis": jsonNumber(s.Kurtosis),
			"min":      jsonNumber(s.Min),
			"max":      jsonNumber(s.Max),
			"n":        json.RawMessage(strconv.Itoa(s.N)),
		}
		return json.Marshal(obj)
	default:
		return []byte("null"), nil
	}
}

func jsonNumber(f float64) json.RawMessage {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.RawMessage("null")
	}
	b, _ := json.Marshal(f)
	return b
}
