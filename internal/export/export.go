// Package export flattens battery reports and writes them as CSV or
// JSON. The flat form joins the nesting levels with "__", one column
// per leaf statistic, so a multi-person run becomes a single table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sodalab/behavio/internal/battery"
	"github.com/sodalab/behavio/internal/domain/group"
)

// Separator joins nesting levels in flattened keys.
const Separator = "__"

// DefaultDigits is the float precision of CSV output.
const DefaultDigits = 5

var summaryStats = []string{"mean", "std", "median", "skewness", "kurtosis", "min", "max"}

// Pair is one flattened report entry. Value is a float64, an int, a
// string, or nil for missing data.
type Pair struct {
	Key   string
	Value any
}

// Flatten linearizes a report into key/value pairs: reporting metadata
// first, then every indicator leaf in battery order, weeks ascending
// after the aggregate, week and day parts from coarse to fine, subset
// labels in declaration order. Distributions expand into one pair per
// statistic.
func Flatten(rep *battery.Report) []Pair {
	pairs := []Pair{{Key: "name", Value: rep.Name}}
	pairs = append(pairs, flattenReporting(rep.Reporting)...)

	for _, res := range rep.Results {
		if res.Err != nil {
			pairs = append(pairs, Pair{Key: res.Name, Value: nil})
			continue
		}
		for _, week := range weekOrder(res.Values) {
			for _, part := range axisOrder(res.Values[week], group.AllWeek, group.Weekday, group.Weekend) {
				for _, daypart := range axisOrder(res.Values[week][part], group.AllDay, group.Day, group.Night) {
					leaves := res.Values[week][part][daypart]
					for _, label := range res.Labels {
						key := join(res.Name, week, part, daypart, label)
						pairs = append(pairs, flattenValue(key, leaves[label])...)
					}
				}
			}
		}
	}
	return pairs
}

func flattenReporting(r battery.Reporting) []Pair {
	weekend := make([]string, len(r.Weekend))
	for i, d := range r.Weekend {
		weekend[i] = strconv.Itoa(d)
	}
	pairs := []Pair{
		{join("reporting", "groupby"), r.GroupBy},
		{join("reporting", "split_week"), r.SplitWeek},
		{join("reporting", "split_day"), r.SplitDay},
		{join("reporting", "start_time"), r.StartTime},
		{join("reporting", "end_time"), r.EndTime},
		{join("reporting", "night_start"), r.NightStart},
		{join("reporting", "night_end"), r.NightEnd},
		{join("reporting", "weekend"), sliceField(weekend)},
		{join("reporting", "bins"), r.Bins},
		{join("reporting", "number_of_records"), r.NumberOfRecords},
	}
	if r.Ignored != nil {
		for _, k := range []string{"all", "interaction", "direction", "correspondent_id", "datetime", "duration"} {
			pairs = append(pairs, Pair{join("reporting", "ignored", k), r.Ignored[k]})
		}
	}
	return pairs
}

func flattenValue(key string, v group.Value) []Pair {
	if s, ok := v.Summary(); ok {
		fields := []float64{s.Mean, s.Std, s.Median, s.Skewness, s.Kurtosis, s.Min, s.Max}
		pairs := make([]Pair, 0, len(fields)+1)
		for i, stat := range summaryStats {
			pairs = append(pairs, Pair{Key: join(key, stat), Value: fields[i]})
		}
		return append(pairs, Pair{Key: join(key, "n"), Value: s.N})
	}
	if f, ok := v.Float(); ok {
		return []Pair{{Key: key, Value: f}}
	}
	return []Pair{{Key: key, Value: nil}}
}

// weekOrder yields "allweek" first, then week bins by ascending date.
func weekOrder(r group.Result) []string {
	keys := []string{group.AllWeek}
	return append(keys, r.WeekKeys()...)
}

// axisOrder filters a fixed coarse-to-fine ordering down to the keys
// actually present.
func axisOrder[M ~map[string]V, V any](m M, order ...string) []string {
	var keys []string
	for _, k := range order {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func join(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += Separator + p
	}
	return out
}

// sliceField renders a list value the way a single CSV cell can hold
// it.
func sliceField(elems []string) string {
	out := ""
	for i, e := range elems {
		if i > 0 {
			out += ";"
		}
		out += e
	}
	return out
}

// ToCSV writes one row per report, the header being the union of all
// flattened keys in first-seen order. Floats are rounded to digits
// decimal places; missing values stay empty.
func ToCSV(w io.Writer, reports []*battery.Report, digits int) error {
	if digits <= 0 {
		digits = DefaultDigits
	}

	var header []string
	seen := make(map[string]bool)
	rows := make([]map[string]string, 0, len(reports))
	for _, rep := range reports {
		row := make(map[string]string)
		for _, p := range Flatten(rep) {
			if !seen[p.Key] {
				seen[p.Key] = true
				header = append(header, p.Key)
			}
			row[p.Key] = cell(p.Value, digits)
		}
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		out := make([]string, len(header))
		for i, k := range header {
			out[i] = row[k]
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v any, digits int) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(round(x, digits), 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func round(f float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(f*scale) / scale
}

type personJSON struct {
	Name       string                  `json:"name"`
	Reporting  battery.Reporting       `json:"reporting"`
	Indicators map[string]group.Result `json:"indicators"`
}

// ToJSON writes an indented JSON document keyed by person name. Each
// person carries the reporting block and the nested indicator values;
// indicators that failed appear as null.
func ToJSON(w io.Writer, reports []*battery.Report) error {
	doc := make(map[string]personJSON, len(reports))
	for _, rep := range reports {
		indicators := make(map[string]group.Result, len(rep.Results))
		for _, res := range rep.Results {
			if res.Err != nil {
				indicators[res.Name] = nil
				continue
			}
			indicators[res.Name] = res.Values
		}
		doc[rep.Name] = personJSON{Name: rep.Name, Reporting: rep.Reporting, Indicators: indicators}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
