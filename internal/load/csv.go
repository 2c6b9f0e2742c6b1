// Package load reads person event histories and place tables from
// CSV, validating fields and counting what it had to drop. The
// indicator engine itself never touches storage; everything it sees
// comes through here already ordered and deduplicated.
package load

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/sodalab/behavio/internal/domain/record"
	"github.com/sodalab/behavio/internal/domain/user"
	"github.com/sodalab/behavio/pkg/logger"
	"github.com/sodalab/behavio/pkg/metrics"
)

// TimeLayout is the timestamp format of record files.
const TimeLayout = "2006-01-02 15:04:05"

// Record file columns, in canonical order.
var recordColumns = []string{
	"interaction", "direction", "correspondent_id",
	"datetime", "duration", "place_id", "latitude", "longitude",
}

// Ignored counts records dropped at load time, per faulty field. A
// record with several faulty fields increments several counters but
// All only once.
type Ignored struct {
	All           int
	Interaction   int
	Direction     int
	Correspondent int
	Datetime      int
	Duration      int
}

// Map renders the counters under their reporting keys.
func (ig Ignored) Map() map[string]int {
	return map[string]int{
		"all":              ig.All,
		"interaction":      ig.Interaction,
		"direction":        ig.Direction,
		"correspondent_id": ig.Correspondent,
		"datetime":         ig.Datetime,
		"duration":         ig.Duration,
	}
}

// rawRow is one CSV row before field validation.
type rawRow struct {
	interaction   string
	direction     string
	correspondent string
	datetime      string
	duration      string
	place         string
	lat, lon      string
}

// Records reads and validates a record CSV stream. Invalid rows are
// counted and dropped, never fatal; only a malformed file is an
// error. The result is sorted by timestamp with exact duplicates
// collapsed.
func Records(r io.Reader) ([]record.Record, Ignored, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, Ignored{}, fmt.Errorf("%w: %w", ErrBadFile, err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, Ignored{}, err
	}

	var (
		recs    []record.Record
		ignored Ignored
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Ignored{}, fmt.Errorf("%w: %w", ErrBadFile, err)
		}
		raw := rawRow{
			interaction:   field(row, cols, "interaction"),
			direction:     field(row, cols, "direction"),
			correspondent: field(row, cols, "correspondent_id"),
			datetime:      field(row, cols, "datetime"),
			duration:      field(row, cols, "duration"),
			place:         field(row, cols, "place_id"),
			lat:           field(row, cols, "latitude"),
			lon:           field(row, cols, "longitude"),
		}
		rec, ok := parseRow(raw, &ignored)
		if ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })
	recs, dups := record.Dedupe(recs)

	metrics.RecordsLoaded(len(recs))
	metrics.RecordsIgnored(ignored.All)
	metrics.RecordsDuplicate(dups)
	return recs, ignored, nil
}

// parseRow validates every field of a row, counting each faulty one,
// and builds the record when all pass.
func parseRow(raw rawRow, ignored *Ignored) (record.Record, bool) {
	ok := true

	kind := record.Interaction(raw.interaction)
	if !kind.Known() {
		ignored.Interaction++
		ok = false
	}

	dir := record.Direction(raw.direction)
	if kind.HasDirection() && dir != record.In && dir != record.Out {
		ignored.Direction++
		ok = false
	}

	if kind.HasDirection() && raw.correspondent == "" {
		ignored.Correspondent++
		ok = false
	}

	t, err := time.Parse(TimeLayout, raw.datetime)
	if err != nil {
		ignored.Datetime++
		ok = false
	}

	duration := 0
	if kind.HasDuration() {
		duration, err = strconv.Atoi(raw.duration)
		if err != nil || duration < 0 {
			ignored.Duration++
			ok = false
		}
	}

	if !ok {
		ignored.All++
		return record.Record{}, false
	}

	pos := record.Position{Place: raw.place}
	if raw.lat != "" && raw.lon != "" {
		lat, latErr := strconv.ParseFloat(raw.lat, 64)
		lon, lonErr := strconv.ParseFloat(raw.lon, 64)
		if latErr == nil && lonErr == nil {
			pos.Lat, pos.Lon, pos.HasLocation = lat, lon, true
		}
	}
	return record.New(kind, dir, raw.correspondent, t, duration, pos), true
}

// Places reads a place table: place_id,label rows with optional
// latitude/longitude columns that are ignored by the lookup.
func Places(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFile, err)
	}
	if len(header) < 2 || header[0] != "place_id" {
		return nil, fmt.Errorf("%w: place file needs place_id,label columns", ErrBadFile)
	}

	places := make(map[string]string)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadFile, err)
		}
		if len(row) < 2 || row[0] == "" {
			continue
		}
		places[row[0]] = row[1]
	}
	return places, nil
}

// User loads one person from a record file and an optional place
// file, applying the given person-level options.
func User(ctx context.Context, name, recordsPath, placesPath string, opts ...user.Option) (*user.User, Ignored, error) {
	f, err := os.Open(recordsPath)
	if err != nil {
		return nil, Ignored{}, fmt.Errorf("%w: %w", ErrBadFile, err)
	}
	defer f.Close()

	recs, ignored, err := Records(f)
	if err != nil {
		return nil, Ignored{}, err
	}
	if ignored.All > 0 {
		logger.Get().Warn(ctx, "dropped records with missing or inconsistent fields",
			logger.String("user", name), logger.Int("dropped", ignored.All))
	}

	if placesPath != "" {
		pf, err := os.Open(placesPath)
		if err != nil {
			return nil, Ignored{}, fmt.Errorf("%w: %w", ErrBadFile, err)
		}
		defer pf.Close()
		places, err := Places(pf)
		if err != nil {
			return nil, Ignored{}, err
		}
		opts = append(opts, user.WithPlaces(places))
	}

	u := user.New(name, opts...)
	if err := u.SetRecords(recs); err != nil {
		return nil, Ignored{}, err
	}
	return u, ignored, nil
}

// WriteRecords emits records in the canonical CSV format, the inverse
// of Records.
func WriteRecords(w io.Writer, recs []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordColumns); err != nil {
		return err
	}
	for _, r := range recs {
		duration := ""
		if r.Interaction.HasDuration() {
			duration = strconv.Itoa(r.Duration)
		}
		lat, lon := "", ""
		if r.Position.HasLocation {
			lat = strconv.FormatFloat(r.Position.Lat, 'f', -1, 64)
			lon = strconv.FormatFloat(r.Position.Lon, 'f', -1, 64)
		}
		row := []string{
			string(r.Interaction), string(r.Direction), r.Correspondent,
			r.Time.Format(TimeLayout), duration, r.Position.Place, lat, lon,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"interaction", "datetime"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrBadFile, required)
		}
	}
	return cols, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
