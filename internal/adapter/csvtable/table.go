// Package csvtable reads and writes station tables as delimited text.
//
// A table must carry the columns "station", "latitude" and "longitude".
// Every other column is kept verbatim so that a subset of stations can be
// written back in exactly the shape it was read.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
)

// Column names recognised in station tables.
const (
	ColStation   = "station"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
	ColElevation = "elevation"
	ColDepth     = "depth"
)

var requiredColumns = []string{ColStation, ColLatitude, ColLongitude}

// Table is a parsed station table.
type Table struct {
	Header   []string
	Stations domain.StationSet

	cols    map[string]int // trimmed column name to index
	records [][]string     // raw data rows, indexed by Station.Row
}

// Read parses a station table. Missing required columns, short rows and
// unparseable or out-of-range coordinates are reported as
// *domain.MalformedInputError before any station is returned.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.MalformedInputError{Missing: requiredColumns}
	}
	if err != nil {
		return nil, malformedCSV(err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MalformedInputError{Missing: missing}
	}

	t := &Table{Header: header, Stations: domain.StationSet{}, cols: cols}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedCSV(err)
		}
		line, _ := cr.FieldPos(0)

		s, err := parseStation(rec, cols, line)
		if err != nil {
			return nil, err
		}
		s.Row = len(t.records)
		t.records = append(t.records, rec)
		t.Stations = append(t.Stations, s)
	}
	return t, nil
}

// Write emits the table header followed by the original rows of stations,
// in the order given. Stations that were not read into t are written from
// their fields, leaving unknown columns empty. t must come from [Read].
func (t *Table) Write(w io.Writer, stations domain.StationSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range stations {
		if err := cw.Write(t.record(s)); err != nil {
			return fmt.Errorf("write station %s: %w", s.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) record(s domain.Station) []string {
	if s.Row >= 0 && s.Row < len(t.records) {
		if rec := t.records[s.Row]; strings.TrimSpace(rec[t.cols[ColStation]]) == s.Code {
			return rec
		}
	}

	rec := make([]string, len(t.Header))
	set := func(col, v string) {
		if i, ok := t.cols[col]; ok {
			rec[i] = v
		}
	}
	set(ColStation, s.Code)
	set(ColLatitude, formatFloat(s.Latitude))
	set(ColLongitude, formatFloat(s.Longitude))
	set(ColElevation, formatFloat(s.Elevation))
	set(ColDepth, formatFloat(s.Depth))
	return rec
}

func parseStation(rec []string, cols map[string]int, line int) (domain.Station, error) {
	cell := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	number := func(col string, required bool) (float64, error) {
		raw := cell(col)
		if raw == "" {
			if required {
				return 0, &domain.MalformedInputError{Line: line, Column: col, Err: errors.New("empty value")}
			}
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &domain.MalformedInputError{Line: line, Column: col, Err: err}
		}
		return v, nil
	}

	s := domain.Station{Code: cell(ColStation)}
	if s.Code == "" {
		return s, &domain.MalformedInputError{Line: line, Column: ColStation, Err: errors.New("empty value")}
	}

	var err error
	if s.Latitude, err = number(ColLatitude, true); err != nil {
		return s, err
	}
	if s.Longitude, err = number(ColLongitude, true); err != nil {
		return s, err
	}
	if s.Elevation, err = number(ColElevation, false); err != nil {
		return s, err
	}
	if s.Depth, err = number(ColDepth, false); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, &domain.MalformedInputError{Line: line, Err: err}
	}
	return s, nil
}

func malformedCSV(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.MalformedInputError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read station table: %w", err)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
