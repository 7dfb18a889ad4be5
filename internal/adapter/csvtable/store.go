package csvtable

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
)

// ReadFile parses the station table at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile writes stations to path in the shape of t, replacing any
// existing file.
func (t *Table) WriteFile(path string, stations domain.StationSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create station table: %w", err)
	}
	if err := t.Write(f, stations); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Store reads stations from one table file and writes subsets of them to
// another in the same shape.
// It implements pipeline.StationSource and pipeline.StationSink.
type Store struct {
	inPath  string
	outPath string
	table   *Table
}

// NewStore creates a Store reading inPath and writing outPath.
func NewStore(inPath, outPath string) *Store {
	return &Store{inPath: inPath, outPath: outPath}
}

// LoadStations reads the input table.
func (s *Store) LoadStations(ctx context.Context) (domain.StationSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadFile(s.inPath)
	if err != nil {
		return nil, err
	}
	s.table = t
	return t.Stations, nil
}

// WriteStations writes stations to the output table using the header and
// rows of the loaded input.
func (s *Store) WriteStations(ctx context.Context, stations domain.StationSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.table == nil {
		return errors.New("write stations: no table loaded")
	}
	return s.table.WriteFile(s.outPath, stations)
}
