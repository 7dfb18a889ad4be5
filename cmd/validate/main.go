// Command validate checks a prepared network for consistency: the selected
// table must be a subset of the full deployment, and the search volume
// must enclose the selected stations and match what volcfg would derive
// from them.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -stations stations.csv \
//	  -selected stations_4_detection.csv \
//	  -volume search_volume.json \
//	  -buffer 500
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/volumejson"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/paulmach/orb"
)

// tolerance for comparing bounds in metres.
const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	stationsPath := flag.String("stations", "", "full station table")
	selectedPath := flag.String("selected", "", "selected station table")
	volumePath := flag.String("volume", "", "search volume JSON")
	buffer := flag.Float64("buffer", domain.DefaultVolumeOptions().Buffer, "buffer the volume was derived with, metres")
	flag.Parse()

	if *stationsPath == "" || *selectedPath == "" || *volumePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*stationsPath, *selectedPath, *volumePath, *buffer); code != 0 {
		os.Exit(code)
	}
}

func run(stationsPath, selectedPath, volumePath string, buffer float64) int {
	fmt.Println("=== Network Preparation Validation ===")
	fmt.Println()

	full, err := csvtable.ReadFile(stationsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stations: %v\n", err)
		return 1
	}
	selected, err := csvtable.ReadFile(selectedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load selected stations: %v\n", err)
		return 1
	}
	vol, err := loadVolume(volumePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load volume: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSubset(full.Stations, selected.Stations),
		validateCoverage(selected.Stations, vol),
		validateReproducible(selected.Stations, vol, buffer),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Stations: %d deployed, %d selected\n", len(full.Stations), len(selected.Stations))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadVolume(path string) (domain.VolumeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.VolumeConfig{}, err
	}
	defer f.Close()
	return volumejson.Decode(f)
}

// validateSubset checks that every selected station is a distinct member
// of the deployment with unchanged coordinates.
func validateSubset(full, selected domain.StationSet) *phase {
	p := &phase{name: "Selected stations belong to deployment"}

	byCode := make(map[string]domain.Station, len(full))
	for _, s := range full {
		byCode[s.Code] = s
	}
	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if seen[s.Code] {
			p.errorf("station %s selected twice", s.Code)
		}
		seen[s.Code] = true

		orig, ok := byCode[s.Code]
		if !ok {
			p.errorf("station %s not in deployment", s.Code)
			continue
		}
		if orig.Latitude != s.Latitude || orig.Longitude != s.Longitude {
			p.errorf("station %s moved: (%g, %g) -> (%g, %g)",
				s.Code, orig.Latitude, orig.Longitude, s.Latitude, s.Longitude)
		}
	}
	return p
}

// validateCoverage checks the structural properties of the volume and that
// each station falls inside its horizontal bounds.
func validateCoverage(selected domain.StationSet, vol domain.VolumeConfig) *phase {
	p := &phase{name: "Volume encloses selected stations"}

	for axis, b := range map[string]domain.Bounds{"east": vol.EastBounds, "north": vol.NorthBounds} {
		if b[0] > b[1] {
			p.errorf("%s bounds inverted: %v", axis, b)
		}
		if q := b.Span() / vol.RootNodeSize; math.Abs(q-math.Round(q)) > tolerance {
			p.errorf("%s span %g is not a multiple of root node size %g", axis, b.Span(), vol.RootNodeSize)
		}
	}
	if vol.DepthBounds[0] != 0 {
		p.errorf("depth bounds start at %g, want 0", vol.DepthBounds[0])
	}

	proj := domain.NewProjection(orb.Point{vol.Location.Lon, vol.Location.Lat})
	for _, s := range selected {
		pt := proj.Project(s.Point())
		if pt[0] < vol.EastBounds[0]-tolerance || pt[0] > vol.EastBounds[1]+tolerance ||
			pt[1] < vol.NorthBounds[0]-tolerance || pt[1] > vol.NorthBounds[1]+tolerance {
			p.errorf("station %s at (%.1f, %.1f) m lies outside the volume", s.Code, pt[0], pt[1])
		}
	}
	return p
}

// validateReproducible re-derives the volume from the selected stations
// with the record's own grid settings and compares the result.
func validateReproducible(selected domain.StationSet, vol domain.VolumeConfig, buffer float64) *phase {
	p := &phase{name: "Volume matches re-derivation"}

	want, err := domain.Configure(selected, domain.VolumeOptions{
		GridUnit: vol.RootNodeSize,
		DepthMax: vol.DepthBounds[1],
		Buffer:   buffer,
		Levels:   vol.Levels,
	})
	if err != nil {
		p.errorf("configure: %v", err)
		return p
	}

	if math.Abs(want.Location.Lat-vol.Location.Lat) > 1e-9 || math.Abs(want.Location.Lon-vol.Location.Lon) > 1e-9 {
		p.errorf("location: got (%g, %g), want (%g, %g)",
			vol.Location.Lat, vol.Location.Lon, want.Location.Lat, want.Location.Lon)
	}
	compare := func(axis string, got, want domain.Bounds) {
		if math.Abs(got[0]-want[0]) > tolerance || math.Abs(got[1]-want[1]) > tolerance {
			p.errorf("%s bounds: got %v, want %v", axis, got, want)
		}
	}
	compare("east", vol.EastBounds, want.EastBounds)
	compare("north", vol.NorthBounds, want.NorthBounds)
	compare("depth", vol.DepthBounds, want.DepthBounds)
	return p
}
