// Command genmock writes a synthetic node deployment as a station table,
// for exercising selection and volume configuration without field data.
// Nodes sit on a jittered grid around a centre point.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/stations.csv -rows 8 -cols 8 -spacing 400
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/paulmach/orb"
)

type deployment struct {
	network  string
	center   orb.Point
	rows     int
	cols     int
	spacing  float64 // metres between grid nodes
	jitter   float64 // maximum offset from the grid node, metres
	baseElev float64
	seed     uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var d deployment
	out := flag.String("out", "", "output path for the station table")
	flag.StringVar(&d.network, "net", "SS", "network code")
	lat := flag.Float64("lat", 2.13, "latitude of the deployment centre")
	lon := flag.Float64("lon", 99.22, "longitude of the deployment centre")
	flag.IntVar(&d.rows, "rows", 8, "grid rows")
	flag.IntVar(&d.cols, "cols", 8, "grid columns")
	flag.Float64Var(&d.spacing, "spacing", 400, "node spacing in metres")
	flag.Float64Var(&d.jitter, "jitter", 100, "maximum node offset from the grid in metres")
	flag.Float64Var(&d.baseElev, "elev", 1100, "base elevation in metres")
	flag.Uint64Var(&d.seed, "seed", 42, "random seed")
	flag.Parse()

	if *out == "" || d.rows <= 0 || d.cols <= 0 {
		flag.Usage()
		os.Exit(1)
	}
	d.center = orb.Point{*lon, *lat}

	stations := d.generate()

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := writeTable(f, d.network, stations); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d stations to %s\n", len(stations), *out)
	return nil
}

func (d deployment) generate() domain.StationSet {
	rng := domain.NewRand(d.seed)
	proj := domain.NewProjection(d.center)

	offset := func(i, n int) float64 {
		return (float64(i) - float64(n-1)/2) * d.spacing
	}
	jitter := func() float64 {
		return (2*rng.Float64() - 1) * d.jitter
	}

	stations := make(domain.StationSet, 0, d.rows*d.cols)
	for r := range d.rows {
		for c := range d.cols {
			pt := proj.Unproject(orb.Point{offset(c, d.cols) + jitter(), offset(r, d.rows) + jitter()})
			stations = append(stations, domain.Station{
				Code:      fmt.Sprintf("%02d%03d", r+1, c+1),
				Latitude:  pt.Lat(),
				Longitude: pt.Lon(),
				Elevation: d.baseElev + float64(rng.IntN(400)),
				Row:       len(stations),
			})
		}
	}
	return stations
}

func writeTable(f *os.File, network string, stations domain.StationSet) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"network", "station", "latitude", "longitude", "elevation", "depth"}); err != nil {
		return err
	}
	for _, s := range stations {
		err := w.Write([]string{
			network,
			s.Code,
			strconv.FormatFloat(s.Latitude, 'f', 6, 64),
			strconv.FormatFloat(s.Longitude, 'f', 6, 64),
			strconv.FormatFloat(s.Elevation, 'f', 1, 64),
			"0",
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
