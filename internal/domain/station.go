package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Station is a single seismic station from a station table.
type Station struct {
	Code      string
	Latitude  float64
	Longitude float64
	Elevation float64
	Depth     float64

	// Row is the zero-based data row the station was read from, or -1 when
	// the station did not come from a table. Table writers use it to
	// reproduce the original cells.
	Row int
}

// Point returns the station position as an orb point (longitude, latitude).
func (s Station) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// Validate checks that the coordinates lie inside the WGS84 ranges.
func (s Station) Validate() error {
	if !(s.Latitude >= -90 && s.Latitude <= 90) {
		return fmt.Errorf("latitude %g out of range [-90, 90]", s.Latitude)
	}
	if !(s.Longitude >= -180 && s.Longitude <= 180) {
		return fmt.Errorf("longitude %g out of range [-180, 180]", s.Longitude)
	}
	return nil
}

// StationSet is an ordered sequence of stations, unique by code.
type StationSet []Station

// Codes returns the station codes in set order.
func (ss StationSet) Codes() []string {
	codes := make([]string, len(ss))
	for i, s := range ss {
		codes[i] = s.Code
	}
	return codes
}

// MultiPoint returns the station positions in set order.
func (ss StationSet) MultiPoint() orb.MultiPoint {
	mp := make(orb.MultiPoint, len(ss))
	for i, s := range ss {
		mp[i] = s.Point()
	}
	return mp
}

// clone returns a copy of the set that shares no backing array with ss.
func (ss StationSet) clone() StationSet {
	out := make(StationSet, len(ss))
	copy(out, ss)
	return out
}
