package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boundsTolerance = 1e-6

func TestConfigure_TwoStationScenario(t *testing.T) {
	stations := StationSet{
		station("S1", 47.0, 8.0),
		station("S2", 47.1, 8.2),
	}
	opts := VolumeOptions{GridUnit: 1000, DepthMax: 20000, Buffer: 500, Levels: 5}

	cfg, err := Configure(stations, opts)
	require.NoError(t, err)

	assert.InDelta(t, 47.05, cfg.Location.Lat, 1e-12)
	assert.InDelta(t, 8.1, cfg.Location.Lon, 1e-12)
	assert.Zero(t, cfg.Location.EastShift)
	assert.Zero(t, cfg.Location.NorthShift)
	assert.Zero(t, cfg.Location.Elevation)
	assert.Zero(t, cfg.Location.Depth)

	// Projected extents: ~15152.75 m east, ~11119.49 m north.
	northExtent := 0.1 * math.Pi / 180 * EarthRadiusM
	eastExtent := 0.2 * math.Pi / 180 * EarthRadiusM * math.Cos(47.05*math.Pi/180)
	assert.InDelta(t, math.Ceil((eastExtent+1000)/1000)*1000, cfg.EastBounds.Span(), boundsTolerance)
	assert.InDelta(t, math.Ceil((northExtent+1000)/1000)*1000, cfg.NorthBounds.Span(), boundsTolerance)
	assert.InDelta(t, 17000.0, cfg.EastBounds.Span(), boundsTolerance)
	assert.InDelta(t, 13000.0, cfg.NorthBounds.Span(), boundsTolerance)

	assert.InDelta(t, 0, cfg.EastBounds.Mid(), boundsTolerance)
	assert.InDelta(t, 0, cfg.NorthBounds.Mid(), boundsTolerance)

	assert.Equal(t, Bounds{0, 20000}, cfg.DepthBounds)
	assert.Equal(t, 1000.0, cfg.RootNodeSize)
	assert.Equal(t, 5, cfg.Levels)
}

func TestConfigure_SingleStation(t *testing.T) {
	tests := []struct {
		name   string
		buffer float64
		want   Bounds
	}{
		{name: "half cell buffer", buffer: 500, want: Bounds{-500, 500}},
		{name: "buffer rounds up", buffer: 700, want: Bounds{-1000, 1000}},
		{name: "zero buffer is zero width", buffer: 0, want: Bounds{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := VolumeOptions{GridUnit: 1000, DepthMax: 20000, Buffer: tt.buffer, Levels: 5}
			cfg, err := Configure(StationSet{station("ONLY", -3.2, 128.4)}, opts)
			require.NoError(t, err)

			wantSpan := math.Ceil(2*tt.buffer/opts.GridUnit) * opts.GridUnit
			assert.InDelta(t, wantSpan, cfg.EastBounds.Span(), boundsTolerance)
			assert.InDelta(t, wantSpan, cfg.NorthBounds.Span(), boundsTolerance)
			assert.InDelta(t, tt.want[0], cfg.EastBounds[0], boundsTolerance)
			assert.InDelta(t, tt.want[1], cfg.EastBounds[1], boundsTolerance)
			assert.InDelta(t, tt.want[0], cfg.NorthBounds[0], boundsTolerance)
			assert.InDelta(t, tt.want[1], cfg.NorthBounds[1], boundsTolerance)
			assert.Equal(t, -3.2, cfg.Location.Lat)
			assert.Equal(t, 128.4, cfg.Location.Lon)
		})
	}
}

func TestConfigure_HugeGridUnit(t *testing.T) {
	opts := VolumeOptions{GridUnit: 1e6, DepthMax: 0, Buffer: 0, Levels: 1}
	cfg, err := Configure(StationSet{station("A", 10, 10), station("B", 10.01, 10.01)}, opts)
	require.NoError(t, err)

	assert.InDelta(t, 1e6, cfg.EastBounds.Span(), boundsTolerance)
	assert.InDelta(t, 1e6, cfg.NorthBounds.Span(), boundsTolerance)
	assert.Equal(t, Bounds{0, 0}, cfg.DepthBounds)
}

func TestConfigure_CenterIsBoundingBoxMidpoint(t *testing.T) {
	// Centroid would be (46.5, 8.5); the bounding-box midpoint is (47, 9).
	stations := StationSet{
		station("A", 46, 8),
		station("B", 46, 8),
		station("C", 46, 8),
		station("D", 48, 10),
	}

	cfg, err := Configure(stations, DefaultVolumeOptions())
	require.NoError(t, err)
	assert.Equal(t, 47.0, cfg.Location.Lat)
	assert.Equal(t, 9.0, cfg.Location.Lon)
}

func TestConfigure_BoundsCentredOnDataMidpoint(t *testing.T) {
	stations := StationSet{
		station("A", 45.0, 6.0),
		station("B", 45.2, 6.1),
		station("C", 45.9, 6.8),
		station("D", 45.1, 7.5),
	}
	opts := DefaultVolumeOptions()

	cfg, err := Configure(stations, opts)
	require.NoError(t, err)

	proj := NewProjection(orb.Point{cfg.Location.Lon, cfg.Location.Lat})
	local := make(orb.MultiPoint, len(stations))
	for i, s := range stations {
		local[i] = proj.Project(s.Point())
	}
	mid := local.Bound().Center()

	assert.InDelta(t, mid[0], cfg.EastBounds.Mid(), boundsTolerance)
	assert.InDelta(t, mid[1], cfg.NorthBounds.Mid(), boundsTolerance)
	assert.LessOrEqual(t, cfg.EastBounds[0], local.Bound().Min[0]-opts.Buffer+boundsTolerance)
	assert.GreaterOrEqual(t, cfg.EastBounds[1], local.Bound().Max[0]+opts.Buffer-boundsTolerance)
}

func TestConfigure_SpansAreGridMultiples(t *testing.T) {
	units := []float64{250, 1000, 2500}
	for seed := uint64(1); seed <= 20; seed++ {
		stations := randomStations(seed, 5+int(seed))
		for _, unit := range units {
			opts := VolumeOptions{GridUnit: unit, DepthMax: 8 * unit, Buffer: 300, Levels: 4}
			cfg, err := Configure(stations, opts)
			require.NoError(t, err)

			for _, b := range []Bounds{cfg.EastBounds, cfg.NorthBounds, cfg.DepthBounds} {
				cells := b.Span() / unit
				assert.InDelta(t, math.Round(cells), cells, 1e-6, "span %g is not a multiple of %g", b.Span(), unit)
			}
		}
	}
}

func TestConfigure_DoesNotModifyInput(t *testing.T) {
	stations := StationSet{station("A", 47.0, 8.0), station("B", 47.1, 8.2)}
	before := stations.clone()

	_, err := Configure(stations, DefaultVolumeOptions())
	require.NoError(t, err)
	assert.Equal(t, before, stations)
}

func TestConfigure_InvalidParameters(t *testing.T) {
	valid := DefaultVolumeOptions()
	tests := []struct {
		name   string
		mutate func(*VolumeOptions)
	}{
		{"zero grid unit", func(o *VolumeOptions) { o.GridUnit = 0 }},
		{"negative grid unit", func(o *VolumeOptions) { o.GridUnit = -1000 }},
		{"NaN grid unit", func(o *VolumeOptions) { o.GridUnit = math.NaN() }},
		{"negative depth", func(o *VolumeOptions) { o.DepthMax = -1000 }},
		{"depth not a multiple", func(o *VolumeOptions) { o.DepthMax = 20500 }},
		{"negative buffer", func(o *VolumeOptions) { o.Buffer = -1 }},
		{"zero levels", func(o *VolumeOptions) { o.Levels = 0 }},
	}

	stations := StationSet{station("A", 47.0, 8.0)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			_, err := Configure(stations, opts)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestConfigure_EmptyStations(t *testing.T) {
	_, err := Configure(StationSet{}, DefaultVolumeOptions())
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestProjection_Origin(t *testing.T) {
	proj := NewProjection(orb.Point{8.3, 47.05})
	got := proj.Project(orb.Point{8.3, 47.05})
	assert.Equal(t, orb.Point{0, 0}, got)

	north := proj.Project(orb.Point{8.3, 48.05})
	assert.InDelta(t, 0, north[0], 1e-9)
	assert.InDelta(t, math.Pi/180*EarthRadiusM, north[1], 1e-6)
}

func TestProjection_UnprojectRoundTrip(t *testing.T) {
	proj := NewProjection(orb.Point{99.22, 2.13})
	for _, pt := range []orb.Point{{99.22, 2.13}, {99.25, 2.11}, {99.19, 2.17}} {
		back := proj.Unproject(proj.Project(pt))
		assert.InDelta(t, pt.Lon(), back.Lon(), 1e-12)
		assert.InDelta(t, pt.Lat(), back.Lat(), 1e-12)
	}
}

func TestStation_Validate(t *testing.T) {
	assert.NoError(t, station("OK", 90, -180).Validate())
	assert.Error(t, station("LAT", 90.5, 0).Validate())
	assert.Error(t, station("LON", 0, 181).Validate())
}
