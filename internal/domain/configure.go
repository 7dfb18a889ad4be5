package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusM is the mean Earth radius used by the local projection (metres).
const EarthRadiusM = 6371000.0

// multipleTolerance absorbs float noise when checking DepthMax/GridUnit.
const multipleTolerance = 1e-9

// Projection maps geographic coordinates onto a local east/north plane
// around an origin using the equirectangular approximation.
type Projection struct {
	Origin orb.Point // (lon, lat) in degrees
	cosLat float64
}

// NewProjection returns a projection centred on origin.
func NewProjection(origin orb.Point) Projection {
	return Projection{Origin: origin, cosLat: math.Cos(radians(origin.Lat()))}
}

// Project returns the (east, north) offset of p from the origin in metres.
func (p Projection) Project(pt orb.Point) orb.Point {
	north := radians(pt.Lat()-p.Origin.Lat()) * EarthRadiusM
	east := radians(pt.Lon()-p.Origin.Lon()) * EarthRadiusM * p.cosLat
	return orb.Point{east, north}
}

// Unproject is the inverse of Project.
func (p Projection) Unproject(offset orb.Point) orb.Point {
	lat := p.Origin.Lat() + degrees(offset[1]/EarthRadiusM)
	lon := p.Origin.Lon() + degrees(offset[0]/(EarthRadiusM*p.cosLat))
	return orb.Point{lon, lat}
}

// GeographicCenter returns the bounding-box midpoint of the stations' coordinates.
func GeographicCenter(stations StationSet) orb.Point {
	return stations.MultiPoint().Bound().Center()
}

// Configure derives the search volume enclosing stations.
//
// Each horizontal span is the projected station extent plus opts.Buffer on
// both sides, rounded up to a whole number of grid units and centred on the
// projected data midpoint. A single station or zero buffer may produce
// zero-width bounds; that is a valid result.
func Configure(stations StationSet, opts VolumeOptions) (VolumeConfig, error) {
	if err := opts.Validate(); err != nil {
		return VolumeConfig{}, err
	}
	if len(stations) == 0 {
		return VolumeConfig{}, fmt.Errorf("%w: no stations to configure a volume for", ErrInvalidParameter)
	}

	center := GeographicCenter(stations)
	proj := NewProjection(center)

	local := make(orb.MultiPoint, len(stations))
	for i, s := range stations {
		local[i] = proj.Project(s.Point())
	}
	extent := local.Bound()
	mid := extent.Center()

	return VolumeConfig{
		Location: Location{
			Lat: center.Lat(),
			Lon: center.Lon(),
		},
		RootNodeSize: opts.GridUnit,
		Levels:       opts.Levels,
		EastBounds:   centredBounds(mid[0], extent.Max[0]-extent.Min[0], opts),
		NorthBounds:  centredBounds(mid[1], extent.Max[1]-extent.Min[1], opts),
		DepthBounds:  Bounds{0, opts.DepthMax},
	}, nil
}

// centredBounds pads extent, rounds it up to whole grid units and centres it on mid.
func centredBounds(mid, extent float64, opts VolumeOptions) Bounds {
	span := math.Ceil((extent+2*opts.Buffer)/opts.GridUnit) * opts.GridUnit
	return Bounds{mid - span/2, mid + span/2}
}

// Validate reports options that violate the preconditions of [Configure].
func (o VolumeOptions) Validate() error {
	switch {
	case !(o.GridUnit > 0) || math.IsInf(o.GridUnit, 1):
		return fmt.Errorf("%w: grid unit must be positive, got %g", ErrInvalidParameter, o.GridUnit)
	case !(o.DepthMax >= 0) || math.IsInf(o.DepthMax, 1):
		return fmt.Errorf("%w: depth max must be non-negative, got %g", ErrInvalidParameter, o.DepthMax)
	case !isMultiple(o.DepthMax, o.GridUnit):
		return fmt.Errorf("%w: depth max %g is not a multiple of grid unit %g", ErrInvalidParameter, o.DepthMax, o.GridUnit)
	case !(o.Buffer >= 0) || math.IsInf(o.Buffer, 1):
		return fmt.Errorf("%w: buffer must be non-negative, got %g", ErrInvalidParameter, o.Buffer)
	case o.Levels <= 0:
		return fmt.Errorf("%w: level count must be positive, got %d", ErrInvalidParameter, o.Levels)
	}
	return nil
}

func isMultiple(v, unit float64) bool {
	q := v / unit
	return math.Abs(q-math.Round(q)) <= multipleTolerance*math.Max(1, q)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
