package domain

// Location is the reference point of a search volume. Shifts, elevation and
// depth are relative offsets in metres.
type Location struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	EastShift  float64 `json:"east_shift"`
	NorthShift float64 `json:"north_shift"`
	Elevation  float64 `json:"elevation"`
	Depth      float64 `json:"depth"`
}

// Bounds is a [min, max] pair in metres relative to the reference location.
type Bounds [2]float64

// Span returns max - min.
func (b Bounds) Span() float64 { return b[1] - b[0] }

// Mid returns the midpoint of the pair.
func (b Bounds) Mid() float64 { return (b[0] + b[1]) / 2 }

// VolumeConfig is the octree search-volume record consumed by the
// downstream location search.
type VolumeConfig struct {
	Location     Location `json:"location"`
	RootNodeSize float64  `json:"root_node_size"`
	Levels       int      `json:"n_levels"`
	EastBounds   Bounds   `json:"east_bounds"`
	NorthBounds  Bounds   `json:"north_bounds"`
	DepthBounds  Bounds   `json:"depth_bounds"`
}

// VolumeOptions parameterises [Configure].
type VolumeOptions struct {
	GridUnit float64 // root node edge length, metres
	DepthMax float64 // lower depth bound, metres; a multiple of GridUnit
	Buffer   float64 // padding added on each side of the station extents, metres
	Levels   int     // octree level count
}

// DefaultVolumeOptions mirrors the settings the detection runs were tuned with.
func DefaultVolumeOptions() VolumeOptions {
	return VolumeOptions{
		GridUnit: 1000,
		DepthMax: 20000,
		Buffer:   500,
		Levels:   5,
	}
}
