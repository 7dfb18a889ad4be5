// Package domain models seismic station tables and the two computations the
// detection workflow runs over them: homogeneous station selection and the
// derivation of a local octree search volume.
//
// # Station Tables
//
// Stations are loaded from delimited text with at least the columns
// "station", "latitude" and "longitude" (WGS84 decimal degrees). Optional
// "elevation" and "depth" columns are parsed but never used by the
// computations here. Station codes are expected to be unique; duplicates
// are a caller error and are not deduplicated.
//
// # Homogeneous Selection
//
// [Select] performs farthest-point (greedy max-min) sampling:
//
//  1. The first station is drawn uniformly with the supplied [Rand].
//  2. Each following pick is the unselected station whose distance to its
//     nearest already-selected station is largest. Ties go to the lowest
//     input index.
//
// Distances are Euclidean over raw (longitude, latitude) degrees. This is
// a planar approximation that only holds for compact station clusters; it
// is kept as-is because selections produced by earlier runs depend on it.
//
// # Search Volume
//
// [Configure] centres a local east/north frame on the bounding-box midpoint
// of the station coordinates (not the centroid) and projects every station
// with an equirectangular approximation:
//
//	north = (lat - lat0) · R
//	east  = (lon - lon0) · R · cos(lat0)
//
// with R = 6 371 000 m and angles in radians. The projected extents plus a
// buffer on each side are rounded up to a whole number of grid units and
// centred on the projected data midpoint. Depth bounds are always
// [0, DepthMax]. The approximation degrades for networks spanning more than
// a few hundred kilometres; downstream search configurations rely on these
// exact values, so it is not replaced by a geodesic projection.
package domain
