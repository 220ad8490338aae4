// Package spatial answers proximity queries over a fixed point set.
//
// Index is a uniform grid over the bounding box of the points with a single
// level of quadrant subdivision for crowded cells. It serves "k nearest
// points to q, skipping an exclusion mask" by expanding square rings of cells
// outward from the query cell, then sorting the gathered candidates by exact
// distance.
//
// RadiusIndex is a sparse cell hash sized to a fixed tolerance. It serves
// "every point within eps of point i" with a 3x3 cell scan.
//
// Both structures are immutable after construction and safe for concurrent
// readers. Rebuild them if the point set changes.
package spatial
