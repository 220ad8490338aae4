// Package snake orders the points of one cluster row by row.
//
// Path buckets points into rows by rounded Y and walks them serpentine.
// OptimizedPath grows rows from spatial-index neighbourhoods and reorders
// each row greedily with a pull toward the previous row's direction.
//
// Both return Steps: indices into the caller's point slice, with Connector
// set on the duplicate waypoints Path inserts between rows.
package snake
