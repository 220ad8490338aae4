// Package geom holds the 2D primitives shared by every planning stage.
//
// Responsibilities: point representation, finite-coordinate validation,
// bounding boxes, centroids, rotation and unit headings.
// Key types: Point, Rect.
//
// Points are identified by their position in the input slice, never by value.
// Duplicate coordinates are legal and must not collapse into one visit.
package geom
