// Package spiral orders points by projecting them onto an Archimedean spiral.
//
// Project converts every point to polar form about a centre, walks spiral
// samples outward and hands each sample the nearest point nobody has taken
// yet. The result approximates a spiral traversal; it is greedy and makes no
// claim to minimal travel.
package spiral
