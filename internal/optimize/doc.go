// Package optimize refines an open visiting order with 2-opt segment reversal.
//
// The first point of the order is the fixed start of the path. The last point
// is free, so a reversal reaching the tail only pays for the edge it enters.
package optimize
