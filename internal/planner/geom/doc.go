// Package geom holds the world-frame pose and heading helpers shared by the
// planner layers.
//
// Positions are gonum r2 vectors and orientations are gonum quaternions so
// the grid, path and emit packages agree on one representation.
package geom
