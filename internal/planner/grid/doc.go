// Package grid down-samples a fine occupancy map into the coarse planning
// grid that coverage strategies walk.
//
// Key types: Tile, Grid, Scale, Result.
//
// A Grid is built once per planning request and is read-only afterwards, so
// it may be shared freely between goroutines.
package grid
