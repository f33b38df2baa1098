// Package path turns an ordered list of visited tiles into a sparse list of
// world-frame waypoints.
//
// A waypoint is emitted only where the direction of travel changes, plus
// the first and last tile. Headings follow the direction of travel leaving
// each waypoint; 180° reversals get an intermediate turn-in-place waypoint
// so the rotation sense is explicit, and a connector pair bridges the robot's
// real start pose to the first tile.
//
// All per-request memory lives in a composeState created by Compose, so a
// single Composer may serve concurrent requests.
package path
