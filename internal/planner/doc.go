// Package planner runs a full coverage planning request: down-sample the
// map, order the free tiles with a coverage strategy, compose waypoints and
// publish them.
//
// Subpackages:
//
//   - occupancy: fine costmap input and map file loading
//   - grid: coarse tile grid construction
//   - coverage: strategies producing tile visit orders
//   - path: waypoint composition from a visit order
//   - emit: publication to sinks
//   - storage/sqlite: plan persistence
//   - monitor: charts, plots and the HTTP API
package planner
