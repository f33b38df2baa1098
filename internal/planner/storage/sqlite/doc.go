// Package sqlite persists published coverage plans in SQLite.
//
// All SQL for plans lives here so the planner packages stay free of
// storage concerns. The schema is owned by the embedded migrations.
package sqlite
