// Package testutil provides shared test helpers and map fixtures for the
// planner packages that sit above occupancy.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/coverage.planner/internal/planner/occupancy"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// DecodeJSON decodes the recorder body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// NewOpenMap returns a free width×height costmap with its origin at (0,0).
func NewOpenMap(t *testing.T, width, height int, resolution float64) *occupancy.Map {
	t.Helper()
	m, err := occupancy.NewMap(width, height, resolution, r2.Vec{})
	AssertNoError(t, err)
	return m
}

// NewRoomMap returns a map whose outermost ring of cells is lethal.
func NewRoomMap(t *testing.T, width, height int, resolution float64) *occupancy.Map {
	t.Helper()
	m := NewOpenMap(t, width, height, resolution)
	m.FillRect(0, 0, width, 1, occupancy.Lethal)
	m.FillRect(0, height-1, width, height, occupancy.Lethal)
	m.FillRect(0, 0, 1, height, occupancy.Lethal)
	m.FillRect(width-1, 0, width, height, occupancy.Lethal)
	return m
}
