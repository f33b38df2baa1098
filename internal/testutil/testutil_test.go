package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/coverage.planner/internal/planner/occupancy"
)

func TestAssertStatusCode(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
}

func TestNewTestRequest(t *testing.T) {
	req := NewTestRequest(http.MethodGet, "/api/plans?limit=3")
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "3", req.URL.Query().Get("limit"))
}

func TestDecodeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteString(`{"status":"ok"}`)

	var got map[string]string
	DecodeJSON(t, rec, &got)
	assert.Equal(t, "ok", got["status"])
}

func TestNewRoomMap(t *testing.T) {
	m := NewRoomMap(t, 5, 4, 0.5)

	assert.Equal(t, 5, m.SizeInCellsX())
	assert.Equal(t, 4, m.SizeInCellsY())
	assert.Equal(t, occupancy.Lethal, m.Cost(0, 2))
	assert.Equal(t, occupancy.Lethal, m.Cost(4, 2))
	assert.Equal(t, occupancy.Lethal, m.Cost(2, 0))
	assert.Equal(t, occupancy.Lethal, m.Cost(2, 3))
	assert.Equal(t, occupancy.FreeSpace, m.Cost(2, 2))
}
