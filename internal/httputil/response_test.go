package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "test error")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "test error", resp["error"])
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, []int{1, 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `[1,2]`, rec.Body.String())
}

func TestWriteBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteBody(rec, "text/html; charset=utf-8", []byte("<html></html>"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
}

func TestRequireMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.True(t, RequireMethod(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.MethodGet))

	rec = httptest.NewRecorder()
	assert.False(t, RequireMethod(rec, httptest.NewRequest(http.MethodPost, "/", nil), http.MethodGet))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		target  string
		want    int
		wantErr bool
	}{
		{"/api/plans", 20, false},
		{"/api/plans?limit=5", 5, false},
		{"/api/plans?limit=0", 0, false},
		{"/api/plans?limit=-1", 0, true},
		{"/api/plans?limit=abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := QueryInt(httptest.NewRequest(http.MethodGet, tt.target, nil), "limit", 20)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
