package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, s *Server) map[string]bool {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthReflectsState(t *testing.T) {
	s := New("0")

	resp := getHealth(t, s)
	assert.False(t, resp["running"])
	assert.False(t, resp["submit_ok"])

	s.SetRunning(true)
	s.SetSubmitHealthy(true)
	resp = getHealth(t, s)
	assert.True(t, resp["running"])
	assert.True(t, resp["submit_ok"])

	s.SetSubmitHealthy(false)
	resp = getHealth(t, s)
	assert.True(t, resp["running"])
	assert.False(t, resp["submit_ok"])
}
