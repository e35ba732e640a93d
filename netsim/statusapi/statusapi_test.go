package statusapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowsim/controller/netsim"
)

func TestServer_Status_ReflectsLastUpdate(t *testing.T) {
	s := New()
	s.Update(Snapshot{WindowStart: 10, WindowEnd: 20, RoundCount: 3})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"window_start":10`)
	assert.Contains(t, rec.Body.String(), `"round_count":3`)
}

func TestServer_Health_ReturnsOK(t *testing.T) {
	s := New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestSnapshot_ZeroValueIsValid(t *testing.T) {
	var snap Snapshot
	assert.Equal(t, netsim.SimulationTime(0), snap.WindowStart)
}
