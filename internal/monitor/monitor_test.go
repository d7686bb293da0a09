package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthNoAuthRequired(t *testing.T) {
	s := New("secret")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StatusRequiresToken(t *testing.T) {
	s := New("secret")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_StatusWithValidToken(t *testing.T) {
	s := New("secret")
	s.Update(Status{Phase: "phase1", Iteration: 42})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_NoTokenMeansOpen(t *testing.T) {
	s := New("")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_GraphStats(t *testing.T) {
	s := New("")
	s.SetGraphStats(GraphStats{Nodes: 10, Edges: 20, StrainedEdges: 5})

	req := httptest.NewRequest(http.MethodGet, "/graph/stats", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, GraphStats{Nodes: 10, Edges: 20, StrainedEdges: 5}, s.GraphStats())
}
