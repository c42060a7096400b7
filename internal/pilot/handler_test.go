package pilot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	RegisterRoutes(r.PathPrefix("/pilot").Subrouter(), newTestService(t))
	return r
}

func postSnapshot(t *testing.T, router *mux.Router, snap Snapshot) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/pilot/ingest", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIngestEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postSnapshot(t, router, Snapshot{AgentID: "getclawe", Date: "2026-08-01", Commits: 3})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ingested", body["status"])
	assert.Equal(t, "getclawe", body["agent_id"])
}

func TestIngestEndpointRejectsOutsider(t *testing.T) {
	router := newTestRouter(t)

	rec := postSnapshot(t, router, Snapshot{AgentID: "interloper", Date: "2026-08-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	router := newTestRouter(t)

	for _, date := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		rec := postSnapshot(t, router, Snapshot{AgentID: "star-ga", Date: date, Commits: 4, StarsGained: 3})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/pilot/score/star-ga", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var score Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, "star-ga", score.AgentID)
	assert.InDelta(t, 1.0, score.PDR, 1e-9)
	assert.NotEmpty(t, score.Provenance)
}

func TestScoreEndpointNotFound(t *testing.T) {
	router := newTestRouter(t)

	// Cohort member without snapshots.
	req := httptest.NewRequest(http.MethodGet, "/pilot/score/sene1337", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Not a cohort member at all.
	req = httptest.NewRequest(http.MethodGet, "/pilot/score/interloper", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCohortEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/pilot/cohort", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status CohortStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 10, status.TotalAgents)
	assert.Len(t, status.Agents, 10)
}

func TestSnapshotEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postSnapshot(t, router, Snapshot{AgentID: "toml0006", Date: "2026-08-01", Commits: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/pilot/snapshot/toml0006/2026-08-01", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Commits)

	req = httptest.NewRequest(http.MethodGet, "/pilot/snapshot/toml0006/2026-08-02", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
