package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustverifier/backend/internal/core"
)

func provenanceRequest() core.ProvenanceRequest {
	return core.ProvenanceRequest{
		Claim:   "agent authored commit abc123",
		AgentID: "did:agent:alpha",
		Action:  core.GitCommitAction{Repo: "clawtech/verifier", SHA: "abc123"},
	}
}

func TestProvenanceVerifyPassthrough(t *testing.T) {
	upstream := map[string]interface{}{
		"verified":      true,
		"confidence":    0.91,
		"recording_url": "https://evidence.example.com/rec/42",
		"timestamp":     "2026-08-01T12:00:00Z",
		"details": map[string]interface{}{
			"screenshots": []interface{}{"s1.png"},
			"notes":       "commit visible on repo page",
		},
	}

	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(upstream)
	}))
	defer srv.Close()

	client := NewProvenanceClient(srv.Client(), srv.URL)
	report, err := client.Verify(context.Background(), provenanceRequest())
	require.NoError(t, err)

	// The collaborator's verdict comes back untouched.
	assert.True(t, report.Verified)
	assert.Equal(t, 0.91, report.Confidence)
	assert.Equal(t, "https://evidence.example.com/rec/42", report.RecordingURL)
	assert.Equal(t, upstream["details"], report.Details)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), report.Timestamp.UTC())

	// The outbound payload carries the typed action in wire form.
	action, ok := got["action"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "git_commit", action["type"])
	assert.Equal(t, "abc123", action["sha"])
}

func TestProvenanceVerifyInjectsTimestampWhenOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"verified":   false,
			"confidence": 0.2,
		})
	}))
	defer srv.Close()

	client := NewProvenanceClient(srv.Client(), srv.URL)

	before := time.Now().UTC()
	report, err := client.Verify(context.Background(), provenanceRequest())
	require.NoError(t, err)

	assert.False(t, report.Timestamp.Before(before))
	assert.False(t, report.Timestamp.After(time.Now().UTC()))
	assert.NotNil(t, report.Details)
}

func TestProvenanceVerifySurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"browser pool exhausted"}`))
	}))
	defer srv.Close()

	client := NewProvenanceClient(srv.Client(), srv.URL)
	_, err := client.Verify(context.Background(), provenanceRequest())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
	assert.Contains(t, statusErr.Body, "browser pool exhausted")
}

func TestProvenanceVerifyNoEndpoint(t *testing.T) {
	client := NewProvenanceClient(NewHTTPClient(), "")
	report, err := client.Verify(context.Background(), provenanceRequest())
	require.NoError(t, err)

	assert.False(t, report.Verified)
	assert.Zero(t, report.Confidence)
	assert.Equal(t, "not_implemented", report.Details["status"])
}
