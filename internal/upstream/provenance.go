package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/trustverifier/backend/internal/core"
)

// ProvenanceClient forwards claims to the browser-automation provenance
// service and returns its evidence verbatim. The only local touch is a
// timestamp when the collaborator omits one; upstream errors are surfaced
// as-is, with no local reinterpretation.
type ProvenanceClient struct {
	client *http.Client
	url    string
}

func NewProvenanceClient(client *http.Client, url string) *ProvenanceClient {
	return &ProvenanceClient{client: client, url: url}
}

// Verify forwards the claim and action descriptor to the provenance service.
func (c *ProvenanceClient) Verify(ctx context.Context, req core.ProvenanceRequest) (core.ProvenanceReport, error) {
	if c.url == "" {
		// No collaborator wired yet: report unverified with zero confidence
		// rather than failing the endpoint.
		return core.ProvenanceReport{
			Verified:   false,
			Confidence: 0,
			Timestamp:  time.Now().UTC(),
			Details: map[string]interface{}{
				"status":  "not_implemented",
				"message": "provenance service integration pending",
			},
		}, nil
	}

	payload := map[string]interface{}{
		"claim":    req.Claim,
		"agent_id": req.AgentID,
		"action":   req.Action.Wire(),
	}
	if req.EvidenceURL != "" {
		payload["evidence_url"] = req.EvidenceURL
	}

	// Timestamp is a pointer so an omitted upstream field is detectable.
	var resp struct {
		Verified     bool                   `json:"verified"`
		Confidence   float64                `json:"confidence"`
		RecordingURL string                 `json:"recording_url"`
		Timestamp    *time.Time             `json:"timestamp"`
		Details      map[string]interface{} `json:"details"`
	}
	if err := postJSON(ctx, c.client, c.url, payload, &resp); err != nil {
		return core.ProvenanceReport{}, err
	}

	report := core.ProvenanceReport{
		Verified:     resp.Verified,
		Confidence:   resp.Confidence,
		RecordingURL: resp.RecordingURL,
		Details:      resp.Details,
	}
	if resp.Timestamp != nil {
		report.Timestamp = *resp.Timestamp
	} else {
		report.Timestamp = time.Now().UTC()
	}
	if report.Details == nil {
		report.Details = map[string]interface{}{}
	}
	return report, nil
}
