package core

import "time"

// Component names contributing to a composite trust score.
const (
	ComponentParentScore      = "parent_score"
	ComponentPlatformPresence = "platform_presence"
	ComponentActivityScore    = "activity_score"
	ComponentReputationScore  = "reputation_score"
)

// TrustRequest is the payload for /api/v1/verify-trust.
type TrustRequest struct {
	AgentID   string                 `json:"agent_id"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Platforms []string               `json:"platforms,omitempty"` // e.g. github, nearai, clawfriend
}

// TrustReport is the result of a trust verification. Constructed fresh per
// request and immutable once returned; never persisted.
type TrustReport struct {
	AgentID    string             `json:"agent_id"`
	TrustScore float64            `json:"trust_score"` // 0-100
	Components map[string]float64 `json:"components"`  // scores that were actually gathered
	Verified   bool               `json:"verified"`
	Confidence float64            `json:"confidence"` // 0-1
	Timestamp  time.Time          `json:"timestamp"`
	ProofURL   string             `json:"proof_url,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// ProvenanceRequest is the payload for /api/v1/verify-provenance.
type ProvenanceRequest struct {
	Claim       string `json:"claim"`
	AgentID     string `json:"agent_id"`
	Action      Action `json:"-"`
	EvidenceURL string `json:"evidence_url,omitempty"`
}

// ProvenanceReport carries verification evidence produced entirely by the
// external provenance collaborator. This service only passes it through,
// stamping a timestamp when the collaborator omits one.
type ProvenanceReport struct {
	Verified     bool                   `json:"verified"`
	Confidence   float64                `json:"confidence"` // 0-1
	RecordingURL string                 `json:"recording_url,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Details      map[string]interface{} `json:"details"`
}

// AgentProfile is the public profile returned by /api/v1/agent/{id}.
type AgentProfile struct {
	AgentID     string                   `json:"agent_id"`
	Identity    map[string]interface{}   `json:"identity"`
	Reputation  map[string]interface{}   `json:"reputation"`
	History     []map[string]interface{} `json:"history"`
	LastUpdated time.Time                `json:"last_updated"`
}
