package pilot

import "time"

// Snapshot is one day of observed activity for a cohort agent, ingested
// from the upstream activity tracker.
type Snapshot struct {
	AgentID      string                 `json:"agent_id"`
	Date         string                 `json:"date"` // YYYY-MM-DD
	Commits      int                    `json:"commits"`
	Releases     int                    `json:"releases"`
	IssuesClosed int                    `json:"issues_closed"`
	PRsMerged    int                    `json:"prs_merged"`
	StarsGained  int                    `json:"stars_gained"`
	Contributors int                    `json:"contributors"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Score is the computed trust score for a pilot agent.
type Score struct {
	AgentID string `json:"agent_id"`
	// PDR is the Promise Delivery Ratio (0-2, velocity-based for pilot v1).
	PDR          float64                `json:"pdr"`
	QualityScore float64                `json:"quality_score"` // 0-100
	OverallScore float64                `json:"overall_score"` // 0-100 nominal
	Provenance   map[string]interface{} `json:"provenance_chain"`
	LastUpdated  time.Time              `json:"last_updated"`
}

// CohortAgent is one agent's row in the cohort status.
type CohortAgent struct {
	AgentID        string   `json:"agent_id"`
	Category       string   `json:"category"`
	Voluntary      bool     `json:"voluntary"`
	SnapshotCount  int      `json:"snapshot_count"`
	LatestSnapshot string   `json:"latest_snapshot,omitempty"`
	CurrentScore   *float64 `json:"current_score"`
}

// CohortStatus summarizes the entire pilot cohort.
type CohortStatus struct {
	TotalAgents   int           `json:"total_agents"`
	ActiveAgents  int           `json:"active_agents"`
	SnapshotDates []string      `json:"snapshot_dates"`
	Agents        []CohortAgent `json:"agents"`
	LastUpdated   time.Time     `json:"last_updated"`
}
