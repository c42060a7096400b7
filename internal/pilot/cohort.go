// Package pilot implements the agent trust-stack pilot: daily activity
// snapshots are ingested for a fixed cohort of agents and turned into
// Promise Delivery Ratio and quality scores with a provenance chain
// documenting the computation.
package pilot

// CohortMember describes one agent enrolled in the pilot.
type CohortMember struct {
	ScoreBaseline int    `json:"score_baseline"`
	Category      string `json:"category"`
	Voluntary     bool   `json:"voluntary,omitempty"`
}

// Cohort is the fixed 10-agent pilot cohort.
var Cohort = map[string]CohortMember{
	"getclawe":     {ScoreBaseline: 8, Category: "coordination"},
	"ucsandman":    {ScoreBaseline: 8, Category: "observability"},
	"star-ga":      {ScoreBaseline: 7, Category: "infrastructure"},
	"sene1337":     {ScoreBaseline: 7, Category: "security"},
	"DiffDelta":    {ScoreBaseline: 7, Category: "identity"},
	"clawdeckio":   {ScoreBaseline: 7, Category: "observability"},
	"JIGGAI":       {ScoreBaseline: 6, Category: "tooling", Voluntary: true},
	"profbernardoj": {ScoreBaseline: 6, Category: "infrastructure"},
	"marian2js":    {ScoreBaseline: 6, Category: "coordination"},
	"toml0006":     {ScoreBaseline: 6, Category: "observability"},
}

// InCohort reports whether the agent is enrolled in the pilot.
func InCohort(agentID string) bool {
	_, ok := Cohort[agentID]
	return ok
}
