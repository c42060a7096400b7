package pilot

import (
	"math"
	"time"
)

// Scoring constants for pilot v1. Releases count five commits' worth of
// velocity; PDR is capped at 200% of baseline.
const (
	releaseWeight  = 5
	pdrCap         = 2.0
	velocityWindow = 7 // days
)

// ComputePDR computes the Promise Delivery Ratio from ordered snapshots
// (oldest first). Pilot v1 uses observable activity as a proxy for
// delivery: PDR = current velocity / baseline velocity.
func ComputePDR(agentID string, snapshots []Snapshot, verifier string) (float64, map[string]interface{}) {
	if len(snapshots) == 0 {
		return 0.0, map[string]interface{}{"error": "no_snapshots"}
	}

	baseline := snapshots
	if len(snapshots) >= velocityWindow {
		baseline = snapshots[:velocityWindow]
	}

	baselineCommits, baselineReleases := 0, 0
	for _, s := range baseline {
		baselineCommits += s.Commits
		baselineReleases += s.Releases
	}
	baselineDays := len(baseline)
	baselineVelocity := float64(baselineCommits+baselineReleases*releaseWeight) / float64(baselineDays)

	recent := snapshots
	if len(snapshots) >= velocityWindow {
		recent = snapshots[len(snapshots)-velocityWindow:]
	}

	currentCommits, currentReleases := 0, 0
	for _, s := range recent {
		currentCommits += s.Commits
		currentReleases += s.Releases
	}
	currentDays := len(recent)
	currentVelocity := float64(currentCommits+currentReleases*releaseWeight) / float64(currentDays)

	var pdr float64
	if baselineVelocity == 0 {
		if currentVelocity > 0 {
			pdr = 1.0
		} else {
			pdr = 0.5
		}
	} else {
		pdr = math.Min(currentVelocity/baselineVelocity, pdrCap)
	}

	provenance := map[string]interface{}{
		"method": "velocity_based_pdr_v1",
		"source": "activity_snapshots",
		"computation": map[string]interface{}{
			"baseline_commits":  baselineCommits,
			"baseline_releases": baselineReleases,
			"baseline_days":     baselineDays,
			"baseline_velocity": round2(baselineVelocity),
			"current_commits":   currentCommits,
			"current_releases":  currentReleases,
			"current_days":      currentDays,
			"current_velocity":  round2(currentVelocity),
			"pdr":               round3(pdr),
		},
		"formula":   "PDR = current_velocity / baseline_velocity (capped at 2.0)",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"verifier":  verifier,
	}

	return pdr, provenance
}

// ComputeQuality computes the quality score from the latest snapshot's
// observables: stars + contributors*5 + issues_closed*2, doubled and capped
// at 100.
func ComputeQuality(snapshots []Snapshot) float64 {
	if len(snapshots) == 0 {
		return 50.0
	}

	latest := snapshots[len(snapshots)-1]
	quality := latest.StarsGained + latest.Contributors*5 + latest.IssuesClosed*2

	return math.Min(float64(quality*2), 100)
}

// ComputeOverall combines PDR and quality into the overall pilot score.
func ComputeOverall(pdr, quality float64) float64 {
	return pdr*70 + quality*0.3
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
