package pilot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotsFromCommits(agentID string, commits []int) []Snapshot {
	snaps := make([]Snapshot, len(commits))
	for i, c := range commits {
		snaps[i] = Snapshot{
			AgentID: agentID,
			Date:    fmt.Sprintf("2026-08-%02d", i+1),
			Commits: c,
		}
	}
	return snaps
}

func TestComputePDRSteadyVelocity(t *testing.T) {
	snaps := snapshotsFromCommits("getclawe", []int{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7})

	pdr, provenance := ComputePDR("getclawe", snaps, "gerundium@agentmail.to")

	assert.InDelta(t, 1.0, pdr, 1e-9)
	assert.Equal(t, "velocity_based_pdr_v1", provenance["method"])
	assert.Equal(t, "gerundium@agentmail.to", provenance["verifier"])

	computation := provenance["computation"].(map[string]interface{})
	assert.Equal(t, 7, computation["baseline_days"])
	assert.Equal(t, 7, computation["current_days"])
}

func TestComputePDRAcceleratingVelocityIsCapped(t *testing.T) {
	// One commit/day for a week, then five/day: raw ratio 5.0, capped at 2.0.
	snaps := snapshotsFromCommits("getclawe", []int{1, 1, 1, 1, 1, 1, 1, 5, 5, 5, 5, 5, 5, 5})

	pdr, _ := ComputePDR("getclawe", snaps, "gerundium@agentmail.to")
	assert.Equal(t, 2.0, pdr)
}

func TestComputePDRReleasesWeighFiveCommits(t *testing.T) {
	snaps := snapshotsFromCommits("getclawe", []int{5, 5, 5, 5, 5, 5, 5})
	// Last seven days: no commits, one release per day = same weighted velocity.
	for i := 0; i < 7; i++ {
		snaps = append(snaps, Snapshot{
			AgentID:  "getclawe",
			Date:     fmt.Sprintf("2026-08-%02d", i+8),
			Releases: 1,
		})
	}

	pdr, _ := ComputePDR("getclawe", snaps, "gerundium@agentmail.to")
	assert.InDelta(t, 1.0, pdr, 1e-9)
}

func TestComputePDRZeroBaseline(t *testing.T) {
	// Silent first week, active second week: PDR defaults to 1.0.
	active := snapshotsFromCommits("getclawe", []int{0, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3, 3, 3})
	pdr, _ := ComputePDR("getclawe", active, "gerundium@agentmail.to")
	assert.Equal(t, 1.0, pdr)

	// Entirely silent agent: PDR 0.5.
	silent := snapshotsFromCommits("getclawe", []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	pdr, _ = ComputePDR("getclawe", silent, "gerundium@agentmail.to")
	assert.Equal(t, 0.5, pdr)
}

func TestComputePDRShortHistory(t *testing.T) {
	// Fewer than seven days: baseline and current windows coincide.
	snaps := snapshotsFromCommits("getclawe", []int{2, 4, 6})
	pdr, _ := ComputePDR("getclawe", snaps, "gerundium@agentmail.to")
	assert.InDelta(t, 1.0, pdr, 1e-9)
}

func TestComputePDRNoSnapshots(t *testing.T) {
	pdr, provenance := ComputePDR("getclawe", nil, "gerundium@agentmail.to")
	assert.Zero(t, pdr)
	assert.Equal(t, "no_snapshots", provenance["error"])
}

func TestComputeQuality(t *testing.T) {
	snaps := []Snapshot{
		{AgentID: "getclawe", Date: "2026-08-01"},
		{AgentID: "getclawe", Date: "2026-08-02", StarsGained: 5, Contributors: 2, IssuesClosed: 3},
	}

	// Latest snapshot only: (5 + 2*5 + 3*2) * 2 = 42
	assert.Equal(t, 42.0, ComputeQuality(snaps))

	// Cap at 100.
	hot := []Snapshot{{AgentID: "getclawe", Date: "2026-08-01", StarsGained: 200}}
	assert.Equal(t, 100.0, ComputeQuality(hot))

	// No data: neutral 50.
	assert.Equal(t, 50.0, ComputeQuality(nil))
}

func TestComputeOverall(t *testing.T) {
	assert.InDelta(t, 82.6, ComputeOverall(1.0, 42), 1e-9)  // 70 + 12.6
	assert.InDelta(t, 170.0, ComputeOverall(2.0, 100), 1e-9)
	assert.InDelta(t, 35.0, ComputeOverall(0.5, 0), 1e-9)
}

func TestCohortMembership(t *testing.T) {
	assert.Len(t, Cohort, 10)
	assert.True(t, InCohort("getclawe"))
	assert.True(t, InCohort("JIGGAI"))
	assert.True(t, Cohort["JIGGAI"].Voluntary)
	assert.False(t, InCohort("not-a-member"))
}
