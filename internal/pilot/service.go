package pilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/metrics"
)

var (
	// ErrNotInCohort means the agent is not enrolled in the pilot.
	ErrNotInCohort = errors.New("agent not in pilot cohort")
	// ErrNoSnapshots means no snapshot data exists for the agent.
	ErrNoSnapshots = errors.New("no snapshot data for agent")
	// ErrSnapshotNotFound means the specific date has no snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

const (
	snapshotKeyPrefix = "pilot:snapshot:"
	scoreKeyPrefix    = "pilot:score:"
)

// Service stores pilot snapshots and computes cohort scores. Snapshots and
// cached scores live in the shared store (Redis in production, memory in dev).
type Service struct {
	store    cache.Store
	verifier string // e-mail of the verifying parent agent, recorded in provenance
	metrics  *metrics.Metrics
}

// NewService creates the pilot service. m may be nil in tests.
func NewService(store cache.Store, verifier string, m *metrics.Metrics) *Service {
	return &Service{store: store, verifier: verifier, metrics: m}
}

// Ingest stores a daily snapshot. Agents outside the cohort are rejected.
func (s *Service) Ingest(ctx context.Context, snap Snapshot) error {
	if !InCohort(snap.AgentID) {
		return fmt.Errorf("%w: %s", ErrNotInCohort, snap.AgentID)
	}
	if _, err := time.Parse("2006-01-02", snap.Date); err != nil {
		return fmt.Errorf("invalid snapshot date %q: expected YYYY-MM-DD", snap.Date)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, snapshotKey(snap.AgentID, snap.Date), raw, 0); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPilotIngest(snap.AgentID)
	}
	return nil
}

// Score computes (and caches) the trust score for a cohort agent from its
// stored snapshots.
func (s *Service) Score(ctx context.Context, agentID string) (Score, error) {
	if !InCohort(agentID) {
		return Score{}, fmt.Errorf("%w: %s", ErrNotInCohort, agentID)
	}

	snapshots, err := s.snapshots(ctx, agentID)
	if err != nil {
		return Score{}, err
	}
	if len(snapshots) == 0 {
		return Score{}, fmt.Errorf("%w: %s", ErrNoSnapshots, agentID)
	}

	pdr, provenance := ComputePDR(agentID, snapshots, s.verifier)
	quality := ComputeQuality(snapshots)

	score := Score{
		AgentID:      agentID,
		PDR:          pdr,
		QualityScore: quality,
		OverallScore: ComputeOverall(pdr, quality),
		Provenance:   provenance,
		LastUpdated:  time.Now().UTC(),
	}

	if raw, err := json.Marshal(score); err == nil {
		s.store.Set(ctx, scoreKeyPrefix+agentID, raw, 0)
	}

	return score, nil
}

// CohortStatus reports per-agent snapshot counts, latest dates, and cached
// scores for the whole cohort.
func (s *Service) CohortStatus(ctx context.Context) (CohortStatus, error) {
	agents := make([]CohortAgent, 0, len(Cohort))
	dateSet := make(map[string]struct{})
	active := 0

	// Stable ordering for the response
	ids := make([]string, 0, len(Cohort))
	for id := range Cohort {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, agentID := range ids {
		member := Cohort[agentID]

		dates, err := s.snapshotDates(ctx, agentID)
		if err != nil {
			return CohortStatus{}, err
		}

		agent := CohortAgent{
			AgentID:       agentID,
			Category:      member.Category,
			Voluntary:     member.Voluntary,
			SnapshotCount: len(dates),
		}
		if len(dates) > 0 {
			active++
			agent.LatestSnapshot = dates[len(dates)-1]
			dateSet[agent.LatestSnapshot] = struct{}{}
		}

		if raw, err := s.store.Get(ctx, scoreKeyPrefix+agentID); err == nil {
			var cached Score
			if err := json.Unmarshal(raw, &cached); err == nil {
				overall := cached.OverallScore
				agent.CurrentScore = &overall
			}
		}

		agents = append(agents, agent)
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return CohortStatus{
		TotalAgents:   len(Cohort),
		ActiveAgents:  active,
		SnapshotDates: dates,
		Agents:        agents,
		LastUpdated:   time.Now().UTC(),
	}, nil
}

// Snapshot returns the raw snapshot for an agent and date, for transparency.
func (s *Service) Snapshot(ctx context.Context, agentID, date string) (Snapshot, error) {
	if !InCohort(agentID) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotInCohort, agentID)
	}

	raw, err := s.store.Get(ctx, snapshotKey(agentID, date))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return Snapshot{}, fmt.Errorf("%w: %s on %s", ErrSnapshotNotFound, agentID, date)
		}
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// snapshots loads all snapshots for an agent, ordered by date ascending.
func (s *Service) snapshots(ctx context.Context, agentID string) ([]Snapshot, error) {
	dates, err := s.snapshotDates(ctx, agentID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(dates))
	for _, date := range dates {
		raw, err := s.store.Get(ctx, snapshotKey(agentID, date))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// snapshotDates lists the stored snapshot dates for an agent, ascending.
// ISO dates sort correctly as strings.
func (s *Service) snapshotDates(ctx context.Context, agentID string) ([]string, error) {
	prefix := snapshotKey(agentID, "")
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		dates = append(dates, strings.TrimPrefix(key, prefix))
	}
	sort.Strings(dates)
	return dates, nil
}

func snapshotKey(agentID, date string) string {
	return snapshotKeyPrefix + agentID + ":" + date
}
