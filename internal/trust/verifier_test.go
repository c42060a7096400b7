package trust

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/config"
	"github.com/trustverifier/backend/internal/core"
)

// fakeSources implements all four score source interfaces with configurable
// values and per-source failure switches.
type fakeSources struct {
	parent, platform, activity, reputation float64

	parentErr, platformErr, activityErr, reputationErr error

	parentCalls int64
}

func (f *fakeSources) ParentScore(ctx context.Context, agentID string, reqContext map[string]interface{}) (float64, error) {
	atomic.AddInt64(&f.parentCalls, 1)
	return f.parent, f.parentErr
}

func (f *fakeSources) PlatformPresence(ctx context.Context, agentID string, platforms []string) (float64, error) {
	return f.platform, f.platformErr
}

func (f *fakeSources) ActivityScore(ctx context.Context, agentID string) (float64, error) {
	return f.activity, f.activityErr
}

func (f *fakeSources) ReputationScore(ctx context.Context, agentID string) (float64, error) {
	return f.reputation, f.reputationErr
}

func newTestVerifier(f *fakeSources, store cache.Store, ttl time.Duration) *Verifier {
	agg := NewAggregator(config.Default().Trust)
	gatherer := NewGatherer(time.Second, nil, nil)
	sources := Sources{Parent: f, Platforms: f, Activity: f, Reputation: f}
	return NewVerifier(agg, gatherer, sources, store, ttl, nil)
}

func TestVerifyTrustAllSourcesHealthy(t *testing.T) {
	f := &fakeSources{parent: 80, platform: 70, activity: 75, reputation: 77}
	v := newTestVerifier(f, nil, 0)

	report, err := v.VerifyTrust(context.Background(), core.TrustRequest{
		AgentID:   "did:agent:alpha",
		Platforms: []string{"github"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 76.4, report.TrustScore, 1e-9)
	assert.True(t, report.Verified)
	assert.Len(t, report.Components, 4)
	assert.Equal(t, "trust score calculated successfully", report.Message)
}

func TestVerifyTrustNoPlatformsSkipsPlatformBranch(t *testing.T) {
	f := &fakeSources{parent: 80, platform: 70, activity: 75, reputation: 77}
	v := newTestVerifier(f, nil, 0)

	report, err := v.VerifyTrust(context.Background(), core.TrustRequest{AgentID: "did:agent:alpha"})
	require.NoError(t, err)

	assert.Len(t, report.Components, 3)
	assert.NotContains(t, report.Components, core.ComponentPlatformPresence)
	// Remaining weights renormalize: 0.5*80 + 0.25*75 + 0.25*77 = 78
	assert.InDelta(t, 78.0, report.TrustScore, 1e-9)
}

func TestVerifyTrustPartialOutage(t *testing.T) {
	f := &fakeSources{
		parent:        80,
		platform:      70,
		activity:      75,
		reputationErr: errors.New("reputation source down"),
	}
	v := newTestVerifier(f, nil, 0)

	report, err := v.VerifyTrust(context.Background(), core.TrustRequest{
		AgentID:   "did:agent:alpha",
		Platforms: []string{"github", "moltbook"},
	})
	require.NoError(t, err)

	assert.Len(t, report.Components, 3)
	assert.NotContains(t, report.Components, core.ComponentReputationScore)
	assert.InDelta(t, 76.25, report.TrustScore, 1e-9)
}

func TestVerifyTrustTotalOutage(t *testing.T) {
	down := errors.New("down")
	f := &fakeSources{parentErr: down, platformErr: down, activityErr: down, reputationErr: down}
	v := newTestVerifier(f, nil, 0)

	_, err := v.VerifyTrust(context.Background(), core.TrustRequest{
		AgentID:   "did:agent:alpha",
		Platforms: []string{"github"},
	})
	assert.ErrorIs(t, err, core.ErrInsufficientSignal)
}

func TestVerifyTrustInvalidAgentID(t *testing.T) {
	f := &fakeSources{parent: 80}
	v := newTestVerifier(f, nil, 0)

	for _, agentID := range []string{"", "has space", "tab\tchar"} {
		_, err := v.VerifyTrust(context.Background(), core.TrustRequest{AgentID: agentID})
		assert.ErrorIs(t, err, core.ErrInvalidAgentID, "agent id %q", agentID)
	}

	// Validation fails before any collaborator is contacted.
	assert.Zero(t, atomic.LoadInt64(&f.parentCalls))
}

func TestVerifyTrustCachesReport(t *testing.T) {
	f := &fakeSources{parent: 80, activity: 75, reputation: 77}
	store := cache.NewMemoryStore()
	defer store.Close()

	v := newTestVerifier(f, store, time.Minute)
	req := core.TrustRequest{AgentID: "did:agent:alpha"}

	first, err := v.VerifyTrust(context.Background(), req)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&f.parentCalls))

	second, err := v.VerifyTrust(context.Background(), req)
	require.NoError(t, err)

	// Second call is served from cache: no new collaborator traffic.
	assert.EqualValues(t, 1, atomic.LoadInt64(&f.parentCalls))
	assert.Equal(t, first.TrustScore, second.TrustScore)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestVerifyTrustCacheKeyIncludesPlatforms(t *testing.T) {
	f := &fakeSources{parent: 80, platform: 70, activity: 75, reputation: 77}
	store := cache.NewMemoryStore()
	defer store.Close()

	v := newTestVerifier(f, store, time.Minute)

	_, err := v.VerifyTrust(context.Background(), core.TrustRequest{AgentID: "did:agent:alpha"})
	require.NoError(t, err)

	// Different platform hint set must not hit the cached no-platform report.
	withPlatforms, err := v.VerifyTrust(context.Background(), core.TrustRequest{
		AgentID:   "did:agent:alpha",
		Platforms: []string{"github"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt64(&f.parentCalls))
	assert.Len(t, withPlatforms.Components, 4)
}
