package trust

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/core"
)

type fakeResolver struct {
	profile core.AgentProfile
	err     error
	calls   int
}

func (f *fakeResolver) Resolve(ctx context.Context, agentID string) (core.AgentProfile, error) {
	f.calls++
	return f.profile, f.err
}

func TestProfileResolverCaches(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()

	resolver := &fakeResolver{profile: core.AgentProfile{
		AgentID:  "did:agent:alpha",
		Identity: map[string]interface{}{"name": "Alpha"},
	}}
	p := NewProfileResolver(resolver, store, time.Minute)

	first, err := p.Resolve(context.Background(), "did:agent:alpha")
	require.NoError(t, err)
	require.Equal(t, 1, resolver.calls)

	second, err := p.Resolve(context.Background(), "did:agent:alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, first.AgentID, second.AgentID)
	assert.Equal(t, first.Identity["name"], second.Identity["name"])
}

func TestProfileResolverNoStore(t *testing.T) {
	resolver := &fakeResolver{profile: core.AgentProfile{AgentID: "did:agent:alpha"}}
	p := NewProfileResolver(resolver, nil, time.Minute)

	_, err := p.Resolve(context.Background(), "did:agent:alpha")
	require.NoError(t, err)
	_, err = p.Resolve(context.Background(), "did:agent:alpha")
	require.NoError(t, err)

	// Every call goes to the resolver when caching is off.
	assert.Equal(t, 2, resolver.calls)
}

func TestProfileResolverErrorsAreNotCached(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()

	resolver := &fakeResolver{err: errors.New("resolver down")}
	p := NewProfileResolver(resolver, store, time.Minute)

	_, err := p.Resolve(context.Background(), "did:agent:alpha")
	require.Error(t, err)

	resolver.err = nil
	resolver.profile = core.AgentProfile{AgentID: "did:agent:alpha"}

	profile, err := p.Resolve(context.Background(), "did:agent:alpha")
	require.NoError(t, err)
	assert.Equal(t, "did:agent:alpha", profile.AgentID)
	assert.Equal(t, 2, resolver.calls)
}
