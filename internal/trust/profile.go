package trust

import (
	"context"
	"encoding/json"
	"time"

	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/core"
)

// IdentityResolver is the external identity collaborator boundary.
type IdentityResolver interface {
	Resolve(ctx context.Context, agentID string) (core.AgentProfile, error)
}

// ProfileResolver is a cached read-through to the identity resolver.
type ProfileResolver struct {
	resolver IdentityResolver
	store    cache.Store
	ttl      time.Duration
}

// NewProfileResolver creates a profile resolver. store may be nil to
// disable caching.
func NewProfileResolver(resolver IdentityResolver, store cache.Store, ttl time.Duration) *ProfileResolver {
	return &ProfileResolver{resolver: resolver, store: store, ttl: ttl}
}

// Resolve returns the agent's profile, serving from cache when fresh.
func (p *ProfileResolver) Resolve(ctx context.Context, agentID string) (core.AgentProfile, error) {
	key := "trust:profile:" + agentID

	if p.store != nil && p.ttl > 0 {
		if raw, err := p.store.Get(ctx, key); err == nil {
			var profile core.AgentProfile
			if err := json.Unmarshal(raw, &profile); err == nil {
				return profile, nil
			}
		}
	}

	profile, err := p.resolver.Resolve(ctx, agentID)
	if err != nil {
		return core.AgentProfile{}, err
	}

	if p.store != nil && p.ttl > 0 {
		if raw, err := json.Marshal(profile); err == nil {
			p.store.Set(ctx, key, raw, p.ttl)
		}
	}

	return profile, nil
}
