package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/trustverifier/backend/internal/core"
)

// maxAgentIDLength bounds identifiers before they reach any collaborator.
const maxAgentIDLength = 256

// ValidateAgentID rejects identifiers that are malformed on their face:
// empty, oversized, or containing whitespace/control characters. Everything
// else is opaque to this service and left to the identity resolver.
func ValidateAgentID(agentID string) error {
	if agentID == "" {
		return fmt.Errorf("%w: empty", core.ErrInvalidAgentID)
	}
	if len(agentID) > maxAgentIDLength {
		return fmt.Errorf("%w: exceeds %d characters", core.ErrInvalidAgentID, maxAgentIDLength)
	}
	for _, r := range agentID {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains whitespace or control characters", core.ErrInvalidAgentID)
		}
	}
	return nil
}

// IdentityClient resolves agent identifiers against the external identity
// service. Profile retrieval is a simple read-through; no aggregation.
type IdentityClient struct {
	client *http.Client
	url    string
}

func NewIdentityClient(client *http.Client, baseURL string) *IdentityClient {
	return &IdentityClient{client: client, url: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the agent's public profile, or ErrInvalidAgentID when the
// identifier is malformed or unknown to the resolver.
func (c *IdentityClient) Resolve(ctx context.Context, agentID string) (core.AgentProfile, error) {
	if err := ValidateAgentID(agentID); err != nil {
		return core.AgentProfile{}, err
	}

	if c.url == "" {
		// No resolver wired yet: return the pending-profile shape.
		return core.AgentProfile{
			AgentID:     agentID,
			Identity:    map[string]interface{}{"status": "pending_implementation"},
			Reputation:  map[string]interface{}{"trust_score": 0.0},
			History:     []map[string]interface{}{},
			LastUpdated: time.Now().UTC(),
		}, nil
	}

	var profile core.AgentProfile
	endpoint := c.url + "/agents/" + url.PathEscape(agentID)
	if err := getJSON(ctx, c.client, endpoint, &profile); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return core.AgentProfile{}, fmt.Errorf("%w: unknown to identity resolver", core.ErrInvalidAgentID)
		}
		return core.AgentProfile{}, unavailable("identity", err)
	}

	profile.AgentID = agentID
	if profile.History == nil {
		profile.History = []map[string]interface{}{}
	}
	return profile, nil
}
