package upstream

import (
	"context"
	"fmt"
	"net/http"
)

// ParentScoreClient calls the parent agent's Trust Score API.
type ParentScoreClient struct {
	client *http.Client
	url    string
}

func NewParentScoreClient(client *http.Client, url string) *ParentScoreClient {
	return &ParentScoreClient{client: client, url: url}
}

// ParentScore returns the parent registry's score for the agent in [0,100].
func (c *ParentScoreClient) ParentScore(ctx context.Context, agentID string, reqContext map[string]interface{}) (float64, error) {
	if c.url == "" {
		return 0, unavailable("parent-score", fmt.Errorf("no endpoint configured"))
	}

	var resp struct {
		Score float64 `json:"score"`
	}
	payload := map[string]interface{}{
		"agent_id": agentID,
		"context":  reqContext,
	}
	if err := postJSON(ctx, c.client, c.url, payload, &resp); err != nil {
		return 0, unavailable("parent-score", err)
	}
	if !validScore(resp.Score) {
		return 0, unavailable("parent-score", fmt.Errorf("score %.2f out of range", resp.Score))
	}
	return resp.Score, nil
}

// PlatformClient calls the platform-presence checker.
type PlatformClient struct {
	client *http.Client
	url    string
}

func NewPlatformClient(client *http.Client, url string) *PlatformClient {
	return &PlatformClient{client: client, url: url}
}

// PlatformPresence returns a [0,100] score aggregating the agent's presence
// and standing across the requested platforms.
func (c *PlatformClient) PlatformPresence(ctx context.Context, agentID string, platforms []string) (float64, error) {
	if c.url == "" {
		return 0, unavailable("platforms", fmt.Errorf("no endpoint configured"))
	}

	var resp struct {
		Score float64 `json:"score"`
	}
	payload := map[string]interface{}{
		"agent_id":  agentID,
		"platforms": platforms,
	}
	if err := postJSON(ctx, c.client, c.url, payload, &resp); err != nil {
		return 0, unavailable("platforms", err)
	}
	if !validScore(resp.Score) {
		return 0, unavailable("platforms", fmt.Errorf("score %.2f out of range", resp.Score))
	}
	return resp.Score, nil
}

// scoreClient is the shared shape of the single-signal sources (activity,
// reputation): POST {agent_id} and read back {score}.
type scoreClient struct {
	client *http.Client
	url    string
	source string
}

func (c *scoreClient) fetch(ctx context.Context, agentID string) (float64, error) {
	if c.url == "" {
		return 0, unavailable(c.source, fmt.Errorf("no endpoint configured"))
	}

	var resp struct {
		Score float64 `json:"score"`
	}
	if err := postJSON(ctx, c.client, c.url, map[string]interface{}{"agent_id": agentID}, &resp); err != nil {
		return 0, unavailable(c.source, err)
	}
	if !validScore(resp.Score) {
		return 0, unavailable(c.source, fmt.Errorf("score %.2f out of range", resp.Score))
	}
	return resp.Score, nil
}

// ActivityClient calls the activity source.
type ActivityClient struct{ scoreClient }

func NewActivityClient(client *http.Client, url string) *ActivityClient {
	return &ActivityClient{scoreClient{client: client, url: url, source: "activity"}}
}

func (c *ActivityClient) ActivityScore(ctx context.Context, agentID string) (float64, error) {
	return c.fetch(ctx, agentID)
}

// ReputationClient calls the reputation source.
type ReputationClient struct{ scoreClient }

func NewReputationClient(client *http.Client, url string) *ReputationClient {
	return &ReputationClient{scoreClient{client: client, url: url, source: "reputation"}}
}

func (c *ReputationClient) ReputationScore(ctx context.Context, agentID string) (float64, error) {
	return c.fetch(ctx, agentID)
}
