// Package upstream contains the HTTP clients for the external collaborators:
// the parent agent's Trust Score API, the platform-presence checker, the
// activity and reputation sources, the provenance-evidence service, and the
// identity resolver. Each client is a plain synchronous request/response
// boundary; resilience (timeouts, breakers) lives in the caller.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trustverifier/backend/internal/core"
)

// NewHTTPClient returns the shared client for collaborator calls. Per-branch
// deadlines come from the request context; this timeout is the hard ceiling.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// postJSON posts payload to url and decodes the response body into out.
// Non-2xx responses are returned as errors carrying the status and body.
func postJSON(ctx context.Context, client *http.Client, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{Status: resp.StatusCode, Body: string(detail)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getJSON fetches url and decodes the response body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{Status: resp.StatusCode, Body: string(detail)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// StatusError is a non-2xx collaborator response. The body is kept verbatim
// so provenance errors can be surfaced without local reinterpretation.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// unavailable wraps a transport-level failure in the shared taxonomy.
func unavailable(source string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrUpstreamUnavailable, source, err)
}

// validScore reports whether a collaborator score is in the contract range.
// Out-of-range values are treated as a malformed response, i.e. the
// component is absent — never clamped into the sum.
func validScore(score float64) bool {
	return score >= 0 && score <= 100
}
