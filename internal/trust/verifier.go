package trust

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/core"
	"github.com/trustverifier/backend/internal/metrics"
	"github.com/trustverifier/backend/internal/upstream"
)

// Score sources consumed by the Verifier. The concrete implementations live
// in internal/upstream; tests substitute fakes.
type (
	ParentScoreSource interface {
		ParentScore(ctx context.Context, agentID string, reqContext map[string]interface{}) (float64, error)
	}
	PlatformSource interface {
		PlatformPresence(ctx context.Context, agentID string, platforms []string) (float64, error)
	}
	ActivitySource interface {
		ActivityScore(ctx context.Context, agentID string) (float64, error)
	}
	ReputationSource interface {
		ReputationScore(ctx context.Context, agentID string) (float64, error)
	}
)

// Sources bundles the four score collaborators.
type Sources struct {
	Parent     ParentScoreSource
	Platforms  PlatformSource
	Activity   ActivitySource
	Reputation ReputationSource
}

// Verifier ties gathering and aggregation together into the verify-trust
// operation. Each request is independent and stateless; the report cache is
// the only shared resource and it is purely an optimization.
type Verifier struct {
	agg      *Aggregator
	gatherer *Gatherer
	sources  Sources

	store     cache.Store
	reportTTL time.Duration

	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewVerifier creates a verifier. store may be nil to disable report caching.
func NewVerifier(agg *Aggregator, gatherer *Gatherer, sources Sources, store cache.Store, reportTTL time.Duration, m *metrics.Metrics) *Verifier {
	return &Verifier{
		agg:       agg,
		gatherer:  gatherer,
		sources:   sources,
		store:     store,
		reportTTL: reportTTL,
		metrics:   m,
		logger:    log.New(log.Writer(), "[VERIFY] ", log.LstdFlags),
	}
}

// VerifyTrust gathers component scores from the collaborators and computes
// the composite trust report.
func (v *Verifier) VerifyTrust(ctx context.Context, req core.TrustRequest) (core.TrustReport, error) {
	if err := upstream.ValidateAgentID(req.AgentID); err != nil {
		return core.TrustReport{}, err
	}

	cacheKey := reportCacheKey(req)
	if report, ok := v.cachedReport(ctx, cacheKey); ok {
		return report, nil
	}

	components := v.gatherer.Gather(ctx, v.buildSources(req))

	report, err := v.agg.Compute(req.AgentID, components)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientSignal) && v.metrics != nil {
			v.metrics.RecordInsufficientSignal()
		}
		return core.TrustReport{}, err
	}
	report.Message = "trust score calculated successfully"

	v.logger.Printf("agent=%s score=%.2f verified=%v confidence=%.2f components=%d",
		req.AgentID, report.TrustScore, report.Verified, report.Confidence, len(report.Components))

	if v.metrics != nil {
		outcome := "unverified"
		if report.Verified {
			outcome = "verified"
		}
		v.metrics.RecordVerification(outcome, report.TrustScore, report.Confidence)
	}

	v.cacheReport(ctx, cacheKey, report)
	return report, nil
}

// buildSources wires the request into fan-out branches. The platform branch
// is only fanned out when the caller named platforms to check; absent hints
// mean an absent component, not a neutral default.
func (v *Verifier) buildSources(req core.TrustRequest) []Source {
	sources := []Source{
		{
			Name: core.ComponentParentScore,
			Fetch: func(ctx context.Context) (float64, error) {
				return v.sources.Parent.ParentScore(ctx, req.AgentID, req.Context)
			},
		},
		{
			Name: core.ComponentActivityScore,
			Fetch: func(ctx context.Context) (float64, error) {
				return v.sources.Activity.ActivityScore(ctx, req.AgentID)
			},
		},
		{
			Name: core.ComponentReputationScore,
			Fetch: func(ctx context.Context) (float64, error) {
				return v.sources.Reputation.ReputationScore(ctx, req.AgentID)
			},
		},
	}

	if len(req.Platforms) > 0 {
		sources = append(sources, Source{
			Name: core.ComponentPlatformPresence,
			Fetch: func(ctx context.Context) (float64, error) {
				return v.sources.Platforms.PlatformPresence(ctx, req.AgentID, req.Platforms)
			},
		})
	}

	return sources
}

func reportCacheKey(req core.TrustRequest) string {
	return "trust:report:" + req.AgentID + ":" + strings.Join(req.Platforms, ",")
}

func (v *Verifier) cachedReport(ctx context.Context, key string) (core.TrustReport, bool) {
	if v.store == nil || v.reportTTL <= 0 {
		return core.TrustReport{}, false
	}

	raw, err := v.store.Get(ctx, key)
	if err != nil {
		return core.TrustReport{}, false
	}

	var report core.TrustReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return core.TrustReport{}, false
	}
	return report, true
}

func (v *Verifier) cacheReport(ctx context.Context, key string, report core.TrustReport) {
	if v.store == nil || v.reportTTL <= 0 {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := v.store.Set(ctx, key, raw, v.reportTTL); err != nil {
		v.logger.Printf("report cache write failed: %v", err)
	}
}
