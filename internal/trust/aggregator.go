// Package trust owns the trust-score aggregation contract: combining named
// component scores gathered from external collaborators into a composite
// score, a verification decision, and a confidence value.
package trust

import (
	"time"

	"github.com/trustverifier/backend/internal/config"
	"github.com/trustverifier/backend/internal/core"
)

// Confidence is completeness scaled by inter-component agreement. The
// agreement factor never drops below this floor, which keeps confidence
// strictly increasing as components are added (adding a component grows the
// weight mass by at least 0.20, more than the worst-case agreement penalty).
const minAgreementFactor = 0.85

// Aggregator combines component scores per the fixed weighting policy.
// Construct once from config; safe for concurrent use.
type Aggregator struct {
	weights   map[string]float64
	totalMass float64
	threshold float64
}

// NewAggregator creates an aggregator from the trust policy config.
func NewAggregator(cfg config.TrustConfig) *Aggregator {
	weights := map[string]float64{
		core.ComponentParentScore:      cfg.Weights.ParentScore,
		core.ComponentPlatformPresence: cfg.Weights.PlatformPresence,
		core.ComponentActivityScore:    cfg.Weights.ActivityScore,
		core.ComponentReputationScore:  cfg.Weights.ReputationScore,
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}

	return &Aggregator{
		weights:   weights,
		totalMass: total,
		threshold: cfg.Threshold,
	}
}

// Compute produces a TrustReport from the component scores that were
// actually gathered. Components missing from the map are absent, not zero:
// their weight is redistributed proportionally across the present subset.
// Unknown component names carry no weight and are ignored.
//
// Returns core.ErrInsufficientSignal when no weighted component is present.
func (a *Aggregator) Compute(agentID string, components map[string]float64) (core.TrustReport, error) {
	presentMass := 0.0
	for name := range components {
		presentMass += a.weights[name]
	}
	if presentMass == 0 {
		return core.TrustReport{}, core.ErrInsufficientSignal
	}

	// Weighted sum with weights renormalized over the present subset.
	score := 0.0
	gathered := make(map[string]float64, len(components))
	for name, value := range components {
		weight, known := a.weights[name]
		if !known || weight == 0 {
			continue
		}
		score += (weight / presentMass) * value
		gathered[name] = value
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	confidence := (presentMass / a.totalMass) * a.agreement(gathered)

	return core.TrustReport{
		AgentID:    agentID,
		TrustScore: score,
		Components: gathered,
		Verified:   score >= a.threshold,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// agreement discounts confidence when the present components disagree:
// 1 - spread/200, floored at minAgreementFactor. A single component or a
// perfectly agreeing set gives 1.0; a 30-point spread hits the floor.
func (a *Aggregator) agreement(components map[string]float64) float64 {
	if len(components) < 2 {
		return 1.0
	}

	first := true
	var min, max float64
	for _, v := range components {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	factor := 1.0 - (max-min)/200.0
	if factor < minAgreementFactor {
		factor = minAgreementFactor
	}
	return factor
}

// Threshold returns the configured verification threshold.
func (a *Aggregator) Threshold() float64 {
	return a.threshold
}
