package trust

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/trustverifier/backend/internal/circuitbreaker"
	"github.com/trustverifier/backend/internal/metrics"
)

// Source is one fan-out branch: a named collaborator that may yield a
// component score.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) (float64, error)
}

// Gatherer fans out to the score collaborators and fans back in. Branches
// run concurrently, each bounded by the branch timeout and guarded by its
// collaborator's circuit breaker. A failed or timed-out branch means
// "component absent" — it never fails the whole gather.
type Gatherer struct {
	timeout  time.Duration
	breakers *circuitbreaker.CollaboratorBreakers
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// NewGatherer creates a gatherer. breakers and m may be nil in tests.
func NewGatherer(branchTimeout time.Duration, breakers *circuitbreaker.CollaboratorBreakers, m *metrics.Metrics) *Gatherer {
	return &Gatherer{
		timeout:  branchTimeout,
		breakers: breakers,
		metrics:  m,
		logger:   log.New(log.Writer(), "[GATHER] ", log.LstdFlags),
	}
}

// Gather runs all sources and returns the scores that succeeded.
func (g *Gatherer) Gather(ctx context.Context, sources []Source) map[string]float64 {
	var (
		mu      sync.Mutex
		results = make(map[string]float64, len(sources))
		wg      sync.WaitGroup
	)

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			score, result := g.fetchOne(ctx, src)
			if result != "ok" {
				return
			}

			mu.Lock()
			results[src.Name] = score
			mu.Unlock()
		}(src)
	}

	wg.Wait()
	return results
}

// fetchOne runs a single branch and returns the score plus a result label
// (ok, timeout, circuit_open, error).
func (g *Gatherer) fetchOne(ctx context.Context, src Source) (float64, string) {
	branchCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()

	var score float64
	call := func() error {
		var err error
		score, err = src.Fetch(branchCtx)
		return err
	}

	var err error
	if cb := g.breaker(src.Name); cb != nil {
		err = cb.Execute(call)
	} else {
		err = call()
	}

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		result = "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		result = "timeout"
	default:
		result = "error"
	}

	if err != nil {
		g.logger.Printf("⚠️ %s branch dropped (%s): %v", src.Name, result, err)
	}
	if g.metrics != nil {
		g.metrics.RecordCollaboratorCall(src.Name, result, time.Since(start).Seconds())
	}

	return score, result
}

func (g *Gatherer) breaker(name string) *circuitbreaker.CircuitBreaker {
	if g.breakers == nil {
		return nil
	}
	return g.breakers.ForComponent(name)
}
