package distance

import (
	"context"
	"fuel-delivery-service/internal/domain"
	"math"
	"math/rand/v2"
	"sync"
)

// RandomEstimator stands in for a routing provider: every leg is a whole number
// of kilometres drawn uniformly from [MinKm, MinKm+SpanKm).
type RandomEstimator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	MinKm  float64
	SpanKm float64
}

func NewRandomEstimator(rnd *rand.Rand) *RandomEstimator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomEstimator{rnd: rnd, MinKm: 70, SpanKm: 50}
}

func (e *RandomEstimator) EstimateKm(ctx context.Context, _ *domain.Delivery) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	r := e.rnd.Float64()
	e.mu.Unlock()

	return math.Floor(r*e.SpanKm) + e.MinKm, nil
}
