package deployment

import (
	"context"
	"math/rand/v2"
)

// ProgressSource reports how far a deployment has come. The engine asks it
// once per tick and clamps the answer to 0..100.
type ProgressSource interface {
	Advance(ctx context.Context, firmwareID string, current int) int
}

// RandomProgress simulates a fleet: every tick moves a deployment forward by
// a uniformly random step in [MinStep, MinStep+Spread).
type RandomProgress struct {
	MinStep float64
	Spread  float64
	Float64 func() float64
}

func NewRandomProgress() *RandomProgress {
	return &RandomProgress{MinStep: 5, Spread: 15, Float64: rand.Float64}
}

func (p *RandomProgress) Advance(ctx context.Context, firmwareID string, current int) int {
	return current + int(p.Float64()*p.Spread+p.MinStep)
}
