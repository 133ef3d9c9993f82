// Package fitness scores expression trees against a target function
package fitness

import (
	"errors"
	"math"

	"github.com/lixenwraith/symreg/expr"
)

// Evaluator maps an expression to a scalar error, lower is better
type Evaluator interface {
	Fitness(n expr.Node) float64
}

var _ Evaluator = (*AbsoluteError)(nil)

// TargetFunc is the function being approximated
type TargetFunc func(x float64) float64

// AbsoluteError scores a tree as the sum of absolute errors over a fixed sample set.
// A single non-finite prediction makes the whole score +Inf
type AbsoluteError struct {
	samples []float64
	targets []float64
}

// NewAbsoluteError precomputes target values at each sample point
func NewAbsoluteError(target TargetFunc, samples []float64) (*AbsoluteError, error) {
	if target == nil {
		return nil, errors.New("target function is nil")
	}
	if len(samples) == 0 {
		return nil, errors.New("sample set is empty")
	}

	e := &AbsoluteError{
		samples: append([]float64(nil), samples...),
		targets: make([]float64, len(samples)),
	}
	for i, x := range e.samples {
		e.targets[i] = target(x)
	}
	return e, nil
}

func (e *AbsoluteError) Fitness(n expr.Node) float64 {
	var total float64
	for i, x := range e.samples {
		predicted := n.Evaluate(x)
		if math.IsInf(predicted, 0) || math.IsNaN(predicted) {
			return math.Inf(1)
		}
		total += math.Abs(predicted - e.targets[i])
	}
	return total
}

// Samples returns a copy of the sample points
func (e *AbsoluteError) Samples() []float64 {
	return append([]float64(nil), e.samples...)
}
