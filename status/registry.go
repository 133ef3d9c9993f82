// Package status holds live run metrics readable from any goroutine
package status

import (
	"math"
	"sync/atomic"
)

// Metric keys written by Run
const (
	KeyGeneration     = "gp.generation"
	KeyEvaluations    = "gp.evaluations"
	KeyPopulation     = "gp.population"
	KeyBestFitness    = "gp.best_fitness"
	KeyMeanFitness    = "gp.mean_fitness"
	KeyBestSize       = "gp.best_size"
	KeyBestExpression = "gp.best_expression"
	KeySolved         = "gp.solved"
	KeyRunning        = "gp.running"
)

// Registry is the central metrics facade
// Writers cache pointers up front; updates go straight to the atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Run caches the metric pointers of one evolutionary run
type Run struct {
	generation     *atomic.Int64
	evaluations    *atomic.Int64
	population     *atomic.Int64
	bestSize       *atomic.Int64
	bestFitness    *AtomicFloat
	meanFitness    *AtomicFloat
	bestExpression *AtomicString
	solved         *atomic.Bool
	running        *atomic.Bool
}

// Run registers the run metrics and returns a writer for them
func (r *Registry) Run() *Run {
	run := &Run{
		generation:     r.Ints.Get(KeyGeneration),
		evaluations:    r.Ints.Get(KeyEvaluations),
		population:     r.Ints.Get(KeyPopulation),
		bestSize:       r.Ints.Get(KeyBestSize),
		bestFitness:    r.Floats.Get(KeyBestFitness),
		meanFitness:    r.Floats.Get(KeyMeanFitness),
		bestExpression: r.Strings.Get(KeyBestExpression),
		solved:         r.Bools.Get(KeySolved),
		running:        r.Bools.Get(KeyRunning),
	}
	run.bestFitness.Set(math.Inf(1))
	return run
}

// Start marks the run active
func (r *Run) Start() {
	r.solved.Store(false)
	r.running.Store(true)
}

// Record publishes one generation
func (r *Run) Record(generation int, evaluations uint64, population int, best, mean float64, bestSize int, bestExpr string) {
	r.generation.Store(int64(generation))
	r.evaluations.Store(int64(evaluations))
	r.population.Store(int64(population))
	r.bestSize.Store(int64(bestSize))
	r.bestFitness.Set(best)
	r.meanFitness.Set(mean)
	r.bestExpression.Store(bestExpr)
}

// Finish marks the run stopped
func (r *Run) Finish(solved bool) {
	r.solved.Store(solved)
	r.running.Store(false)
}
