// Package gp evolves expression trees toward a target function using the
// generic engine from package genetic
package gp

import (
	"context"
	"fmt"
	"math"

	"github.com/gofrs/uuid"

	"github.com/lixenwraith/symreg/expr"
	"github.com/lixenwraith/symreg/fitness"
	"github.com/lixenwraith/symreg/genetic"
)

// GenerationStats summarizes one evaluated generation
type GenerationStats struct {
	Generation     int
	BestFitness    float64
	MeanFitness    float64
	BestExpression string
	BestSize       int
	BestDepth      int
	PopulationSize int
	Evaluations    uint64
}

// Observer is notified once per generation, in order, on the run goroutine
type Observer func(GenerationStats)

// Comparison is one row of the target-versus-evolved table
type Comparison struct {
	X       float64
	Target  float64
	Evolved float64
	Error   float64
}

// Result is the outcome of a run
type Result struct {
	RunID       uuid.UUID
	Seed        uint64
	History     []GenerationStats
	Best        expr.Node
	BestFitness float64
	// Solved is set when the run stopped early below the success threshold
	Solved bool

	target fitness.TargetFunc
}

// Final returns the last recorded generation
func (r *Result) Final() GenerationStats {
	return r.History[len(r.History)-1]
}

// Compare evaluates the best individual against the target at xs
func (r *Result) Compare(xs []float64) []Comparison {
	rows := make([]Comparison, len(xs))
	for i, x := range xs {
		target := r.target(x)
		evolved := r.Best.Evaluate(x)
		rows[i] = Comparison{X: x, Target: target, Evolved: evolved, Error: math.Abs(target - evolved)}
	}
	return rows
}

// System wires the tree generator, fitness evaluator and GP operators into an engine
type System struct {
	config    Config
	generator *expr.Generator
	evaluator fitness.Evaluator
	engine    *genetic.Engine[expr.Node, float64]

	observers []Observer
	history   []GenerationStats
	// best of the most recent evaluated generation
	best      expr.Node
	bestScore float64
}

// New validates cfg and builds a ready-to-run system
func New(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := expr.NewGenerator(cfg.Operators, cfg.Variable, cfg.ConstantMin, cfg.ConstantMax)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	eval, err := fitness.NewAbsoluteError(cfg.Target, cfg.Samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	engine, err := genetic.NewEngine[expr.Node, float64](
		eval.Fitness,
		RampedInitializer(gen, cfg.MinDepth, cfg.MaxDepth),
		&genetic.TournamentSelector[expr.Node, float64]{TournamentSize: cfg.TournamentSize, Clone: Clone},
		Crossover{},
		&Mutator{Generator: gen, MaxDepth: cfg.MutationMaxDepth},
		Clone,
		cfg.engineConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &System{
		config:    cfg,
		generator: gen,
		evaluator: eval,
		engine:    engine,
	}
	engine.SetObserver(s.observe)
	engine.SetTerminator(func(_ *genetic.Pool[expr.Node, float64], stats genetic.PoolStats[float64]) bool {
		return stats.BestScore < cfg.SuccessThreshold
	})
	return s, nil
}

// AddObserver registers a per-generation callback
func (s *System) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Config returns the run configuration
func (s *System) Config() Config {
	return s.config
}

// Seed returns the effective random seed
func (s *System) Seed() uint64 {
	return s.engine.Seed()
}

// Phase returns the engine lifecycle state
func (s *System) Phase() genetic.Phase {
	return s.engine.Phase()
}

// Fitness scores a tree with the configured evaluator
func (s *System) Fitness(n expr.Node) float64 {
	return s.evaluator.Fitness(n)
}

// Run evolves until the generation budget is spent or a near-exact individual is found.
// An interrupted run returns the error together with a partial Result holding the
// generations recorded so far; Best is nil if none was evaluated
func (s *System) Run(ctx context.Context) (*Result, error) {
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	s.history = s.history[:0]
	s.best, s.bestScore = nil, math.Inf(1)

	res := &Result{
		RunID:  runID,
		Seed:   s.engine.Seed(),
		target: s.config.Target,
	}

	if _, err := s.engine.Run(ctx); err != nil {
		res.History = append([]GenerationStats(nil), s.history...)
		res.Best, res.BestFitness = s.best, s.bestScore
		return res, fmt.Errorf("run %s: %w", runID, err)
	}

	best, err := s.engine.Best()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	res.History = append([]GenerationStats(nil), s.history...)
	res.Best = best.Data
	res.BestFitness = best.Score
	res.Solved = best.Score < s.config.SuccessThreshold
	return res, nil
}

func (s *System) observe(pool *genetic.Pool[expr.Node, float64], stats genetic.PoolStats[float64]) {
	best := pool.Members[stats.BestIndex].Data
	gs := GenerationStats{
		Generation:     stats.Generation,
		BestFitness:    stats.BestScore,
		MeanFitness:    stats.AverageScore,
		BestExpression: best.String(),
		BestSize:       best.Size(),
		BestDepth:      best.Depth(),
		PopulationSize: stats.Size,
		Evaluations:    s.engine.Evaluations(),
	}
	s.history = append(s.history, gs)
	s.best, s.bestScore = best, stats.BestScore
	for _, o := range s.observers {
		o(gs)
	}
}
