package genetic

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sourcegraph/conc/pool"
)

// ErrNoCandidates is returned when no evaluated pool is available
var ErrNoCandidates = errors.New("no evaluated candidates available")

// Phase is the lifecycle state of an Engine
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseEvaluated
	PhaseBreeding
	PhaseReplaced
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseEvaluated:
		return "evaluated"
	case PhaseBreeding:
		return "breeding"
	case PhaseReplaced:
		return "replaced"
	case PhaseTerminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// --- Algorithm Engine ---

// Engine is the generational evolution driver
// It coordinates all operators and manages the population lifecycle
type Engine[S Solution, F Numeric] struct {
	// Core operators
	evaluator   EvaluatorFunc[S, F]
	initializer InitializerFunc[S]
	selector    Selector[S, F]
	combiner    Combiner[S, F]
	perturbator Perturbator[S]
	clone       CloneFunc[S]
	terminator  TerminationFunc[S, F]
	observer    ObserverFunc[S, F]

	// Configuration
	config EngineConfig

	// State
	seed        uint64
	rng         *rand.Rand
	phase       Phase
	currentPool *Pool[S, F]
	history     []PoolStats[F]
	evaluations uint64
}

// EngineConfig holds configuration parameters for the algorithm
type EngineConfig struct {
	// PoolSize is the number of candidates maintained in each generation
	PoolSize int
	// EliteCount is the number of best solutions carried over unchanged
	EliteCount int
	// CombinationRate is the probability of recombining a parent pair (0-1)
	CombinationRate float64
	// PerturbationRate is the probability of perturbing each offspring (0-1)
	PerturbationRate float64
	// MaxIterations is the maximum number of generations to run
	MaxIterations int
	// Parallelism bounds concurrent fitness evaluations, <= 1 evaluates inline
	Parallelism int
	// Seed for random number generation (0 for random seed)
	Seed uint64
}

// Validate rejects configurations the loop cannot run with
func (c EngineConfig) Validate() error {
	switch {
	case c.PoolSize <= 0:
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	case c.EliteCount < 0 || c.EliteCount > c.PoolSize:
		return fmt.Errorf("elite count %d outside [0, %d]", c.EliteCount, c.PoolSize)
	case c.CombinationRate < 0 || c.CombinationRate > 1:
		return fmt.Errorf("combination rate %v outside [0, 1]", c.CombinationRate)
	case c.PerturbationRate < 0 || c.PerturbationRate > 1:
		return fmt.Errorf("perturbation rate %v outside [0, 1]", c.PerturbationRate)
	case c.MaxIterations <= 0:
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// NewEngine creates an engine with the specified operators
func NewEngine[S Solution, F Numeric](
	evaluator EvaluatorFunc[S, F],
	initializer InitializerFunc[S],
	selector Selector[S, F],
	combiner Combiner[S, F],
	perturbator Perturbator[S],
	clone CloneFunc[S],
	config EngineConfig,
) (*Engine[S, F], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil || initializer == nil || selector == nil ||
		combiner == nil || perturbator == nil || clone == nil {
		return nil, errors.New("all operators are required")
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Engine[S, F]{
		evaluator:   evaluator,
		initializer: initializer,
		selector:    selector,
		combiner:    combiner,
		perturbator: perturbator,
		clone:       clone,
		config:      config,
		seed:        seed,
		rng:         rand.New(rand.NewPCG(seed, seed)),
		history:     make([]PoolStats[F], 0, config.MaxIterations),
	}, nil
}

// SetTerminator sets a custom early-termination condition
func (e *Engine[S, F]) SetTerminator(terminator TerminationFunc[S, F]) {
	e.terminator = terminator
}

// SetObserver registers a callback invoked after each evaluation
func (e *Engine[S, F]) SetObserver(observer ObserverFunc[S, F]) {
	e.observer = observer
}

// Run executes the generational loop until the iteration budget is spent,
// the terminator fires, or ctx is cancelled. The final pool stays evaluated
func (e *Engine[S, F]) Run(ctx context.Context) ([]PoolStats[F], error) {
	e.Initialize()

	for iteration := 0; iteration < e.config.MaxIterations; iteration++ {
		select {
		case <-ctx.Done():
			e.phase = PhaseTerminated
			return e.History(), ctx.Err()
		default:
		}

		stats, err := e.Evaluate(ctx)
		if err != nil {
			e.phase = PhaseTerminated
			return e.History(), err
		}

		if e.terminator != nil && e.terminator(e.currentPool, stats) {
			break
		}

		if iteration < e.config.MaxIterations-1 {
			e.Advance()
		}
	}

	e.phase = PhaseTerminated
	return e.History(), nil
}

// Initialize creates generation 0 and clears any previous history
func (e *Engine[S, F]) Initialize() {
	candidates := make([]Candidate[S, F], e.config.PoolSize)
	for i := range candidates {
		candidates[i] = Candidate[S, F]{Data: e.initializer(e.rng)}
	}

	e.currentPool = &Pool[S, F]{Members: candidates}
	e.history = e.history[:0]
	e.evaluations = 0
	e.phase = PhaseReplaced
}

// Evaluate scores every member of the current pool, records statistics and
// notifies the observer. Scores are written by index so completion order is irrelevant
func (e *Engine[S, F]) Evaluate(ctx context.Context) (PoolStats[F], error) {
	if e.currentPool == nil {
		return PoolStats[F]{}, ErrNoCandidates
	}
	members := e.currentPool.Members

	if e.config.Parallelism <= 1 {
		for i := range members {
			members[i].Score = e.evaluator(members[i].Data)
		}
	} else {
		p := pool.New().WithContext(ctx).WithMaxGoroutines(e.config.Parallelism)
		for i := range members {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				members[i].Score = e.evaluator(members[i].Data)
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return PoolStats[F]{}, err
		}
	}

	e.evaluations += uint64(len(members))
	e.currentPool.Evaluated = true
	e.phase = PhaseEvaluated

	stats := e.calculateStats(e.currentPool)
	e.history = append(e.history, stats)

	if e.observer != nil {
		e.observer(e.currentPool, stats)
	}
	return stats, nil
}

// NextGeneration builds the successor of the current evaluated pool:
// elites first, then offspring pairs until the pool is full, truncated to size
func (e *Engine[S, F]) NextGeneration() *Pool[S, F] {
	e.phase = PhaseBreeding
	size := e.config.PoolSize
	nextGen := make([]Candidate[S, F], 0, size+1)

	// Preserve elite solutions (best performers)
	nextGen = append(nextGen, e.selectElite()...)

	for len(nextGen) < size {
		parents := e.selector.Select(e.currentPool, 2, e.rng)

		var offspring []S
		if e.rng.Float64() < e.config.CombinationRate {
			offspring = e.combiner.Combine(parents, e.rng)
		}
		if len(offspring) == 0 {
			// Passthrough: selected parents are already independent copies
			offspring = make([]S, len(parents))
			for i, p := range parents {
				offspring[i] = p.Data
			}
		}

		for i := range offspring {
			if e.rng.Float64() < e.config.PerturbationRate {
				e.perturbator.Perturb(&offspring[i], e.rng)
			}
			nextGen = append(nextGen, Candidate[S, F]{Data: offspring[i]})
		}
	}

	next := &Pool[S, F]{
		Members:    nextGen[:size],
		Generation: e.currentPool.Generation + 1,
	}
	e.phase = PhaseReplaced
	return next
}

// Advance replaces the current pool with its successor
func (e *Engine[S, F]) Advance() {
	e.currentPool = e.NextGeneration()
}

// selectElite returns clones of the best EliteCount candidates, stable on ties
func (e *Engine[S, F]) selectElite() []Candidate[S, F] {
	members := e.currentPool.Members
	count := min(e.config.EliteCount, len(members))
	if count <= 0 {
		return nil
	}

	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return members[order[a]].Score < members[order[b]].Score
	})

	elite := make([]Candidate[S, F], count)
	for i := 0; i < count; i++ {
		elite[i] = Candidate[S, F]{Data: e.clone(members[order[i]].Data)}
	}
	return elite
}

// calculateStats computes statistical measures for an evaluated pool
func (e *Engine[S, F]) calculateStats(p *Pool[S, F]) PoolStats[F] {
	stats := PoolStats[F]{Generation: p.Generation, Size: len(p.Members)}
	if len(p.Members) == 0 {
		return stats
	}

	stats.BestScore = p.Members[0].Score
	stats.WorstScore = p.Members[0].Score

	var total float64
	for i, c := range p.Members {
		if c.Score < stats.BestScore {
			stats.BestScore = c.Score
			stats.BestIndex = i
		}
		if c.Score > stats.WorstScore {
			stats.WorstScore = c.Score
		}
		total += float64(c.Score)
	}
	stats.AverageScore = total / float64(len(p.Members))

	return stats
}

// History returns a copy of the per-generation statistics
func (e *Engine[S, F]) History() []PoolStats[F] {
	return append([]PoolStats[F](nil), e.history...)
}

// Pool returns the current population
func (e *Engine[S, F]) Pool() *Pool[S, F] {
	return e.currentPool
}

// Phase returns the lifecycle state
func (e *Engine[S, F]) Phase() Phase {
	return e.phase
}

// Seed returns the effective seed, useful to reproduce randomly seeded runs
func (e *Engine[S, F]) Seed() uint64 {
	return e.seed
}

// Evaluations returns the number of fitness evaluations performed
func (e *Engine[S, F]) Evaluations() uint64 {
	return e.evaluations
}

// Best returns the lowest-scoring candidate of the current evaluated pool
func (e *Engine[S, F]) Best() (Candidate[S, F], error) {
	if e.currentPool == nil || !e.currentPool.Evaluated || len(e.currentPool.Members) == 0 {
		return Candidate[S, F]{}, ErrNoCandidates
	}

	best := e.currentPool.Members[0]
	for _, c := range e.currentPool.Members[1:] {
		if c.Score < best.Score {
			best = c
		}
	}
	return best, nil
}
