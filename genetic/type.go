package genetic

import (
	"math/rand/v2"
)

// --- Core Type Constraints ---

// Solution represents any type that can be used as a solution encoding
type Solution any

// Numeric constrains types to numeric values for fitness scores
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// --- Core Data Structures ---

// Candidate represents a potential solution with its evaluated error score
// S is the solution type, F is the fitness score type
type Candidate[S Solution, F Numeric] struct {
	// Data holds the encoded solution representation
	Data S
	// Score is the error of this solution for the current generation (lower = better)
	Score F
}

// Pool represents the population of one generation
type Pool[S Solution, F Numeric] struct {
	// Members contains all candidates in this pool
	Members []Candidate[S, F]
	// Generation tracks the iteration number this pool represents
	Generation int
	// Evaluated is set once every member carries a score for this generation
	Evaluated bool
}

// PoolStats contains statistical information about an evaluated pool
type PoolStats[F Numeric] struct {
	Generation   int
	BestIndex    int
	BestScore    F
	WorstScore   F
	AverageScore float64
	Size         int
}

// --- Function Types for Flexibility ---

// EvaluatorFunc calculates the error score for a solution.
// It must be safe for concurrent use and must not consume randomness
type EvaluatorFunc[S Solution, F Numeric] func(solution S) F

// InitializerFunc creates an initial solution
type InitializerFunc[S Solution] func(rng *rand.Rand) S

// CloneFunc returns an independent deep copy of a solution
type CloneFunc[S Solution] func(solution S) S

// TerminationFunc reports whether the run should stop after the given
// evaluated pool has been recorded
type TerminationFunc[S Solution, F Numeric] func(pool *Pool[S, F], stats PoolStats[F]) bool

// ObserverFunc receives each evaluated pool together with its statistics
type ObserverFunc[S Solution, F Numeric] func(pool *Pool[S, F], stats PoolStats[F])

// --- Core Operators as Interfaces ---

// Selector chooses candidates for reproduction
type Selector[S Solution, F Numeric] interface {
	// Select returns size candidates whose Data are independent of the pool
	Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F]
}

// Combiner recombines parent solutions into offspring
type Combiner[S Solution, F Numeric] interface {
	// Combine creates offspring without modifying the parents
	Combine(parents []Candidate[S, F], rng *rand.Rand) []S
}

// Perturbator introduces random variation into a solution
type Perturbator[S Solution] interface {
	// Perturb replaces *solution with a varied version; the original
	// value may be reused since the engine only passes owned copies
	Perturb(solution *S, rng *rand.Rand)
}
