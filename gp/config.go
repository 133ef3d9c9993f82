package gp

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/symreg/expr"
	"github.com/lixenwraith/symreg/fitness"
	"github.com/lixenwraith/symreg/genetic"
	"github.com/lixenwraith/symreg/parameter"
)

// ErrInvalidConfig is wrapped by every configuration validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the immutable run configuration
type Config struct {
	PopulationSize   int
	Generations      int
	MinDepth         int
	MaxDepth         int
	MutationMaxDepth int
	TournamentSize   int
	CrossoverRate    float64
	MutationRate     float64
	SuccessThreshold float64

	// ConstantMin and ConstantMax bound integer constant terminals, inclusive
	ConstantMin int
	ConstantMax int
	Operators   []expr.Op
	Variable    string

	Samples []float64
	Target  fitness.TargetFunc

	Parallelism int
	Seed        uint64
}

// DefaultConfig returns the reference configuration: target x^2 + 3x + 2 over -10..10
func DefaultConfig() Config {
	return Config{
		PopulationSize:   parameter.GPPopulationSize,
		Generations:      parameter.GPGenerations,
		MinDepth:         parameter.GPMinDepth,
		MaxDepth:         parameter.GPMaxDepth,
		MutationMaxDepth: parameter.GPMutationMaxDepth,
		TournamentSize:   parameter.GPTournamentSize,
		CrossoverRate:    parameter.GPCrossoverRate,
		MutationRate:     parameter.GPMutationRate,
		SuccessThreshold: parameter.GPSuccessThreshold,
		ConstantMin:      parameter.GPConstantMin,
		ConstantMax:      parameter.GPConstantMax,
		Operators:        append([]expr.Op(nil), expr.DefaultOps...),
		Variable:         parameter.GPVariable,
		Samples:          fitness.IntRange(parameter.GPSampleMin, parameter.GPSampleMax),
		Target:           fitness.Polynomial(parameter.GPTargetCoefficients...),
		Parallelism:      parameter.GPParallelism,
	}
}

// Validate rejects malformed configurations before any run starts
func (c Config) Validate() error {
	var err error
	switch {
	case c.PopulationSize <= 0:
		err = fmt.Errorf("population_size must be positive, got %d", c.PopulationSize)
	case c.Generations <= 0:
		err = fmt.Errorf("generations must be positive, got %d", c.Generations)
	case c.TournamentSize <= 0:
		err = fmt.Errorf("tournament_size must be positive, got %d", c.TournamentSize)
	case c.TournamentSize > c.PopulationSize:
		err = fmt.Errorf("tournament_size %d exceeds population_size %d", c.TournamentSize, c.PopulationSize)
	case c.MinDepth < 1:
		err = fmt.Errorf("min_depth must be at least 1, got %d", c.MinDepth)
	case c.MaxDepth < c.MinDepth:
		err = fmt.Errorf("max_depth %d is below min_depth %d", c.MaxDepth, c.MinDepth)
	case c.MutationMaxDepth < 1:
		err = fmt.Errorf("mutation_max_depth must be at least 1, got %d", c.MutationMaxDepth)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		err = fmt.Errorf("crossover_rate %v outside [0, 1]", c.CrossoverRate)
	case c.MutationRate < 0 || c.MutationRate > 1:
		err = fmt.Errorf("mutation_rate %v outside [0, 1]", c.MutationRate)
	case c.SuccessThreshold < 0:
		err = fmt.Errorf("success_threshold must not be negative, got %v", c.SuccessThreshold)
	case c.ConstantMin > c.ConstantMax:
		err = fmt.Errorf("constant_range [%d, %d] is inverted", c.ConstantMin, c.ConstantMax)
	case len(c.Operators) == 0:
		err = errors.New("operator set is empty")
	case len(c.Samples) == 0:
		err = errors.New("sample set is empty")
	case c.Target == nil:
		err = errors.New("target function is nil")
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, op := range c.Operators {
		if !op.Valid() {
			return fmt.Errorf("%w: unknown operator %d", ErrInvalidConfig, uint8(op))
		}
	}
	return nil
}

func (c Config) engineConfig() genetic.EngineConfig {
	return genetic.EngineConfig{
		PoolSize:         c.PopulationSize,
		EliteCount:       parameter.GPEliteCount,
		CombinationRate:  c.CrossoverRate,
		PerturbationRate: c.MutationRate,
		MaxIterations:    c.Generations,
		Parallelism:      c.Parallelism,
		Seed:             c.Seed,
	}
}
