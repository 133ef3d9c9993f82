// Package config loads run settings from TOML and builds a validated gp.Config
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/symreg/expr"
	"github.com/lixenwraith/symreg/fitness"
	"github.com/lixenwraith/symreg/gp"
	"github.com/lixenwraith/symreg/parameter"
)

// Config mirrors the TOML file layout
type Config struct {
	PopulationSize   int      `toml:"population_size"`
	Generations      int      `toml:"generations"`
	MinDepth         int      `toml:"min_depth"`
	MaxDepth         int      `toml:"max_depth"`
	MutationMaxDepth int      `toml:"mutation_max_depth"`
	TournamentSize   int      `toml:"tournament_size"`
	CrossoverRate    float64  `toml:"crossover_rate"`
	MutationRate     float64  `toml:"mutation_rate"`
	SuccessThreshold float64  `toml:"success_threshold"`
	ConstantRange    []int    `toml:"constant_range"`
	Operators        []string `toml:"operators"`
	Parallelism      int      `toml:"parallelism"`
	Seed             uint64   `toml:"seed"`

	Problem Problem `toml:"problem"`
}

// Problem describes the target function and where it is sampled
type Problem struct {
	Variable string `toml:"variable"`
	// SampleRange is an inclusive integer range, ignored when Samples is set
	SampleRange []int     `toml:"sample_range"`
	Samples     []float64 `toml:"samples"`
	// Target holds polynomial coefficients, lowest order first
	Target []float64 `toml:"target"`
}

// Default returns the reference configuration
func Default() Config {
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
		ConstantRange:    []int{parameter.GPConstantMin, parameter.GPConstantMax},
		Operators:        append([]string(nil), parameter.GPOperators...),
		Parallelism:      parameter.GPParallelism,
		Problem: Problem{
			Variable:    parameter.GPVariable,
			SampleRange: []int{parameter.GPSampleMin, parameter.GPSampleMax},
			Target:      append([]float64(nil), parameter.GPTargetCoefficients...),
		},
	}
}

// Load reads a TOML file over the defaults
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults, rejecting unknown keys
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", gp.ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Encode writes cfg as TOML
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Build converts the file representation into a validated run configuration
func (c Config) Build() (gp.Config, error) {
	if len(c.ConstantRange) != 2 {
		return gp.Config{}, fmt.Errorf("%w: constant_range needs 2 bounds, got %d", gp.ErrInvalidConfig, len(c.ConstantRange))
	}

	ops, err := expr.ParseOps(c.Operators)
	if err != nil {
		return gp.Config{}, fmt.Errorf("%w: %v", gp.ErrInvalidConfig, err)
	}

	samples, err := c.Problem.samples()
	if err != nil {
		return gp.Config{}, err
	}
	if len(c.Problem.Target) == 0 {
		return gp.Config{}, fmt.Errorf("%w: problem.target needs at least one coefficient", gp.ErrInvalidConfig)
	}

	out := gp.Config{
		PopulationSize:   c.PopulationSize,
		Generations:      c.Generations,
		MinDepth:         c.MinDepth,
		MaxDepth:         c.MaxDepth,
		MutationMaxDepth: c.MutationMaxDepth,
		TournamentSize:   c.TournamentSize,
		CrossoverRate:    c.CrossoverRate,
		MutationRate:     c.MutationRate,
		SuccessThreshold: c.SuccessThreshold,
		ConstantMin:      c.ConstantRange[0],
		ConstantMax:      c.ConstantRange[1],
		Operators:        ops,
		Variable:         c.Problem.Variable,
		Samples:          samples,
		Target:           fitness.Polynomial(c.Problem.Target...),
		Parallelism:      c.Parallelism,
		Seed:             c.Seed,
	}
	if err := out.Validate(); err != nil {
		return gp.Config{}, err
	}
	return out, nil
}

func (p Problem) samples() ([]float64, error) {
	if len(p.Samples) > 0 {
		return append([]float64(nil), p.Samples...), nil
	}
	if len(p.SampleRange) != 2 {
		return nil, fmt.Errorf("%w: problem.sample_range needs 2 bounds, got %d", gp.ErrInvalidConfig, len(p.SampleRange))
	}
	xs := fitness.IntRange(p.SampleRange[0], p.SampleRange[1])
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: problem.sample_range [%d, %d] is empty",
			gp.ErrInvalidConfig, p.SampleRange[0], p.SampleRange[1])
	}
	return xs, nil
}

// ErrNoConfig reports that no configuration file was found at a default location
var ErrNoConfig = errors.New("no config file")

// Discover returns the first existing path among candidates
func Discover(candidates ...string) (string, error) {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoConfig
}
