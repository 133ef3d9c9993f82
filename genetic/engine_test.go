package genetic

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Toy problem: find x minimizing |x - 3|

type averageCombiner struct{}

func (averageCombiner) Combine(parents []Candidate[float64, float64], rng *rand.Rand) []float64 {
	a, b := parents[0].Data, parents[1].Data
	w := rng.Float64()
	return []float64{w*a + (1-w)*b, (1-w)*a + w*b}
}

type noisePerturbator struct{}

func (noisePerturbator) Perturb(solution *float64, rng *rand.Rand) {
	*solution += rng.NormFloat64()
}

func toyEngine(t *testing.T, cfg EngineConfig) *Engine[float64, float64] {
	t.Helper()
	identity := func(x float64) float64 { return x }
	eng, err := NewEngine[float64, float64](
		func(x float64) float64 { return math.Abs(x - 3) },
		func(rng *rand.Rand) float64 { return rng.Float64()*200 - 100 },
		&TournamentSelector[float64, float64]{TournamentSize: 3, Clone: identity},
		averageCombiner{},
		noisePerturbator{},
		identity,
		cfg,
	)
	require.NoError(t, err)
	return eng
}

func toyConfig() EngineConfig {
	return EngineConfig{
		PoolSize:         31,
		EliteCount:       1,
		CombinationRate:  0.8,
		PerturbationRate: 0.2,
		MaxIterations:    30,
		Parallelism:      1,
		Seed:             7,
	}
}

func TestEngineConfig_Validate(t *testing.T) {
	base := toyConfig()
	require.NoError(t, base.Validate())

	bad := []func(c *EngineConfig){
		func(c *EngineConfig) { c.PoolSize = 0 },
		func(c *EngineConfig) { c.PoolSize = -4 },
		func(c *EngineConfig) { c.EliteCount = -1 },
		func(c *EngineConfig) { c.EliteCount = c.PoolSize + 1 },
		func(c *EngineConfig) { c.CombinationRate = 1.5 },
		func(c *EngineConfig) { c.PerturbationRate = -0.1 },
		func(c *EngineConfig) { c.MaxIterations = 0 },
	}
	for i, mutate := range bad {
		cfg := base
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}
}

func TestNewEngine_RequiresOperators(t *testing.T) {
	_, err := NewEngine[float64, float64](nil, nil, nil, nil, nil, nil, toyConfig())
	assert.Error(t, err)
}

func TestEngine_NextGenerationSize(t *testing.T) {
	for _, size := range []int{1, 2, 3, 10, 31, 100} {
		cfg := toyConfig()
		cfg.PoolSize = size
		eng := toyEngine(t, cfg)

		eng.Initialize()
		for gen := 0; gen < 5; gen++ {
			_, err := eng.Evaluate(context.Background())
			require.NoError(t, err)
			next := eng.NextGeneration()
			assert.Len(t, next.Members, size, "pool size %d", size)
			assert.Equal(t, gen+1, next.Generation)
			eng.currentPool = next
		}
	}
}

func TestEngine_ElitismMonotonic(t *testing.T) {
	cfg := toyConfig()
	cfg.PerturbationRate = 1
	eng := toyEngine(t, cfg)

	history, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, history, cfg.MaxIterations)

	for g := 1; g < len(history); g++ {
		assert.LessOrEqual(t, history[g].BestScore, history[g-1].BestScore, "generation %d regressed", g)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	a, err := toyEngine(t, toyConfig()).Run(context.Background())
	require.NoError(t, err)
	b, err := toyEngine(t, toyConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	seq := toyConfig()
	par := toyConfig()
	par.Parallelism = 8

	a, err := toyEngine(t, seq).Run(context.Background())
	require.NoError(t, err)
	b, err := toyEngine(t, par).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEngine_TerminatorStopsAfterRecording(t *testing.T) {
	eng := toyEngine(t, toyConfig())
	eng.SetTerminator(func(_ *Pool[float64, float64], stats PoolStats[float64]) bool {
		return stats.Generation == 2
	})

	var observed []int
	eng.SetObserver(func(p *Pool[float64, float64], stats PoolStats[float64]) {
		assert.True(t, p.Evaluated)
		observed = append(observed, stats.Generation)
	})

	history, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, []int{0, 1, 2}, observed)
	assert.Equal(t, PhaseTerminated, eng.Phase())
	assert.Equal(t, uint64(3*toyConfig().PoolSize), eng.Evaluations())

	best, err := eng.Best()
	require.NoError(t, err)
	assert.Equal(t, history[2].BestScore, best.Score)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := toyEngine(t, toyConfig()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history)
}

func TestEngine_BestBeforeEvaluation(t *testing.T) {
	eng := toyEngine(t, toyConfig())
	_, err := eng.Best()
	assert.ErrorIs(t, err, ErrNoCandidates)

	eng.Initialize()
	_, err = eng.Best()
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, PhaseReplaced, eng.Phase())
}

func TestEngine_StatsAndSeed(t *testing.T) {
	cfg := toyConfig()
	cfg.Seed = 0
	eng := toyEngine(t, cfg)
	assert.NotZero(t, eng.Seed())

	eng.currentPool = &Pool[float64, float64]{Members: []Candidate[float64, float64]{
		{Data: 5}, {Data: 3}, {Data: 1}, {Data: 3},
	}}
	stats, err := eng.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.BestIndex)
	assert.Equal(t, 0.0, stats.BestScore)
	assert.Equal(t, 2.0, stats.WorstScore)
	assert.Equal(t, 1.0, stats.AverageScore)
	assert.Equal(t, 4, stats.Size)
}

func TestTournamentSelector(t *testing.T) {
	p := &Pool[float64, float64]{Members: []Candidate[float64, float64]{
		{Data: 10, Score: 4}, {Data: 20, Score: 1}, {Data: 30, Score: 1}, {Data: 40, Score: 9},
	}}
	rng := rand.New(rand.NewPCG(1, 1))

	t.Run("full tournament picks global best", func(t *testing.T) {
		ts := &TournamentSelector[float64, float64]{TournamentSize: 4}
		for i := 0; i < 50; i++ {
			sel := ts.Select(p, 1, rng)
			require.Len(t, sel, 1)
			assert.Equal(t, 1.0, sel[0].Score)
		}
	})

	t.Run("oversized tournament is clamped", func(t *testing.T) {
		ts := &TournamentSelector[float64, float64]{TournamentSize: 50}
		sel := ts.Select(p, 3, rng)
		require.Len(t, sel, 3)
		for _, c := range sel {
			assert.Equal(t, 1.0, c.Score)
		}
	})

	t.Run("size one is uniform", func(t *testing.T) {
		ts := &TournamentSelector[float64, float64]{TournamentSize: 1}
		seen := map[float64]bool{}
		for i := 0; i < 200; i++ {
			seen[ts.Select(p, 1, rng)[0].Data] = true
		}
		assert.Len(t, seen, 4)
	})

	t.Run("winner is cloned", func(t *testing.T) {
		cloned := 0
		ts := &TournamentSelector[float64, float64]{
			TournamentSize: 2,
			Clone:          func(x float64) float64 { cloned++; return x },
		}
		ts.Select(p, 5, rng)
		assert.Equal(t, 5, cloned)
	})

	t.Run("empty pool", func(t *testing.T) {
		ts := &TournamentSelector[float64, float64]{TournamentSize: 2}
		assert.Nil(t, ts.Select(&Pool[float64, float64]{}, 2, rng))
	})
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "evaluated", PhaseEvaluated.String())
	assert.Equal(t, "terminated", PhaseTerminated.String())
	assert.Equal(t, "phase(99)", Phase(99).String())
}

func TestEngine_AdvanceReplacesPool(t *testing.T) {
	eng := toyEngine(t, toyConfig())
	eng.Initialize()
	_, err := eng.Evaluate(context.Background())
	require.NoError(t, err)

	before := eng.Pool()
	eng.Advance()
	after := eng.Pool()

	assert.NotSame(t, before, after)
	assert.Equal(t, before.Generation+1, after.Generation)
	assert.False(t, after.Evaluated)
	assert.Len(t, after.Members, toyConfig().PoolSize)
	assert.Equal(t, PhaseReplaced, eng.Phase())

	// Generations recorded by Run are consecutive, one Advance apart
	history, err := eng.Run(context.Background())
	require.NoError(t, err)
	for i, s := range history {
		assert.Equal(t, i, s.Generation)
	}
	assert.Equal(t, len(history)-1, eng.Pool().Generation)
}
