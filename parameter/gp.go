package parameter

// Genetic Programming - Population and Search
const (
	// GPPopulationSize is the number of individuals per generation
	GPPopulationSize = 100

	// GPGenerations is the maximum generation budget for a run
	GPGenerations = 50

	// GPTournamentSize is the draw count per tournament, controls selection pressure
	GPTournamentSize = 3

	// GPEliteCount is carried over unchanged each generation
	GPEliteCount = 1

	// GPCrossoverRate is the probability of recombining a selected pair (0.0-1.0)
	GPCrossoverRate = 0.8

	// GPMutationRate is the probability of mutating each child independently (0.0-1.0)
	GPMutationRate = 0.2

	// GPSuccessThreshold stops a run early once best fitness falls below it
	GPSuccessThreshold = 0.001

	// GPParallelism bounds concurrent fitness evaluations
	GPParallelism = 4
)

// Genetic Programming - Tree Shape
const (
	// GPMaxDepth is the upper depth bound for initial trees
	GPMaxDepth = 6

	// GPMinDepth is the lower depth bound for initial trees
	GPMinDepth = 2

	// GPMutationMaxDepth bounds subtrees grown by mutation; actual bound is drawn from [1, max]
	GPMutationMaxDepth = 3
)

// Genetic Programming - Terminal Set and Problem
const (
	// GPVariable is the input variable symbol
	GPVariable = "x"

	// GPConstantMin and GPConstantMax bound integer constant terminals, inclusive
	GPConstantMin = -5
	GPConstantMax = 5

	// GPSampleMin and GPSampleMax bound the integer sample points, inclusive
	GPSampleMin = -10
	GPSampleMax = 10
)

// GPTargetCoefficients define the reference target x^2 + 3x + 2, lowest order first
var GPTargetCoefficients = []float64{2, 3, 1}

// GPOperators is the default operator set by name
var GPOperators = []string{"add", "subtract", "multiply"}

// GPDemoPoints are the x values of the final demonstration table
var GPDemoPoints = []float64{-5, -2, 0, 2, 5}
