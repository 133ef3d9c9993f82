package gp

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/symreg/expr"
)

func testGenerator(t *testing.T) *expr.Generator {
	t.Helper()
	gen, err := expr.NewGenerator(expr.DefaultOps, "x", -5, 5)
	require.NoError(t, err)
	return gen
}

// assertWellFormed checks that every function node has two children and no
// node is reachable twice
func assertWellFormed(t *testing.T, n expr.Node) {
	t.Helper()
	nodes := n.Nodes()
	require.Equal(t, n.Size(), len(nodes))

	seen := make(map[expr.Node]bool, len(nodes))
	for _, node := range nodes {
		require.False(t, seen[node], "node %s visited twice", node)
		seen[node] = true
		if f, ok := node.(*expr.Function); ok {
			require.NotNil(t, f.Left)
			require.NotNil(t, f.Right)
		}
	}
}

func assertDisjoint(t *testing.T, a, b expr.Node) {
	t.Helper()
	inA := make(map[expr.Node]bool)
	for _, n := range a.Nodes() {
		inA[n] = true
	}
	for _, n := range b.Nodes() {
		assert.False(t, inA[n], "node %s shared between trees", n)
	}
}

func TestCross_ParentsUntouched(t *testing.T) {
	gen := testGenerator(t)
	rng := rand.New(rand.NewPCG(1, 1))

	for i := 0; i < 100; i++ {
		p1 := gen.Generate(rng, 4, 0)
		p2 := gen.Generate(rng, 4, 0)
		s1, s2 := p1.String(), p2.String()

		c1, c2 := Cross(p1, p2, rng)

		assert.Equal(t, s1, p1.String())
		assert.Equal(t, s2, p2.String())
		assertWellFormed(t, c1)
		assertWellFormed(t, c2)
		assertDisjoint(t, c1, c2)
		assertDisjoint(t, c1, p1)
		assertDisjoint(t, c1, p2)
		assertDisjoint(t, c2, p1)
		assertDisjoint(t, c2, p2)

		// Node count is conserved across the swap
		assert.Equal(t, p1.Size()+p2.Size(), c1.Size()+c2.Size())
	}
}

func TestCross_GraftIsNotAliased(t *testing.T) {
	// Parents of depth one, so every swap grafts a terminal
	p1 := expr.NewFunction(expr.OpAdd, expr.Var("x"), expr.Const(1))
	p2 := expr.NewFunction(expr.OpMul, expr.Const(2), expr.Const(3))
	rng := rand.New(rand.NewPCG(9, 9))

	c1, c2 := Cross(p1, p2, rng)
	before2 := c2.String()

	// Mutate every terminal reachable from child1
	for _, n := range c1.Nodes() {
		if term, ok := n.(*expr.Terminal); ok {
			term.Value = 99
			term.Variable = false
		}
	}

	assert.Equal(t, before2, c2.String())
	assert.Equal(t, "(x + 1)", p1.String())
	assert.Equal(t, "(2 * 3)", p2.String())
}

func TestCross_TerminalParentNoSwap(t *testing.T) {
	gen := testGenerator(t)
	rng := rand.New(rand.NewPCG(2, 2))

	leaf := expr.Const(4)
	tree := gen.Generate(rng, 3, 0)

	c1, c2 := Cross(leaf, tree, rng)
	assert.Equal(t, "4", c1.String())
	assert.Equal(t, tree.String(), c2.String())
	assert.False(t, c1 == expr.Node(leaf))
	assert.False(t, c2 == tree)
}

func TestCrossover_Combine(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	a := expr.NewFunction(expr.OpAdd, expr.Var("x"), expr.Const(1))

	assert.Nil(t, Crossover{}.Combine(nil, rng))

	one := Crossover{}.Combine([]Individual{{Data: a}}, rng)
	require.Len(t, one, 1)
	assert.Equal(t, a.String(), one[0].String())
	assert.False(t, one[0] == expr.Node(a))

	two := Crossover{}.Combine([]Individual{{Data: a}, {Data: a.Copy()}}, rng)
	assert.Len(t, two, 2)
}

func TestMutate_WellFormedAndIndependent(t *testing.T) {
	gen := testGenerator(t)
	m := &Mutator{Generator: gen, MaxDepth: 3}
	rng := rand.New(rand.NewPCG(4, 4))

	tree := gen.Generate(rng, 5, 0)
	for i := 0; i < 300; i++ {
		before := tree.String()
		next := m.Mutate(tree, rng)

		assert.Equal(t, before, tree.String(), "mutation modified its input")
		assertWellFormed(t, next)
		assertDisjoint(t, tree, next)
		tree = next
	}
}

func TestMutate_RootReplacement(t *testing.T) {
	gen := testGenerator(t)
	m := &Mutator{Generator: gen, MaxDepth: 3}
	rng := rand.New(rand.NewPCG(5, 5))

	// A single terminal has only the root to pick, so the result is a fresh tree
	leaf := expr.Const(1)
	for i := 0; i < 20; i++ {
		out := m.Mutate(leaf, rng)
		_, isFunc := out.(*expr.Function)
		assert.True(t, isFunc)
		assert.LessOrEqual(t, out.Depth(), 3)
	}
}

func TestMutator_Perturb(t *testing.T) {
	gen := testGenerator(t)
	m := &Mutator{Generator: gen, MaxDepth: 2}
	rng := rand.New(rand.NewPCG(6, 6))

	var n expr.Node = expr.Const(1)
	orig := n
	m.Perturb(&n, rng)
	assert.False(t, n == orig)
	assertWellFormed(t, n)
}

func TestOperators_LongRunWellFormed(t *testing.T) {
	gen := testGenerator(t)
	m := &Mutator{Generator: gen, MaxDepth: 3}
	rng := rand.New(rand.NewPCG(7, 7))

	pop := make([]expr.Node, 10)
	for i := range pop {
		pop[i] = gen.Generate(rng, 4, 0)
	}
	for round := 0; round < 100; round++ {
		i, j := rng.IntN(len(pop)), rng.IntN(len(pop))
		a, b := Cross(pop[i], pop[j], rng)
		pop[i], pop[j] = m.Mutate(a, rng), b
	}
	for _, n := range pop {
		assertWellFormed(t, n)
	}
	for i := range pop {
		for j := i + 1; j < len(pop); j++ {
			assertDisjoint(t, pop[i], pop[j])
		}
	}
}

func TestRampedInitializer_DepthRange(t *testing.T) {
	gen := testGenerator(t)
	grow := RampedInitializer(gen, 2, 4)
	rng := rand.New(rand.NewPCG(8, 8))

	for i := 0; i < 100; i++ {
		n := grow(rng)
		assert.GreaterOrEqual(t, n.Depth(), 1)
		assert.LessOrEqual(t, n.Depth(), 4)
	}
}
