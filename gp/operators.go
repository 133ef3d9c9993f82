package gp

import (
	"math/rand/v2"

	"github.com/lixenwraith/symreg/expr"
	"github.com/lixenwraith/symreg/genetic"
)

// Individual is an expression tree with its fitness for the current generation
type Individual = genetic.Candidate[expr.Node, float64]

// Crossover swaps one random non-root subtree between copies of two parents
type Crossover struct{}

// Combine implements genetic.Combiner
func (Crossover) Combine(parents []Individual, rng *rand.Rand) []expr.Node {
	switch len(parents) {
	case 0:
		return nil
	case 1:
		return []expr.Node{parents[0].Data.Copy()}
	}
	c1, c2 := Cross(parents[0].Data, parents[1].Data, rng)
	return []expr.Node{c1, c2}
}

// Cross returns two children built from deep copies of p1 and p2. When both
// trees have a non-root node, a uniformly chosen non-root subtree of each child
// is replaced by a copy of the other's. The parents are never modified
func Cross(p1, p2 expr.Node, rng *rand.Rand) (expr.Node, expr.Node) {
	child1 := p1.Copy()
	child2 := p2.Copy()

	nodes1 := child1.Nodes()
	nodes2 := child2.Nodes()
	if len(nodes1) < 2 || len(nodes2) < 2 {
		return child1, child2
	}

	point1 := nodes1[1+rng.IntN(len(nodes1)-1)]
	point2 := nodes2[1+rng.IntN(len(nodes2)-1)]

	graft1 := point1.Copy()
	graft2 := point2.Copy()

	child1.Replace(point1, graft2)
	child2.Replace(point2, graft1)

	return child1, child2
}

// Mutator replaces a random subtree with a freshly generated one
type Mutator struct {
	Generator *expr.Generator
	// MaxDepth bounds the replacement subtree; the bound is drawn from [1, MaxDepth]
	MaxDepth int
}

// Perturb implements genetic.Perturbator
func (m *Mutator) Perturb(solution *expr.Node, rng *rand.Rand) {
	*solution = m.Mutate(*solution, rng)
}

// Mutate returns a mutated deep copy of n. Picking the root replaces the whole tree
func (m *Mutator) Mutate(n expr.Node, rng *rand.Rand) expr.Node {
	mutated := n.Copy()
	nodes := mutated.Nodes()
	point := nodes[rng.IntN(len(nodes))]

	depth := 1 + rng.IntN(max(m.MaxDepth, 1))
	subtree := m.Generator.Generate(rng, depth, 0)

	if point == mutated {
		return subtree
	}
	mutated.Replace(point, subtree)
	return mutated
}

// RampedInitializer grows each initial tree with a depth bound drawn
// uniformly from [MinDepth, MaxDepth]
func RampedInitializer(gen *expr.Generator, minDepth, maxDepth int) genetic.InitializerFunc[expr.Node] {
	return func(rng *rand.Rand) expr.Node {
		depth := minDepth + rng.IntN(maxDepth-minDepth+1)
		return gen.Generate(rng, depth, 0)
	}
}

// Clone deep-copies an expression tree
func Clone(n expr.Node) expr.Node {
	return n.Copy()
}
