package expr

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// FunctionProbability is the chance of growing an internal node below the root
const FunctionProbability = 0.7

// Generator grows random trees from a fixed operator and terminal set
type Generator struct {
	ops       []Op
	terminals []Terminal
}

// NewGenerator builds a generator whose terminal set is the variable plus
// every integer constant in [constMin, constMax]
func NewGenerator(ops []Op, variable string, constMin, constMax int) (*Generator, error) {
	if len(ops) == 0 {
		return nil, errors.New("operator set is empty")
	}
	for _, op := range ops {
		if !op.Valid() {
			return nil, fmt.Errorf("invalid operator %d", uint8(op))
		}
	}
	if constMin > constMax {
		return nil, fmt.Errorf("constant range [%d, %d] is inverted", constMin, constMax)
	}

	terminals := make([]Terminal, 0, constMax-constMin+2)
	terminals = append(terminals, *Var(variable))
	for c := constMin; c <= constMax; c++ {
		terminals = append(terminals, Terminal{Value: float64(c)})
	}

	return &Generator{
		ops:       append([]Op(nil), ops...),
		terminals: terminals,
	}, nil
}

// TerminalCount returns the size of the terminal set
func (g *Generator) TerminalCount() int {
	return len(g.terminals)
}

// Generate grows a tree bounded by maxDepth starting at depth.
// Nodes at maxDepth are terminals; the node at depth 0 is always a function
func (g *Generator) Generate(rng *rand.Rand, maxDepth, depth int) Node {
	if depth >= maxDepth {
		return g.Terminal(rng)
	}
	if depth == 0 || rng.Float64() < FunctionProbability {
		op := g.ops[rng.IntN(len(g.ops))]
		left := g.Generate(rng, maxDepth, depth+1)
		right := g.Generate(rng, maxDepth, depth+1)
		return NewFunction(op, left, right)
	}
	return g.Terminal(rng)
}

// Terminal returns a fresh terminal drawn uniformly from the terminal set
func (g *Generator) Terminal(rng *rand.Rand) Node {
	t := g.terminals[rng.IntN(len(g.terminals))]
	return &t
}
