package expr

import (
	"fmt"
	"math"
)

// Op identifies a binary operator
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow

	opCount
)

// opInfo describes how an operator is named, rendered and applied
type opInfo struct {
	name   string
	symbol string // empty renders as name(a, b)
	apply  func(a, b float64) float64
}

var opTable = [opCount]opInfo{
	OpAdd: {name: "add", symbol: "+", apply: func(a, b float64) float64 { return a + b }},
	OpSub: {name: "subtract", symbol: "-", apply: func(a, b float64) float64 { return a - b }},
	OpMul: {name: "multiply", symbol: "*", apply: func(a, b float64) float64 { return a * b }},
	OpDiv: {name: "divide", symbol: "/", apply: func(a, b float64) float64 {
		if b == 0 {
			return math.Inf(1)
		}
		return a / b
	}},
	OpPow: {name: "pow", apply: math.Pow},
}

// DefaultOps is the operator set used when none is configured
var DefaultOps = []Op{OpAdd, OpSub, OpMul}

// Valid reports whether o is a known operator
func (o Op) Valid() bool {
	return o < opCount
}

// Name returns the configuration name of the operator
func (o Op) Name() string {
	if !o.Valid() {
		return fmt.Sprintf("op%d", uint8(o))
	}
	return opTable[o].name
}

// Symbol returns the infix symbol, or "" for operators rendered in call form
func (o Op) Symbol() string {
	if !o.Valid() {
		return ""
	}
	return opTable[o].symbol
}

func (o Op) String() string {
	return o.Name()
}

// Apply combines two operand values. Any non-finite operand or result
// collapses to +Inf, so failures propagate upward regardless of operator
func (o Op) Apply(a, b float64) float64 {
	if !o.Valid() || !finite(a) || !finite(b) {
		return math.Inf(1)
	}
	v := opTable[o].apply(a, b)
	if !finite(v) {
		return math.Inf(1)
	}
	return v
}

// ParseOp resolves an operator by configuration name
func ParseOp(name string) (Op, error) {
	for i := Op(0); i < opCount; i++ {
		if opTable[i].name == name {
			return i, nil
		}
	}
	// Accept infix symbols as aliases
	for i := Op(0); i < opCount; i++ {
		if opTable[i].symbol != "" && opTable[i].symbol == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", name)
}

// ParseOps resolves a list of operator names, rejecting duplicates
func ParseOps(names []string) ([]Op, error) {
	ops := make([]Op, 0, len(names))
	seen := make(map[Op]bool, len(names))
	for _, name := range names {
		op, err := ParseOp(name)
		if err != nil {
			return nil, err
		}
		if seen[op] {
			return nil, fmt.Errorf("duplicate operator %q", name)
		}
		seen[op] = true
		ops = append(ops, op)
	}
	return ops, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
