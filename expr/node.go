// Package expr implements binary expression trees over a single input variable
package expr

import (
	"strconv"
	"strings"
)

// DefaultVariable is the symbol used for the input variable
const DefaultVariable = "x"

// Node is a vertex of an expression tree. Implementations are pointer types;
// node identity is pointer identity, and a node is owned by exactly one parent
type Node interface {
	// Evaluate computes the subtree value at x, returning +Inf on any arithmetic failure
	Evaluate(x float64) float64
	// Copy returns a fully independent deep copy
	Copy() Node
	// String renders the subtree in parenthesized infix form
	String() string
	// Nodes lists every node of the subtree in pre-order, root first
	Nodes() []Node
	// Replace swaps the child slot holding target (by identity) for replacement
	Replace(target, replacement Node) bool
	// Depth is the number of edges on the longest root-to-leaf path
	Depth() int
	// Size is the number of nodes in the subtree
	Size() int

	appendNodes(dst []Node) []Node
	writeTo(sb *strings.Builder)
}

// --- Terminal ---

// Terminal is a leaf holding either the input variable or a constant
type Terminal struct {
	Variable bool
	Symbol   string
	Value    float64
}

// Var creates a variable terminal
func Var(symbol string) *Terminal {
	if symbol == "" {
		symbol = DefaultVariable
	}
	return &Terminal{Variable: true, Symbol: symbol}
}

// Const creates a constant terminal
func Const(v float64) *Terminal {
	return &Terminal{Value: v}
}

func (t *Terminal) Evaluate(x float64) float64 {
	if t.Variable {
		return x
	}
	return t.Value
}

func (t *Terminal) Copy() Node {
	c := *t
	return &c
}

func (t *Terminal) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Terminal) Nodes() []Node {
	return []Node{t}
}

// Replace always fails on a leaf
func (t *Terminal) Replace(_, _ Node) bool {
	return false
}

func (t *Terminal) Depth() int { return 0 }

func (t *Terminal) Size() int { return 1 }

func (t *Terminal) appendNodes(dst []Node) []Node {
	return append(dst, t)
}

func (t *Terminal) writeTo(sb *strings.Builder) {
	if t.Variable {
		sb.WriteString(t.Symbol)
		return
	}
	sb.WriteString(strconv.FormatFloat(t.Value, 'g', -1, 64))
}

// --- Function ---

// Function is an internal node applying a binary operator to two owned children
type Function struct {
	Op    Op
	Left  Node
	Right Node
}

// NewFunction creates a function node over the given children
func NewFunction(op Op, left, right Node) *Function {
	return &Function{Op: op, Left: left, Right: right}
}

func (f *Function) Evaluate(x float64) float64 {
	return f.Op.Apply(f.Left.Evaluate(x), f.Right.Evaluate(x))
}

func (f *Function) Copy() Node {
	return &Function{Op: f.Op, Left: f.Left.Copy(), Right: f.Right.Copy()}
}

func (f *Function) String() string {
	var sb strings.Builder
	f.writeTo(&sb)
	return sb.String()
}

func (f *Function) Nodes() []Node {
	return f.appendNodes(make([]Node, 0, f.Size()))
}

func (f *Function) Replace(target, replacement Node) bool {
	if f.Left == target {
		f.Left = replacement
		return true
	}
	if f.Right == target {
		f.Right = replacement
		return true
	}
	return f.Left.Replace(target, replacement) || f.Right.Replace(target, replacement)
}

func (f *Function) Depth() int {
	return 1 + max(f.Left.Depth(), f.Right.Depth())
}

func (f *Function) Size() int {
	return 1 + f.Left.Size() + f.Right.Size()
}

func (f *Function) appendNodes(dst []Node) []Node {
	dst = append(dst, f)
	dst = f.Left.appendNodes(dst)
	return f.Right.appendNodes(dst)
}

func (f *Function) writeTo(sb *strings.Builder) {
	if sym := f.Op.Symbol(); sym != "" {
		sb.WriteByte('(')
		f.Left.writeTo(sb)
		sb.WriteByte(' ')
		sb.WriteString(sym)
		sb.WriteByte(' ')
		f.Right.writeTo(sb)
		sb.WriteByte(')')
		return
	}
	sb.WriteString(f.Op.Name())
	sb.WriteByte('(')
	f.Left.writeTo(sb)
	sb.WriteString(", ")
	f.Right.writeTo(sb)
	sb.WriteByte(')')
}
