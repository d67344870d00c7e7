package fuzz

import (
	"math/rand/v2"

	"github.com/oisee/exprvm/pkg/ast"
)

// generator produces random, bounded-depth expression trees for the
// property checker. maxDepth limits recursion so generated programs stay
// small and finite.
type generator struct {
	rng      *rand.Rand
	maxDepth int
}

func newGenerator(seed1, seed2 uint64, maxDepth int) *generator {
	return &generator{
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		maxDepth: maxDepth,
	}
}

var operators = []ast.Operator{ast.Add, ast.Sub, ast.Mul, ast.Div}

// safeOperators excludes Sub: a safe subtree must stay within [0, 2^32)
// so it can only be built from operations that keep a non-negative result
// non-negative (Add, Mul never go negative from non-negative operands;
// Sub can).
var safeOperators = []ast.Operator{ast.Add, ast.Mul}

const wordCeiling = int64(1) << 32

// tree generates a random expression tree of depth at most g.maxDepth.
// Leaves are small non-negative integers. Deep Add/Sub/Mul chains can still
// overflow the reference evaluator's int64 arithmetic (eight leaves of 999
// multiplied exceed it); Go's int64 wraps modulo 2^64, which leaves the
// value unchanged modulo 2^32, so the cross-check is unaffected.
//
// Div is special-cased: unsigned division on the CPU only agrees with
// refeval's host-signed truncating division when both operands' true
// arithmetic value is already within [0, 2^32) — a negative dividend or
// divisor (from a Sub that went negative) or one that overflows a Word
// produces a bit pattern Div interprets as unsigned but refeval evaluates
// as signed or arbitrary-precision, and the two are not congruent modulo
// 2^32 for division the way they are for Add/Sub/Mul (see DESIGN.md).
// So whenever this generator picks Div, both operands are drawn from
// safeTree instead of tree, guaranteeing they are themselves in range.
func (g *generator) tree(depth int) ast.Tree {
	if depth >= g.maxDepth || g.rng.IntN(3) == 0 {
		return &ast.Number{Value: int64(g.rng.IntN(1000))}
	}
	op := operators[g.rng.IntN(len(operators))]
	if op == ast.Div {
		left, _ := g.safeTree(depth + 1)
		right, _ := g.safeTree(depth + 1)
		return &ast.BinaryOp{Op: ast.Div, Left: left, Right: right}
	}
	return &ast.BinaryOp{
		Op:    op,
		Left:  g.tree(depth + 1),
		Right: g.tree(depth + 1),
	}
}

// safeTree generates an expression tree whose exact arithmetic value
// (computed alongside, not re-derived through refeval) is guaranteed to
// lie in [0, wordCeiling). It also returns that value so a caller building
// a larger safe subtree can combine it without re-evaluating.
func (g *generator) safeTree(depth int) (ast.Tree, int64) {
	if depth >= g.maxDepth || g.rng.IntN(3) == 0 {
		v := int64(g.rng.IntN(1000))
		return &ast.Number{Value: v}, v
	}

	op := safeOperators[g.rng.IntN(len(safeOperators))]
	left, lv := g.safeTree(depth + 1)
	right, rv := g.safeTree(depth + 1)

	var result int64
	switch op {
	case ast.Add:
		result = lv + rv
	case ast.Mul:
		result = lv * rv
	}

	if result < 0 || result >= wordCeiling {
		// The chosen combination would leave [0, wordCeiling); fall back
		// to a fresh small leaf rather than propagate an unsafe value.
		v := int64(g.rng.IntN(1000))
		return &ast.Number{Value: v}, v
	}
	return &ast.BinaryOp{Op: op, Left: left, Right: right}, result
}
