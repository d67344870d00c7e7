// Package refeval is the tree-walking reference evaluator used only to
// cross-check the CPU's bit-accurate result. It deliberately uses ordinary
// host-signed int64 arithmetic — it exists to give an independent answer,
// not to reproduce the CPU's word semantics — so any expression whose true
// value exceeds 32 bits must be compared against the CPU modulo 2^32.
package refeval

import (
	"errors"
	"fmt"

	"github.com/oisee/exprvm/pkg/ast"
)

// ErrDivisionByZero mirrors the core's division-by-zero error for callers
// that want to distinguish it; refeval is otherwise unconcerned with the
// core's error taxonomy.
var ErrDivisionByZero = errors.New("refeval: division by zero")

// Eval walks tree and returns its arithmetic value using host int64
// arithmetic, truncating division toward zero as Go's / operator already
// does for integers.
func Eval(tree ast.Tree) (int64, error) {
	switch node := tree.(type) {
	case *ast.Number:
		return node.Value, nil
	case *ast.BinaryOp:
		left, err := Eval(node.Left)
		if err != nil {
			return 0, err
		}
		right, err := Eval(node.Right)
		if err != nil {
			return 0, err
		}
		switch node.Op {
		case ast.Add:
			return left + right, nil
		case ast.Sub:
			return left - right, nil
		case ast.Mul:
			return left * right, nil
		case ast.Div:
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("refeval: unknown operator %v", node.Op)
		}
	default:
		return 0, fmt.Errorf("refeval: unknown tree node %T", tree)
	}
}

// Mod32 reduces v modulo 2^32, matching the range of a Word. The reference
// value is compared against the CPU's result modulo 2^32 — taken as the
// correct cross-check rather than a limitation of the 32-bit CPU.
func Mod32(v int64) uint32 {
	return uint32(uint64(v) & 0xFFFFFFFF)
}
