// Package codegen lowers an expression tree (pkg/ast) into an IR program
// (pkg/ir) using a monotonic virtual-register counter and the two-address
// dst = dst op src convention the CPU's arithmetic semantics require.
package codegen

import (
	"errors"
	"fmt"

	"github.com/oisee/exprvm/pkg/ast"
	"github.com/oisee/exprvm/pkg/ir"
)

// ErrInternalError is returned when the tree names an unrecognised
// operator or contains a nil subtree — a producer bug, not a user-facing
// error.
var ErrInternalError = errors.New("codegen: internal error")

// opcodeFor maps an ast.Operator to its IR opcode. Any operator not in this
// table is an internal error.
var opcodeFor = map[ast.Operator]ir.OpCode{
	ast.Add: ir.Add,
	ast.Sub: ir.Sub,
	ast.Mul: ir.Mul,
	ast.Div: ir.Div,
}

// Lowerer walks one expression tree into one IR program. It is not reusable
// across trees; call New for each lowering.
type Lowerer struct {
	prog    *ir.Program
	nextReg uint8
}

// New returns a Lowerer with a fresh, empty program and a register counter
// starting at 0.
func New() *Lowerer {
	return &Lowerer{prog: ir.NewProgram()}
}

// Lower lowers tree into IR on l's program and returns the register holding
// the tree's value. Callers that only need one tree can use the
// package-level Lower function instead of constructing a Lowerer directly.
func (l *Lowerer) Lower(tree ast.Tree) (uint8, error) {
	if tree == nil {
		return 0, fmt.Errorf("%w: nil subtree", ErrInternalError)
	}
	switch node := tree.(type) {
	case *ast.Number:
		return l.lowerNumber(node), nil
	case *ast.BinaryOp:
		return l.lowerBinaryOp(node)
	default:
		return 0, fmt.Errorf("%w: unrecognised tree node %T", ErrInternalError, tree)
	}
}

func (l *Lowerer) lowerNumber(n *ast.Number) uint8 {
	r := l.allocReg()
	l.prog.Append(ir.Instr{Op: ir.LoadConst, Dst: r, Imm: uint32(n.Value)})
	return r
}

func (l *Lowerer) lowerBinaryOp(node *ast.BinaryOp) (uint8, error) {
	opcode, ok := opcodeFor[node.Op]
	if !ok {
		return 0, fmt.Errorf("%w: unknown operator %v", ErrInternalError, node.Op)
	}
	lr, err := l.Lower(node.Left)
	if err != nil {
		return 0, err
	}
	rr, err := l.Lower(node.Right)
	if err != nil {
		return 0, err
	}
	// Two-address form: the destination coincides with the left operand.
	// rr becomes dead immediately after this instruction but is not
	// reclaimed — linear allocation by design, no register reuse.
	l.prog.Append(ir.Instr{Op: opcode, Dst: lr, Src: rr})
	return lr, nil
}

func (l *Lowerer) allocReg() uint8 {
	r := l.nextReg
	l.nextReg++
	return r
}

// Program returns the IR program built so far.
func (l *Lowerer) Program() *ir.Program {
	return l.prog
}

// Lower lowers a single expression tree into a fresh IR program, returning
// the program and the register holding the tree's final value.
func Lower(tree ast.Tree) (*ir.Program, uint8, error) {
	l := New()
	reg, err := l.Lower(tree)
	if err != nil {
		return nil, 0, err
	}
	return l.prog, reg, nil
}
