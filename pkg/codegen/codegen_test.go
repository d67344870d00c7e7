package codegen

import (
	"errors"
	"testing"

	"github.com/oisee/exprvm/pkg/ast"
	"github.com/oisee/exprvm/pkg/ir"
)

func num(v int64) ast.Tree { return &ast.Number{Value: v} }

func bin(op ast.Operator, l, r ast.Tree) ast.Tree {
	return &ast.BinaryOp{Op: op, Left: l, Right: r}
}

func TestLowerSimpleAddition(t *testing.T) {
	// 3+4
	tree := bin(ast.Add, num(3), num(4))
	prog, reg, err := Lower(tree)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if prog.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", prog.Len())
	}
	want := []ir.Instr{
		{Op: ir.LoadConst, Dst: 0, Imm: 3},
		{Op: ir.LoadConst, Dst: 1, Imm: 4},
		{Op: ir.Add, Dst: 0, Src: 1},
	}
	for i, w := range want {
		if got := prog.At(i); got != w {
			t.Errorf("instr %d: got %+v, want %+v", i, got, w)
		}
	}
	if reg != 0 {
		t.Errorf("result register = %d, want 0", reg)
	}
}

func TestLowerPrecedenceMulBeforeAdd(t *testing.T) {
	// 3+4*2: multiplication instruction precedes addition
	tree := bin(ast.Add, num(3), bin(ast.Mul, num(4), num(2)))
	prog, _, err := Lower(tree)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var mulIdx, addIdx = -1, -1
	for i := 0; i < prog.Len(); i++ {
		switch prog.At(i).Op {
		case ir.Mul:
			mulIdx = i
		case ir.Add:
			addIdx = i
		}
	}
	if mulIdx == -1 || addIdx == -1 {
		t.Fatalf("expected both Mul and Add in program, got %+v", prog.Instrs())
	}
	if mulIdx >= addIdx {
		t.Errorf("Mul at %d should precede Add at %d", mulIdx, addIdx)
	}
}

func TestLowerParenthesesAddBeforeMul(t *testing.T) {
	// (3+4)*2: addition precedes multiplication
	tree := bin(ast.Mul, bin(ast.Add, num(3), num(4)), num(2))
	prog, _, err := Lower(tree)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var addIdx, mulIdx = -1, -1
	for i := 0; i < prog.Len(); i++ {
		switch prog.At(i).Op {
		case ir.Add:
			addIdx = i
		case ir.Mul:
			mulIdx = i
		}
	}
	if addIdx == -1 || mulIdx == -1 {
		t.Fatalf("expected both Add and Mul in program, got %+v", prog.Instrs())
	}
	if addIdx >= mulIdx {
		t.Errorf("Add at %d should precede Mul at %d", addIdx, mulIdx)
	}
}

func TestLowerDeterministicForStructurallyEqualTrees(t *testing.T) {
	t1 := bin(ast.Sub, num(10), num(3))
	t2 := bin(ast.Sub, num(10), num(3))
	p1, r1, err1 := Lower(t1)
	p2, r2, err2 := Lower(t2)
	if err1 != nil || err2 != nil {
		t.Fatalf("Lower errors: %v, %v", err1, err2)
	}
	if r1 != r2 {
		t.Errorf("result registers differ: %d vs %d", r1, r2)
	}
	if p1.Len() != p2.Len() {
		t.Fatalf("program lengths differ: %d vs %d", p1.Len(), p2.Len())
	}
	for i := 0; i < p1.Len(); i++ {
		if p1.At(i) != p2.At(i) {
			t.Errorf("instr %d differs: %+v vs %+v", i, p1.At(i), p2.At(i))
		}
	}
}

func TestLowerNilSubtreeIsInternalError(t *testing.T) {
	tree := &ast.BinaryOp{Op: ast.Add, Left: num(1), Right: nil}
	_, _, err := Lower(tree)
	if !errors.Is(err, ErrInternalError) {
		t.Errorf("err = %v, want ErrInternalError", err)
	}
}

func TestLowerUnknownOperatorIsInternalError(t *testing.T) {
	tree := &ast.BinaryOp{Op: ast.Operator(200), Left: num(1), Right: num(2)}
	_, _, err := Lower(tree)
	if !errors.Is(err, ErrInternalError) {
		t.Errorf("err = %v, want ErrInternalError", err)
	}
}
