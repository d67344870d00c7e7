package refeval

import (
	"errors"
	"testing"

	"github.com/oisee/exprvm/pkg/ast"
)

func num(v int64) ast.Tree { return &ast.Number{Value: v} }
func bin(op ast.Operator, l, r ast.Tree) ast.Tree {
	return &ast.BinaryOp{Op: op, Left: l, Right: r}
}

func TestEvalThreePlusFour(t *testing.T) {
	v, err := Eval(bin(ast.Add, num(3), num(4)))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != 7 {
		t.Errorf("v = %d, want 7", v)
	}
}

func TestEvalPrecedence(t *testing.T) {
	// 3+4*2 = 11
	v, err := Eval(bin(ast.Add, num(3), bin(ast.Mul, num(4), num(2))))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != 11 {
		t.Errorf("v = %d, want 11", v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := Eval(bin(ast.Div, num(10), num(0)))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("err = %v, want ErrDivisionByZero", err)
	}
}

func TestMod32Wraps(t *testing.T) {
	if got := Mod32(0x100000000); got != 0 {
		t.Errorf("Mod32(2^32) = %#x, want 0", got)
	}
	if got := Mod32(-1); got != 0xFFFFFFFF {
		t.Errorf("Mod32(-1) = %#x, want 0xFFFFFFFF", got)
	}
}
