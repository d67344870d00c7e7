// Package parser is a classic recursive-descent parser over the standard
// arithmetic precedence grammar (* and / bind tighter than + and -,
// parentheses override both). Like pkg/lexer it is a small, excluded
// collaborator: its only contract with the core is producing an ast.Tree.
package parser

import (
	"fmt"

	"github.com/oisee/exprvm/pkg/ast"
	"github.com/oisee/exprvm/pkg/lexer"
)

// Parser turns a token stream into an ast.Tree.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

// New returns a Parser ready to parse src.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

// Parse parses a complete expression, returning an error if input remains
// after the expression or the grammar is violated.
func Parse(src string) (ast.Tree, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	tree, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing input")
	}
	return tree, nil
}

// parseExpr ::= term (('+' | '-') term)*
func (p *Parser) parseExpr() (ast.Tree, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.cur.Kind {
		case lexer.Plus:
			op = ast.Add
		case lexer.Minus:
			op = ast.Sub
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
}

// parseTerm ::= factor (('*' | '/') factor)*
func (p *Parser) parseTerm() (ast.Tree, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.cur.Kind {
		case lexer.Star:
			op = ast.Mul
		case lexer.Slash:
			op = ast.Div
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
}

// parseFactor ::= NUMBER | '(' expr ')' | '-' factor
func (p *Parser) parseFactor() (ast.Tree, error) {
	switch p.cur.Kind {
	case lexer.Number:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Number{Value: v}, nil

	case lexer.Minus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: ast.Sub, Left: &ast.Number{Value: 0}, Right: inner}, nil

	case lexer.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != lexer.RParen {
			return nil, fmt.Errorf("parser: expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, fmt.Errorf("parser: unexpected token kind %v", p.cur.Kind)
	}
}
