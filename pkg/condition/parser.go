package condition

import "fmt"

// Expr is a parsed condition expression. Eval resolves dotted paths against
// the supplied context and returns the expression's value.
type Expr interface {
	Eval(context map[string]any) (any, error)
}

// Parse compiles an expression string into an evaluable tree. The grammar is
// deliberately small: boolean connectives, comparisons, `in`, literals, and
// dotted-path lookups. There are no function calls, no indexing, and no way
// to reach anything outside the supplied context.
func Parse(input string) (Expr, error) {
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.current.kind != tokenEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.current.text, p.current.pos)
	}

	return expr, nil
}

type parser struct {
	lex     *lexer
	current token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}

	p.current = tok

	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current.kind == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &logicalExpr{op: opOr, left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current.kind == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &logicalExpr{op: opAnd, left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.current.kind == tokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}

		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &notExpr{inner: inner}, nil
	}

	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var op compareOp

	switch p.current.kind {
	case tokenEq:
		op = opEq
	case tokenNeq:
		op = opNeq
	case tokenLt:
		op = opLt
	case tokenLte:
		op = opLte
	case tokenGt:
		op = opGt
	case tokenGte:
		op = opGte
	case tokenIn:
		op = opIn
	default:
		return left, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return &compareExpr{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.current

	switch tok.kind {
	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.current.kind != tokenRParen {
			return nil, fmt.Errorf("missing ')' at position %d", p.current.pos)
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		return inner, nil
	case tokenMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.current.kind != tokenNumber {
			return nil, fmt.Errorf("expected number after '-' at position %d", tok.pos)
		}

		return p.numberLiteral(true)
	case tokenNumber:
		return p.numberLiteral(false)
	case tokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &literalExpr{value: tok.text}, nil
	case tokenTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &literalExpr{value: true}, nil
	case tokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &literalExpr{value: false}, nil
	case tokenNull:
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &literalExpr{value: nil}, nil
	case tokenPath:
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &pathExpr{path: tok.text}, nil
	case tokenEOF:
		return nil, fmt.Errorf("unexpected end of expression at position %d", tok.pos)
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
}

func (p *parser) numberLiteral(negative bool) (Expr, error) {
	tok := p.current

	value, err := parseNumber(tok.text)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q at position %d", tok.text, tok.pos)
	}

	if negative {
		value = -value
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	return &literalExpr{value: value}, nil
}
