package condition

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenPath // dotted identifier: event.data.amount
	tokenTrue
	tokenFalse
	tokenNull
	tokenAnd
	tokenOr
	tokenNot
	tokenIn
	tokenEq  // ==
	tokenNeq // !=
	tokenLt  // <
	tokenLte // <=
	tokenGt  // >
	tokenGte // >=
	tokenMinus
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]tokenKind{
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"in":    tokenIn,
	"true":  tokenTrue,
	"false": tokenFalse,
	"null":  tokenNull,
	"none":  tokenNull,
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}

	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokenLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokenRParen, text: ")", pos: start}, nil
	case c == '-':
		l.pos++
		return token{kind: tokenMinus, text: "-", pos: start}, nil
	case c == '=':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokenEq, text: "==", pos: start}, nil
		}

		return token{}, fmt.Errorf("unexpected '=' at position %d (did you mean '==')", start)
	case c == '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokenNeq, text: "!=", pos: start}, nil
		}

		l.pos++
		return token{kind: tokenNot, text: "!", pos: start}, nil
	case c == '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokenLte, text: "<=", pos: start}, nil
		}

		l.pos++
		return token{kind: tokenLt, text: "<", pos: start}, nil
	case c == '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokenGte, text: ">=", pos: start}, nil
		}

		l.pos++
		return token{kind: tokenGt, text: ">", pos: start}, nil
	case c == '&':
		if l.peekAt(1) == '&' {
			l.pos += 2
			return token{kind: tokenAnd, text: "&&", pos: start}, nil
		}

		return token{}, fmt.Errorf("unexpected '&' at position %d (did you mean '&&')", start)
	case c == '|':
		if l.peekAt(1) == '|' {
			l.pos += 2
			return token{kind: tokenOr, text: "||", pos: start}, nil
		}

		return token{}, fmt.Errorf("unexpected '|' at position %d (did you mean '||')", start)
	case c == '\'' || c == '"':
		return l.lexString(c)
	case c >= '0' && c <= '9':
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexPath()
	default:
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
	}
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}

	return l.input[l.pos+offset]
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder

	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2

			continue
		}

		if c == quote {
			l.pos++
			return token{kind: tokenString, text: sb.String(), pos: start}, nil
		}

		sb.WriteByte(c)
		l.pos++
	}

	return token{}, fmt.Errorf("unterminated string starting at position %d", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	seenDot := false

	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '.' {
			if seenDot || l.pos+1 >= len(l.input) || !isDigit(l.input[l.pos+1]) {
				break
			}

			seenDot = true
			l.pos++

			continue
		}

		if !isDigit(c) {
			break
		}

		l.pos++
	}

	return token{kind: tokenNumber, text: l.input[start:l.pos], pos: start}, nil
}

func (l *lexer) lexPath() (token, error) {
	start := l.pos

	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isIdentPart(c) {
			l.pos++
			continue
		}

		// A dot continues the path only when followed by another identifier.
		if c == '.' && l.pos+1 < len(l.input) && isIdentStart(l.input[l.pos+1]) {
			l.pos += 2
			continue
		}

		break
	}

	text := l.input[start:l.pos]
	if kind, ok := keywords[strings.ToLower(text)]; ok {
		return token{kind: kind, text: text, pos: start}, nil
	}

	return token{kind: tokenPath, text: text, pos: start}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
