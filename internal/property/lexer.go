package property

import (
	"fmt"
	"unicode"
)

type tokenType int

const (
	tokIdent tokenType = iota
	tokNumber
	tokArrow
	tokLessEq
	tokEOF
)

func (t tokenType) String() string {
	switch t {
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokArrow:
		return `"->"`
	case tokLessEq:
		return `"<="`
	default:
		return "end of text"
	}
}

type token struct {
	typ  tokenType
	text string
	pos  int
}

type lexer struct {
	input []rune
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: []rune(input)}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.peek()) {
		l.pos++
	}
}

// next returns the next token. Identifiers may be dotted ("Car.Planner");
// a number directly followed by letters is split so "150ms" lexes as
// number then identifier.
func (l *lexer) next() (token, error) {
	l.skipWhitespace()
	start := l.pos

	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: start}, nil
	}

	c := l.peek()
	switch {
	case c == '-' && l.peekAt(1) == '>':
		l.pos += 2
		return token{typ: tokArrow, text: "->", pos: start}, nil
	case c == '<' && l.peekAt(1) == '=':
		l.pos += 2
		return token{typ: tokLessEq, text: "<=", pos: start}, nil
	case unicode.IsDigit(c):
		for unicode.IsDigit(l.peek()) {
			l.pos++
		}
		return token{typ: tokNumber, text: string(l.input[start:l.pos]), pos: start}, nil
	case isIdentStart(c):
		for {
			for isIdentPart(l.peek()) {
				l.pos++
			}
			if l.peek() != '.' || !isIdentStart(l.peekAt(1)) {
				break
			}
			l.pos++
		}
		return token{typ: tokIdent, text: string(l.input[start:l.pos]), pos: start}, nil
	default:
		return token{}, fmt.Errorf("unexpected %q at offset %d", c, start)
	}
}

func (l *lexer) all() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r < unicode.MaxASCII && unicode.IsDigit(r))
}
