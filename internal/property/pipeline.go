package property

import (
	"fmt"
	"strconv"
	"strings"
)

// Pipeline is a parsed end-to-end latency clause.
type Pipeline struct {
	// Chain holds task names in order, without repeats.
	Chain []string
	// BoundMS is the end-to-end bound in milliseconds.
	BoundMS int64
}

// First returns the entry stage of the chain.
func (p *Pipeline) First() string {
	return p.Chain[0]
}

// Last returns the final stage of the chain.
func (p *Pipeline) Last() string {
	return p.Chain[len(p.Chain)-1]
}

// ParsePipeline parses
//
//	["pipeline"] elem ("->" elem)* ("within" | "<=") N ["ms"]
//
// where elem is a possibly dotted identifier of which only the last segment
// names the task.
func ParsePipeline(text string) (*Pipeline, error) {
	toks, err := newLexer(text).all()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	if p.isKeyword(p.peek(), "pipeline") && p.peekAt(1).typ == tokIdent && !p.isKeyword(p.peekAt(1), "within") {
		p.pos++
	}

	var chain []string
	seen := make(map[string]bool)
	for {
		elem, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		name := lastSegment(elem.text)
		if !seen[name] {
			seen[name] = true
			chain = append(chain, name)
		}
		if p.peek().typ != tokArrow {
			break
		}
		p.pos++
	}

	switch tok := p.peek(); {
	case tok.typ == tokLessEq:
		p.pos++
	case p.isKeyword(tok, "within"):
		p.pos++
	default:
		return nil, fmt.Errorf("expected \"within\" or \"<=\" at offset %d, found %s", tok.pos, tok.typ)
	}

	num, err := p.expect(tokNumber)
	if err != nil {
		return nil, err
	}
	bound, err := strconv.ParseInt(num.text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bound %q: %w", num.text, err)
	}

	if p.isKeyword(p.peek(), "ms") {
		p.pos++
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}

	return &Pipeline{Chain: chain, BoundMS: bound}, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.peek()
	if tok.typ != typ {
		return token{}, fmt.Errorf("expected %s at offset %d, found %s", typ, tok.pos, tok.typ)
	}
	p.pos++
	return tok, nil
}

func (p *parser) isKeyword(tok token, word string) bool {
	return tok.typ == tokIdent && strings.EqualFold(tok.text, word)
}

func lastSegment(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
