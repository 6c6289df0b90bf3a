package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A token of scene text, tagged with its source line for error reports.
type token struct {
	text string
	line int
}

type parser struct {
	name   string
	tokens []token
	pos    int
}

// Parse reads an ordered primitive sequence from Radiance scene text.
// Comment lines (#) and inline generator commands (!) are skipped.
func Parse(r io.Reader, name string) ([]Primitive, error) {
	p := &parser{name: name}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "!") {
			continue
		}
		for _, field := range strings.Fields(trimmed) {
			p.tokens = append(p.tokens, token{field, lineNum})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", name, err)
	}

	var prims []Primitive
	for p.pos < len(p.tokens) {
		prim, err := p.primitive()
		if err != nil {
			return nil, err
		}
		prims = append(prims, prim)
	}
	return prims, nil
}

// ParseFile reads an ordered primitive sequence from a scene file.
func ParseFile(path string) ([]Primitive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

func (p *parser) errorf(msgFormat string, args ...interface{}) error {
	line := 0
	if p.pos > 0 && p.pos <= len(p.tokens) {
		line = p.tokens[p.pos-1].line
	}
	return fmt.Errorf("[%s: %d] error: %s", p.name, line, fmt.Sprintf(msgFormat, args...))
}

func (p *parser) next(what string) (string, error) {
	if p.pos >= len(p.tokens) {
		return "", p.errorf("unexpected end of input; expected %s", what)
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok.text, nil
}

func (p *parser) count(what string) (int, error) {
	tok, err := p.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, p.errorf("invalid %s %q", what, tok)
	}
	return n, nil
}

func (p *parser) primitive() (Primitive, error) {
	var prim Primitive
	var err error

	if prim.Modifier, err = p.next("modifier"); err != nil {
		return prim, err
	}
	if prim.Type, err = p.next("primitive type"); err != nil {
		return prim, err
	}
	if prim.Identifier, err = p.next("identifier"); err != nil {
		return prim, err
	}

	nstr, err := p.count("string argument count")
	if err != nil {
		return prim, err
	}
	for i := 0; i < nstr; i++ {
		arg, err := p.next("string argument")
		if err != nil {
			return prim, err
		}
		prim.StrArgs = append(prim.StrArgs, arg)
	}

	// The integer block is unused by every supported type; its count is
	// consumed and its entries discarded.
	nint, err := p.count("integer argument count")
	if err != nil {
		return prim, err
	}
	for i := 0; i < nint; i++ {
		if _, err = p.next("integer argument"); err != nil {
			return prim, err
		}
	}

	nreal, err := p.count("real argument count")
	if err != nil {
		return prim, err
	}
	for i := 0; i < nreal; i++ {
		tok, err := p.next("real argument")
		if err != nil {
			return prim, err
		}
		val, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return prim, p.errorf("invalid real argument %q for %s %q", tok, prim.Type, prim.Identifier)
		}
		prim.RealArgs = append(prim.RealArgs, val)
	}

	return prim, nil
}
