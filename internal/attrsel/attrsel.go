// Package attrsel parses dotted attribute selectors like
// `inputs.nixpkgs.url` or `inputs."dotted.name".url` into plain path
// segments. Quoting a segment keeps its dots literal.
package attrsel

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dot", Pattern: `\.`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_'-]*`},
})

// Selector is a non-empty dotted path of segments.
type Selector struct {
	First *Segment   `parser:"@@"`
	Rest  []*Segment `parser:"( Dot @@ )*"`
}

// Segment is one path element: a bare identifier or a quoted name.
type Segment struct {
	Name string `parser:"@Ident | @String"`
}

// Parser wraps the participle parser.
type Parser struct {
	parser *participle.Parser[Selector]
}

// NewParser builds the selector grammar.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Selector](
		participle.Lexer(selectorLexer),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a selector string into its path segments.
func (p *Parser) Parse(selector string) ([]string, error) {
	parsed, err := p.parser.ParseString("", selector)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selector %q: %w", selector, err)
	}

	path := make([]string, 0, len(parsed.Rest)+1)
	path = append(path, parsed.First.Name)
	for _, segment := range parsed.Rest {
		path = append(path, segment.Name)
	}
	return path, nil
}
