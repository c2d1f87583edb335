package flake

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

// paramLexer tokenizes a destructured parameter list's source text so the
// new input name can be spliced next to an exact identifier token. Scanning
// tokens instead of raw text keeps identifiers that contain other
// identifiers as substrings (`self` in `selftest`) from being mistaken for
// the splice point.
var paramLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_'-]*`},
	{Name: "Punct", Pattern: `[{}(),?@:=]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

// patchOutputsBinding threads inputName into the parameter list of the
// function bound to `outputs`. A simple head (`outputs = inputs: ...`)
// already passes every input through, so there is nothing to edit; any
// non-function value is a structural error.
func patchOutputsBinding(outputs *nix.KeyValue, inputName, contents string) (string, error) {
	fn, ok := outputs.To.(*nix.Function)
	if !ok {
		return "", &UnsupportedExpressionError{Kind: outputs.To.Kind(), Pos: outputs.To.Span().Start}
	}

	switch head := fn.Head.(type) {
	case *nix.SimpleHead:
		return contents, nil
	case *nix.DestructuredHead:
		return patchParameterList(head, inputName, contents)
	}
	return "", &UnsupportedExpressionError{Kind: "function head", Pos: fn.Span().Start}
}

// patchParameterList splices inputName into the destructured head's source
// text. The name lands after the last named argument when one exists, or
// before the ellipsis otherwise, so the ellipsis stays last. Re-running
// with a name already present is a no-op.
func patchParameterList(head *nix.DestructuredHead, inputName, contents string) (string, error) {
	for _, arg := range head.Arguments {
		if arg.Identifier == inputName {
			return contents, nil
		}
	}

	start, end, err := SpanToOffsets(contents, head.Src)
	if err != nil {
		return "", err
	}
	spanText := contents[start:end]

	tokens, err := lexParameterList(spanText)
	if err != nil {
		return "", err
	}
	symbols := paramLexer.Symbols()

	if len(head.Arguments) > 0 {
		last := head.Arguments[len(head.Arguments)-1].Identifier
		for _, tok := range tokens {
			if tok.Type == symbols["Ident"] && tok.Value == last {
				at := tok.Pos.Offset + len(tok.Value)
				spanText = spanText[:at] + ", " + inputName + spanText[at:]
				return contents[:start] + spanText + contents[end:], nil
			}
		}
		return "", fmt.Errorf("could not find %q in the outputs parameter list, but it existed when parsing it", last)
	}

	if head.Ellipsis {
		for _, tok := range tokens {
			if tok.Type == symbols["Ellipsis"] {
				at := tok.Pos.Offset
				spanText = spanText[:at] + inputName + ", " + spanText[at:]
				return contents[:start] + spanText + contents[end:], nil
			}
		}
		return "", fmt.Errorf("could not find the ellipsis (`...`) in the outputs parameter list, but it existed when parsing it")
	}

	return "", &EmptyParameterListError{InputName: inputName}
}

func lexParameterList(spanText string) ([]lexer.Token, error) {
	lex, err := paramLexer.LexString("", spanText)
	if err != nil {
		return nil, fmt.Errorf("tokenizing the outputs parameter list: %w", err)
	}

	var tokens []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenizing the outputs parameter list: %w", err)
		}
		if tok.EOF() {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
