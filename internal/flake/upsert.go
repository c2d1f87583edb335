package flake

import (
	"fmt"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

// InsertionLocation says where a brand new input declaration lands relative
// to the inputs the manifest already declares.
type InsertionLocation int

const (
	// Top places the new input before the first existing input.
	Top InsertionLocation = iota
	// Bottom places the new input after the last existing input.
	Bottom
)

func (l InsertionLocation) String() string {
	switch l {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return fmt.Sprintf("InsertionLocation(%d)", int(l))
}

// ParseInsertionLocation turns a flag value into an InsertionLocation.
func ParseInsertionLocation(s string) (InsertionLocation, error) {
	switch s {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	}
	return Top, fmt.Errorf("invalid insertion location %q (expected \"top\" or \"bottom\")", s)
}

// UpsertInput updates or inserts the input named inputName in the manifest.
// expr must be the parse of contents. When the input already declares a URL
// its value is rewritten in place; otherwise a fresh declaration is inserted
// at the requested location, and the name is threaded into the outputs
// function's parameter list. The returned text differs from contents only
// in the edited byte ranges.
func UpsertInput(expr nix.Expression, contents, inputName, inputURL string, location InsertionLocation) (string, error) {
	existing, err := FindFirst(expr, []string{"inputs", inputName, "url"})
	if err != nil {
		return "", err
	}
	if existing == nil {
		return InsertInput(expr, contents, inputName, inputURL, location)
	}
	return replaceInputValue(existing.To, inputURL, contents)
}

// replaceInputValue rewrites the URL expression's text in place. Only
// literal shapes are editable: a plain or indented string made of a single
// raw part, or a bare URI. Quotes and surrounding bytes are untouched for
// strings; a URI is replaced wholesale with a quoted string.
func replaceInputValue(value nix.Expression, inputURL, contents string) (string, error) {
	switch v := value.(type) {
	case *nix.String:
		return replaceStringParts(v.Parts, inputURL, contents)
	case *nix.IndentedString:
		return replaceStringParts(v.Parts, inputURL, contents)
	case *nix.Uri:
		start, end, err := SpanToOffsets(contents, v.Span())
		if err != nil {
			return "", err
		}
		return contents[:start] + `"` + inputURL + `"` + contents[end:], nil
	}
	return "", &UnsupportedValueError{Kind: value.Kind(), Pos: value.Span().Start}
}

func replaceStringParts(parts []nix.Part, inputURL, contents string) (string, error) {
	if len(parts) != 1 {
		pos := nix.Position{Line: 1, Column: 1}
		if len(parts) > 0 {
			pos = parts[0].Span().Start
		}
		return "", &MultiPartValueError{Pos: pos}
	}
	raw, ok := parts[0].(*nix.PartRaw)
	if !ok {
		return "", &UnsupportedValueError{Kind: "string interpolation", Pos: parts[0].Span().Start}
	}
	start, end, err := SpanToOffsets(contents, raw.Span())
	if err != nil {
		return "", err
	}
	return contents[:start] + inputURL + contents[end:], nil
}
