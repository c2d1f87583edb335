package flake

import (
	"fmt"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

// InsertInput adds a brand new input declaration to the manifest and threads
// the input's name into the outputs function's parameter list. Both edits
// are byte-range splices against contents; when both the `inputs` and
// `outputs` bindings exist, the one occurring later in the file is edited
// first so the earlier one's source positions stay valid.
func InsertInput(expr nix.Expression, contents, inputName, inputURL string, location InsertionLocation) (string, error) {
	inputs, err := locateInputs(expr, location)
	if err != nil {
		return "", err
	}
	outputs, err := FindFirst(expr, []string{"outputs"})
	if err != nil {
		return "", err
	}

	switch {
	case inputs != nil && outputs != nil:
		if inputs.binding.KeySpan().Start.Line < outputs.KeySpan().Start.Line {
			contents, err = patchOutputsBinding(outputs, inputName, contents)
			if err != nil {
				return "", err
			}
			return insertDeclaration(inputs, contents, inputName, inputURL, location)
		}
		contents, err = insertDeclaration(inputs, contents, inputName, inputURL, location)
		if err != nil {
			return "", err
		}
		return patchOutputsBinding(outputs, inputName, contents)

	case inputs != nil:
		// Refuse to fabricate an `outputs` function out of nothing.
		return "", ErrMissingOutputs

	case outputs != nil:
		contents, err = patchOutputsBinding(outputs, inputName, contents)
		if err != nil {
			return "", err
		}
		// With no existing input to group with, a blank line between the
		// new declaration and the `outputs` binding reads better.
		decl := fmt.Sprintf("inputs.%s.url = %q;\n\n", inputName, inputURL)
		return insertAbove(contents, decl, outputs.KeySpan().Start, true)

	default:
		return "", ErrMissingInputsAndOutputs
	}
}

// locatedInputs is the resolved `inputs` construct: the binding that proves
// the manifest declares inputs at all, the concrete input binding new text
// is spliced next to, and whether the new declaration needs the `inputs.`
// qualifier (the flattened dotted style) or not (children of an
// `inputs = { ... };` attrset literal).
type locatedInputs struct {
	binding   *nix.KeyValue
	anchor    *nix.KeyValue
	qualified bool
}

// locateInputs finds the `inputs` construct and picks the anchor binding for
// the requested location: the first existing input for Top, the last for
// Bottom. Returns nil when the manifest declares no `inputs` at all; an
// `inputs` attrset with nothing inside it is an error because there is no
// line to anchor against.
func locateInputs(expr nix.Expression, location InsertionLocation) (*locatedInputs, error) {
	if location == Top {
		kv, err := FindFirst(expr, []string{"inputs"})
		if err != nil || kv == nil {
			return nil, err
		}
		if len(kv.KeyPath()) > 1 {
			return &locatedInputs{binding: kv, anchor: kv, qualified: true}, nil
		}
		first, err := FindFirst(kv.To, nil)
		if err != nil {
			return nil, err
		}
		if first == nil {
			return nil, &EmptyInputsError{Pos: kv.KeySpan().Start}
		}
		return &locatedInputs{binding: kv, anchor: first}, nil
	}

	all, err := FindAll(expr, []string{"inputs"})
	if err != nil || len(all) == 0 {
		return nil, err
	}
	kv := all[len(all)-1]
	collected, err := CollectInputs(all)
	if err != nil {
		return nil, err
	}
	if len(collected) == 0 {
		return nil, &EmptyInputsError{Pos: kv.KeySpan().Start}
	}
	return &locatedInputs{
		binding:   kv,
		anchor:    collected[len(collected)-1],
		qualified: len(kv.KeyPath()) > 1,
	}, nil
}

// insertDeclaration splices the new input's declaration next to the anchor
// binding, above it for Top and below it for Bottom, matching the anchor
// line's indentation either way.
func insertDeclaration(inputs *locatedInputs, contents, inputName, inputURL string, location InsertionLocation) (string, error) {
	var decl string
	if inputs.qualified {
		decl = fmt.Sprintf("inputs.%s.url = %q;\n", inputName, inputURL)
	} else {
		decl = fmt.Sprintf("%s.url = %q;\n", inputName, inputURL)
	}

	if location == Top {
		return insertAbove(contents, decl, inputs.anchor.KeySpan().Start, false)
	}
	return insertBelow(contents, decl, inputs.anchor)
}

// insertAbove splices decl onto the anchor's line, pushing the anchor down
// to the next line, then re-indents the anchor by copying the indentation
// that preceded it. Two steps because the first insertion lands mid-line,
// in front of the anchor and behind its indentation: afterwards decl sits
// indented on the anchor's old line and the anchor starts the next line in
// column one, missing its indentation.
//
// addedBlankLine must be set when decl ends in two newlines, so the second
// step can find the pushed-down anchor one line further on.
func insertAbove(contents, decl string, anchor nix.Position, addedBlankLine bool) (string, error) {
	start, err := PositionToOffset(contents, anchor)
	if err != nil {
		return "", err
	}

	indentation, err := indentationBefore(contents, anchor)
	if err != nil {
		return "", err
	}

	patched := contents[:start] + decl + contents[start:]

	anchorLine := anchor.Line + 1
	if addedBlankLine {
		anchorLine++
	}
	offset, err := PositionToOffset(patched, nix.Position{Line: anchorLine, Column: 1})
	if err != nil {
		return "", err
	}

	return patched[:offset] + indentation + patched[offset:], nil
}

// insertBelow splices decl, prefixed with the anchor's indentation, at the
// start of the line following the anchor binding's last line.
func insertBelow(contents, decl string, anchor *nix.KeyValue) (string, error) {
	indentation, err := indentationBefore(contents, anchor.KeySpan().Start)
	if err != nil {
		return "", err
	}

	offset, err := PositionToOffset(contents, nix.Position{Line: anchor.Src.End.Line + 1, Column: 1})
	if err != nil {
		return "", err
	}

	return contents[:offset] + indentation + decl + contents[offset:], nil
}

// indentationBefore returns the text between the start of pos's line and pos
// itself, verbatim, so tabs and spaces are preserved exactly.
func indentationBefore(contents string, pos nix.Position) (string, error) {
	start, end, err := SpanToOffsets(contents, nix.Span{
		Start: nix.Position{Line: pos.Line, Column: 1},
		End:   pos,
	})
	if err != nil {
		return "", err
	}
	return contents[start:end], nil
}
