// Package flake implements source-preserving structural patching of flake
// manifests. Every edit is computed from the spans on a parsed expression
// tree and applied as a byte-range operation on the original text, so
// comments, attribute order and formatting outside the edited range survive
// untouched. The package never re-serializes the tree.
package flake

import "github.com/DeterminateSystems/flakedit/internal/nix"

// PositionToOffset converts a 1-based line/column position into a byte
// offset in contents. The scan counts one column per character and resets
// the column on newline, matching the positions the parser reports. A
// position naming the exact end of the text resolves to len(contents), so a
// span is allowed to end at EOF.
func PositionToOffset(contents string, pos nix.Position) (int, error) {
	line, column := 1, 1

	for idx, ch := range contents {
		if line == pos.Line && column == pos.Column {
			return idx, nil
		}
		if ch == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	if line == pos.Line && column == pos.Column {
		return len(contents), nil
	}

	return 0, &PositionNotFoundError{Line: pos.Line, Column: pos.Column}
}

// SpanToOffsets resolves both ends of a span. Both must resolve or the call
// fails; a dangling end would mean the tree and text disagree.
func SpanToOffsets(contents string, span nix.Span) (int, int, error) {
	start, err := PositionToOffset(contents, span.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := PositionToOffset(contents, span.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
