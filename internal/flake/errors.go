package flake

import (
	"errors"
	"fmt"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

// Structural refusals. The editor never fabricates an `outputs` function or
// guesses where a manifest's attributes belong, so these abort the call.
var (
	ErrMissingOutputs          = errors.New("flake was missing an `outputs` attribute")
	ErrMissingInputsAndOutputs = errors.New("flake was missing both the `inputs` and `outputs` attributes")
)

// InheritError reports an `inherit` binding found while resolving an
// attribute path. The form is not supported.
type InheritError struct {
	Pos nix.Position
}

func (e *InheritError) Error() string {
	return fmt.Sprintf("`inherit` is not supported (at %d:%d)", e.Pos.Line, e.Pos.Column)
}

// UnsupportedExpressionError reports a non-attrset searched as if it could
// contain attribute paths, or an attrset found where it cannot be handled.
type UnsupportedExpressionError struct {
	Kind string
	Pos  nix.Position
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported expression type %s (at %d:%d)", e.Kind, e.Pos.Line, e.Pos.Column)
}

// UnsupportedValueError reports an input value whose expression shape cannot
// be rewritten; input URLs are always strings, indented strings or bare
// URIs.
type UnsupportedValueError struct {
	Kind string
	Pos  nix.Position
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported input value type %s (at %d:%d)", e.Kind, e.Pos.Line, e.Pos.Column)
}

// MultiPartValueError reports an input value containing interpolation. Only
// single-literal values can be replaced in place.
type MultiPartValueError struct {
	Pos nix.Position
}

func (e *MultiPartValueError) Error() string {
	return fmt.Sprintf("input value is not a single literal (at %d:%d); values with interpolation cannot be rewritten", e.Pos.Line, e.Pos.Column)
}

// PositionNotFoundError reports a span position that does not exist in the
// text. This means the tree and the text went out of sync, which is an
// internal invariant violation rather than a user error.
type PositionNotFoundError struct {
	Line   int
	Column int
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("could not find %d:%d in the flake contents", e.Line, e.Column)
}

// EmptyParameterListError reports an `outputs` function that takes a
// destructured set with no names and no `...`: there is no safe way to
// extend its contract automatically.
type EmptyParameterListError struct {
	InputName string
}

func (e *EmptyParameterListError) Error() string {
	return fmt.Sprintf(
		"the `outputs` function takes no arguments, so %q cannot be added automatically; replace the parameter list with `{ ... }` and try again",
		e.InputName,
	)
}

// EmptyInputsError reports an `inputs` attrset with no usable input binding
// to anchor an insertion against.
type EmptyInputsError struct {
	Pos nix.Position
}

func (e *EmptyInputsError) Error() string {
	return fmt.Sprintf(
		"the `inputs` attrset (at %d:%d) declares no inputs to anchor against; add the first input by hand or delete the empty attrset",
		e.Pos.Line, e.Pos.Column,
	)
}
