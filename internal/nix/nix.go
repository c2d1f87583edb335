// Package nix defines the expression tree the flake editor works against:
// typed nodes carrying line/column spans over the original source text. The
// editing code never consumes the parser directly, only these types, so the
// tree could equally come from another front end.
package nix

// Position is a 1-based line/column location in the source text.
type Position struct {
	Line   int
	Column int
}

// Span marks the source range a node was parsed from. End is exclusive: it
// names the position of the first character after the node.
type Span struct {
	Start Position
	End   Position
}

// Expression is one node of the parsed manifest tree.
type Expression interface {
	Span() Span
	// Kind names the expression shape for error messages.
	Kind() string
}

// Map is an attribute set literal: an ordered list of bindings. Order is
// source order and is significant to the resolver (first match wins).
type Map struct {
	Bindings []Binding
	Src      Span
}

func (m *Map) Span() Span   { return m.Src }
func (m *Map) Kind() string { return "attrset" }

// String is a double-quoted string literal, split into parts. The parts
// exclude the quote delimiters; a literal with no interpolation has exactly
// one raw part.
type String struct {
	Parts []Part
	Src   Span
}

func (s *String) Span() Span   { return s.Src }
func (s *String) Kind() string { return "string" }

// IndentedString is a ''...'' string literal. Same part structure as String,
// different delimiters.
type IndentedString struct {
	Parts []Part
	Src   Span
}

func (s *IndentedString) Span() Span   { return s.Src }
func (s *IndentedString) Kind() string { return "indented string" }

// Uri is a bare (unquoted) URI literal. Unlike String, its span covers the
// whole token, delimiters and all, because it has none.
type Uri struct {
	Value string
	Src   Span
}

func (u *Uri) Span() Span   { return u.Src }
func (u *Uri) Kind() string { return "uri" }

// Function is a lambda. Head is either a single bare parameter or a
// destructured attribute-set pattern.
type Function struct {
	Head FunctionHead
	Body Expression
	Src  Span
}

func (f *Function) Span() Span   { return f.Src }
func (f *Function) Kind() string { return "function" }

// Other is the catch-all for every construct the editor has no need to
// understand: lists, numbers, booleans, let expressions, applications and so
// on. It still carries an accurate span so errors can point at it.
type Other struct {
	Name string
	Src  Span
}

func (o *Other) Span() Span { return o.Src }

func (o *Other) Kind() string {
	if o.Name != "" {
		return o.Name
	}
	return "expression"
}

// FunctionHead is the parameter clause of a Function.
type FunctionHead interface {
	functionHead()
}

// SimpleHead is a single bare parameter name, as in `outputs = inputs: ...`.
type SimpleHead struct {
	Identifier string
	Src        Span
}

func (*SimpleHead) functionHead() {}

// DestructuredHead is an attribute-set pattern, as in
// `outputs = { self, nixpkgs, ... } @ inputs: ...`. Ellipsis records the
// trailing `...` accepting unlisted names; Binding is the optional `@` name.
type DestructuredHead struct {
	Arguments []Argument
	Ellipsis  bool
	Binding   string
	Src       Span
}

func (*DestructuredHead) functionHead() {}

// Argument is one named argument of a destructured head. HasDefault records
// whether a `? default` clause followed the name.
type Argument struct {
	Identifier string
	HasDefault bool
	Src        Span
}

// Binding is one declaration inside a Map.
type Binding interface {
	binding()
}

// KeyValue is a `key = value;` binding. From holds the key parts: one part
// per dotted segment, so `inputs.nixpkgs.url = ...;` carries three parts.
type KeyValue struct {
	From []Part
	To   Expression
	Src  Span
}

func (*KeyValue) binding() {}

// KeyPath returns the binding's key as plain string segments, skipping any
// interpolated (non-raw) parts.
func (kv *KeyValue) KeyPath() []string {
	path := make([]string, 0, len(kv.From))
	for _, part := range kv.From {
		if raw, ok := part.(*PartRaw); ok {
			path = append(path, raw.Content)
		}
	}
	return path
}

// KeySpan returns the span of the binding's first key part. This is the
// anchor position used when new text has to be spliced next to the binding.
func (kv *KeyValue) KeySpan() Span {
	if len(kv.From) == 0 {
		return kv.Src
	}
	return kv.From[0].Span()
}

// Inherit is an `inherit ...;` binding. The editor does not support it; any
// occurrence aborts resolution.
type Inherit struct {
	Src Span
}

func (*Inherit) binding() {}

// Part is one segment of a string literal or of a binding key.
type Part interface {
	Span() Span
}

// PartRaw is literal text with its exact source span.
type PartRaw struct {
	Content string
	Src     Span
}

func (p *PartRaw) Span() Span { return p.Src }

// PartInterpolation is a `${...}` segment. Its contents are opaque to the
// editor; values containing one cannot be rewritten.
type PartInterpolation struct {
	Src Span
}

func (p *PartInterpolation) Span() Span { return p.Src }
