package nix

import (
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		src       string
		shouldErr bool
	}{
		{
			name: "empty attrset",
			src:  `{}`,
		},
		{
			name: "simple binding",
			src:  `{ description = "a flake"; }`,
		},
		{
			name: "dotted binding key",
			src:  `{ inputs.nixpkgs.url = "https://example.com"; }`,
		},
		{
			name: "quoted binding key",
			src:  `{ inputs."dotted.name".url = "https://example.com"; }`,
		},
		{
			name: "nested attrsets",
			src:  `{ inputs = { nixpkgs = { url = "https://example.com"; }; }; }`,
		},
		{
			name: "bare uri value",
			src:  `{ inputs.nixpkgs.url = github:NixOS/nixpkgs; }`,
		},
		{
			name: "indented string value",
			src:  `{ inputs.nixpkgs.url = ''https://example.com''; }`,
		},
		{
			name: "simple function head",
			src:  `{ outputs = inputs: { }; }`,
		},
		{
			name: "destructured function head",
			src:  `{ outputs = { self, nixpkgs, ... }: { }; }`,
		},
		{
			name: "destructured head with binding",
			src:  `{ outputs = { self, ... } @ inputs: { }; }`,
		},
		{
			name: "binding before destructured head",
			src:  `{ outputs = inputs @ { self, ... }: { }; }`,
		},
		{
			name: "argument with default",
			src:  `{ outputs = { self, pkgs ? { }, ... }: { }; }`,
		},
		{
			name: "inherit binding",
			src:  `{ inherit (builtins) fetchTarball; }`,
		},
		{
			name: "let body",
			src:  `{ outputs = let a = 1; b = 2; in a; }`,
		},
		{
			name: "with body",
			src:  `{ packages = with pkgs; [ hello cowsay ]; }`,
		},
		{
			name: "function application body",
			src:  `{ outputs = inputs: inputs.utils.lib.eachDefaultSystem (system: { }); }`,
		},
		{
			name: "comments",
			src:  "{\n  # a line comment\n  inputs.a.url = \"x\"; /* block */\n}",
		},
		{
			name: "interpolated string value",
			src:  `{ inputs.a.url = "https://${domain}/a"; }`,
		},
		{
			name:      "unterminated attrset",
			src:       `{ a = 1;`,
			shouldErr: true,
		},
		{
			name:      "unterminated string",
			src:       `{ a = "oops; }`,
			shouldErr: true,
		},
		{
			name:      "missing semicolon",
			src:       `{ a = { } }`,
			shouldErr: true,
		},
		{
			name:      "dynamic attribute key",
			src:       `{ "${name}" = 1; }`,
			shouldErr: true,
		},
		{
			name:      "binding without key",
			src:       `{ = 1; }`,
			shouldErr: true,
		},
		{
			name:      "unbalanced delimiters",
			src:       `( oops`,
			shouldErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(test.src)
			if test.shouldErr && err == nil {
				t.Errorf("expected error for %q, got none", test.src)
			}
			if !test.shouldErr && err != nil {
				t.Errorf("unexpected error for %q: %v", test.src, err)
			}
		})
	}
}

func TestParseBindings(t *testing.T) {
	t.Parallel()

	src := `{
  description = "a flake";
  inputs.nixpkgs.url = "https://example.com/nixpkgs.tar.gz";
  outputs = { self, nixpkgs, ... } @ inputs: { };
}
`
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	m, ok := expr.(*Map)
	if !ok {
		t.Fatalf("expected *Map, got %T", expr)
	}
	if len(m.Bindings) != 3 {
		t.Fatalf("expected 3 bindings, got %d", len(m.Bindings))
	}

	url, ok := m.Bindings[1].(*KeyValue)
	if !ok {
		t.Fatalf("expected *KeyValue, got %T", m.Bindings[1])
	}
	path := url.KeyPath()
	if len(path) != 3 || path[0] != "inputs" || path[1] != "nixpkgs" || path[2] != "url" {
		t.Errorf("unexpected key path %v", path)
	}

	value, ok := url.To.(*String)
	if !ok {
		t.Fatalf("expected *String value, got %T", url.To)
	}
	if len(value.Parts) != 1 {
		t.Fatalf("expected 1 string part, got %d", len(value.Parts))
	}
	raw, ok := value.Parts[0].(*PartRaw)
	if !ok {
		t.Fatalf("expected *PartRaw, got %T", value.Parts[0])
	}
	if raw.Content != "https://example.com/nixpkgs.tar.gz" {
		t.Errorf("unexpected part content %q", raw.Content)
	}

	outputs, ok := m.Bindings[2].(*KeyValue)
	if !ok {
		t.Fatalf("expected *KeyValue, got %T", m.Bindings[2])
	}
	fn, ok := outputs.To.(*Function)
	if !ok {
		t.Fatalf("expected *Function value, got %T", outputs.To)
	}
	head, ok := fn.Head.(*DestructuredHead)
	if !ok {
		t.Fatalf("expected *DestructuredHead, got %T", fn.Head)
	}
	if len(head.Arguments) != 2 || head.Arguments[0].Identifier != "self" || head.Arguments[1].Identifier != "nixpkgs" {
		t.Errorf("unexpected arguments %v", head.Arguments)
	}
	if !head.Ellipsis {
		t.Error("expected ellipsis to be recorded")
	}
	if head.Binding != "inputs" {
		t.Errorf("unexpected head binding %q", head.Binding)
	}
}

func TestParseSpans(t *testing.T) {
	t.Parallel()

	src := `{ inputs.a.url = "OLD"; }`
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	kv := expr.(*Map).Bindings[0].(*KeyValue)
	if got := kv.KeySpan().Start; got.Line != 1 || got.Column != 3 {
		t.Errorf("key span starts at %d:%d, expected 1:3", got.Line, got.Column)
	}
	if got := kv.Src.End; got.Line != 1 || got.Column != 24 {
		t.Errorf("binding ends at %d:%d, expected 1:24", got.Line, got.Column)
	}

	part := kv.To.(*String).Parts[0].(*PartRaw)
	if got := part.Span().Start; got.Line != 1 || got.Column != 19 {
		t.Errorf("part starts at %d:%d, expected 1:19", got.Line, got.Column)
	}
	if got := part.Span().End; got.Line != 1 || got.Column != 22 {
		t.Errorf("part ends at %d:%d, expected 1:22", got.Line, got.Column)
	}
}

func TestParseUriValue(t *testing.T) {
	t.Parallel()

	expr, err := Parse(`{ inputs.nixpkgs.url = github:NixOS/nixpkgs; }`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	kv := expr.(*Map).Bindings[0].(*KeyValue)
	uri, ok := kv.To.(*Uri)
	if !ok {
		t.Fatalf("expected *Uri value, got %T", kv.To)
	}
	if uri.Value != "github:NixOS/nixpkgs" {
		t.Errorf("unexpected uri value %q", uri.Value)
	}
	if got := uri.Span().Start.Column; got != 24 {
		t.Errorf("uri starts at column %d, expected 24", got)
	}
}

func TestParseInterpolatedString(t *testing.T) {
	t.Parallel()

	expr, err := Parse(`{ inputs.a.url = "https://${domain}/a.tar.gz"; }`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	kv := expr.(*Map).Bindings[0].(*KeyValue)
	value := kv.To.(*String)
	if len(value.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(value.Parts))
	}
	if _, ok := value.Parts[1].(*PartInterpolation); !ok {
		t.Errorf("expected middle part to be an interpolation, got %T", value.Parts[1])
	}
}
