package flake

import (
	"errors"
	"testing"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

func mustParse(t *testing.T, src string) nix.Expression {
	t.Helper()
	expr, err := nix.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return expr
}

func TestFindFirst(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		path    []string
		wantKey []string
		wantNil bool
	}{
		{
			name:    "dotted binding",
			src:     `{ inputs.nixpkgs.url = "A"; }`,
			path:    []string{"inputs", "nixpkgs", "url"},
			wantKey: []string{"inputs", "nixpkgs", "url"},
		},
		{
			name:    "nested attrsets",
			src:     `{ inputs = { nixpkgs = { url = "A"; }; }; }`,
			path:    []string{"inputs", "nixpkgs", "url"},
			wantKey: []string{"url"},
		},
		{
			name:    "mixed dotted and nested",
			src:     `{ inputs = { nixpkgs.url = "A"; }; }`,
			path:    []string{"inputs", "nixpkgs", "url"},
			wantKey: []string{"nixpkgs", "url"},
		},
		{
			name:    "target shorter than binding key",
			src:     `{ inputs.nixpkgs.url = "A"; }`,
			path:    []string{"inputs"},
			wantKey: []string{"inputs", "nixpkgs", "url"},
		},
		{
			name:    "other input is not found",
			src:     `{ inputs.nixpkgs.url = "A"; }`,
			path:    []string{"inputs", "home-manager", "url"},
			wantNil: true,
		},
		{
			name:    "missing attribute",
			src:     `{ description = "x"; }`,
			path:    []string{"inputs"},
			wantNil: true,
		},
		{
			name:    "mismatch beyond first segment does not match sibling keys",
			src:     `{ a.b = "one"; b.c = "two"; }`,
			path:    []string{"a", "c"},
			wantNil: true,
		},
		{
			name:    "first match wins in source order",
			src:     `{ inputs.a.url = "one"; inputs.a.url = "two"; }`,
			path:    []string{"inputs", "a", "url"},
			wantKey: []string{"inputs", "a", "url"},
		},
		{
			name:    "nil path returns first binding",
			src:     `{ first = "1"; second = "2"; }`,
			path:    nil,
			wantKey: []string{"first"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			expr := mustParse(t, test.src)

			kv, err := FindFirst(expr, test.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if test.wantNil {
				if kv != nil {
					t.Fatalf("expected no match, found %v", kv.KeyPath())
				}
				return
			}
			if kv == nil {
				t.Fatal("expected a match, found none")
			}
			got := kv.KeyPath()
			if len(got) != len(test.wantKey) {
				t.Fatalf("expected key %v, got %v", test.wantKey, got)
			}
			for i := range got {
				if got[i] != test.wantKey[i] {
					t.Fatalf("expected key %v, got %v", test.wantKey, got)
				}
			}
		})
	}
}

func TestFindFirstCommitsToFirstPrefix(t *testing.T) {
	t.Parallel()

	// Resolution descends into the first binding whose key is a prefix of
	// the target and does not reconsider later siblings, mirroring the
	// first-match-wins rule.
	src := `{
  a.b = {
    c.d = "one";
  };
  a.b.c.e = "two";
}
`
	expr := mustParse(t, src)

	kv, err := FindFirst(expr, []string{"a", "b", "c", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv != nil {
		t.Errorf("expected resolution to commit to the first prefix branch, found %v", kv.KeyPath())
	}

	kv, err = FindFirst(expr, []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv == nil {
		t.Fatal("expected a match through the first prefix branch")
	}
}

func TestFindFirstInherit(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, `{ inherit (builtins) fetchTarball; inputs.a.url = "x"; }`)

	_, err := FindFirst(expr, []string{"inputs", "a", "url"})
	var inherit *InheritError
	if !errors.As(err, &inherit) {
		t.Fatalf("expected InheritError, got %v", err)
	}
}

func TestFindFirstNonAttrset(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, `{ inputs = "not an attrset"; }`)

	_, err := FindFirst(expr, []string{"inputs", "a"})
	var unsupported *UnsupportedExpressionError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedExpressionError, got %v", err)
	}
	if unsupported.Kind != "string" {
		t.Errorf("unexpected kind %q", unsupported.Kind)
	}
}

func TestFindAll(t *testing.T) {
	t.Parallel()

	src := `{
  inputs.a.url = "A";
  inputs.b.url = "B";
  outputs = { self, ... }: { };
}
`
	expr := mustParse(t, src)

	found, err := FindAll(expr, []string{"inputs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(found))
	}
	if found[0].KeyPath()[1] != "a" || found[1].KeyPath()[1] != "b" {
		t.Errorf("bindings out of source order: %v, %v", found[0].KeyPath(), found[1].KeyPath())
	}
}

func TestCollectInputs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		names []string
	}{
		{
			name:  "attrset style",
			src:   `{ inputs = { a.url = "A"; b.url = "B"; }; }`,
			names: []string{"a", "b"},
		},
		{
			name:  "dotted style",
			src:   `{ inputs.a.url = "A"; inputs.b.url = "B"; }`,
			names: []string{"a", "b"},
		},
		{
			name:  "record style",
			src:   `{ inputs.a = { url = "A"; }; }`,
			names: []string{"a"},
		},
		{
			name:  "deep keys are skipped",
			src:   `{ inputs.a.url = "A"; inputs.b.inputs.c.follows = "a"; }`,
			names: []string{"a"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			expr := mustParse(t, test.src)

			bindings, err := FindAll(expr, []string{"inputs"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			collected, err := CollectInputs(bindings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(collected) != len(test.names) {
				t.Fatalf("expected %d inputs, got %d", len(test.names), len(collected))
			}
			for i, kv := range collected {
				name, ok := InputName(kv)
				if !ok {
					t.Fatalf("no name for input %v", kv.KeyPath())
				}
				if name != test.names[i] {
					t.Errorf("expected input %q, got %q", test.names[i], name)
				}
			}
		})
	}
}

func TestInputURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		url  string
	}{
		{
			name: "direct url binding",
			src:  `{ inputs.a.url = "https://example.com/a.tar.gz"; }`,
			url:  "https://example.com/a.tar.gz",
		},
		{
			name: "record with url attribute",
			src:  `{ inputs.a = { url = "https://example.com/a.tar.gz"; }; }`,
			url:  "https://example.com/a.tar.gz",
		},
		{
			name: "bare uri",
			src:  `{ inputs.a.url = github:NixOS/nixpkgs; }`,
			url:  "github:NixOS/nixpkgs",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			expr := mustParse(t, test.src)

			bindings, err := FindAll(expr, []string{"inputs"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			collected, err := CollectInputs(bindings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(collected) != 1 {
				t.Fatalf("expected 1 input, got %d", len(collected))
			}

			url, ok, err := InputURL(collected[0])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected a readable URL")
			}
			if url != test.url {
				t.Errorf("expected %q, got %q", test.url, url)
			}
		})
	}
}
