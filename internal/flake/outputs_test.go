package flake

import (
	"errors"
	"testing"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

func outputsBinding(t *testing.T, contents string) *nix.KeyValue {
	t.Helper()
	expr := mustParse(t, contents)
	kv, err := FindFirst(expr, []string{"outputs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv == nil {
		t.Fatal("no outputs binding in test flake")
	}
	return kv
}

func TestPatchOutputs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		contents string
		input    string
		expected string
	}{
		{
			name:     "after last named argument",
			contents: "{ outputs = { self, nixpkgs, ... }: { }; }",
			input:    "home-manager",
			expected: "{ outputs = { self, nixpkgs, home-manager, ... }: { }; }",
		},
		{
			name:     "before ellipsis when no arguments are named",
			contents: "{ outputs = { ... }: { }; }",
			input:    "nixpkgs",
			expected: "{ outputs = { nixpkgs, ... }: { }; }",
		},
		{
			name:     "no ellipsis",
			contents: "{ outputs = { self, nixpkgs }: { }; }",
			input:    "home-manager",
			expected: "{ outputs = { self, nixpkgs, home-manager }: { }; }",
		},
		{
			name:     "head with binding",
			contents: "{ outputs = { self, ... } @ inputs: { }; }",
			input:    "nixpkgs",
			expected: "{ outputs = { self, nixpkgs, ... } @ inputs: { }; }",
		},
		{
			name:     "simple head needs no edit",
			contents: "{ outputs = inputs: { }; }",
			input:    "nixpkgs",
			expected: "{ outputs = inputs: { }; }",
		},
		{
			name:     "already present is a no-op",
			contents: "{ outputs = { self, nixpkgs, ... }: { }; }",
			input:    "nixpkgs",
			expected: "{ outputs = { self, nixpkgs, ... }: { }; }",
		},
		{
			name:     "argument that contains the last one as a substring",
			contents: "{ outputs = { self, selftest, ... }: { }; }",
			input:    "nixpkgs",
			expected: "{ outputs = { self, selftest, nixpkgs, ... }: { }; }",
		},
		{
			name:     "multiline parameter list",
			contents: "{\n  outputs = {\n    self,\n    nixpkgs,\n    ...\n  }: { };\n}\n",
			input:    "home-manager",
			expected: "{\n  outputs = {\n    self,\n    nixpkgs, home-manager,\n    ...\n  }: { };\n}\n",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			kv := outputsBinding(t, test.contents)

			patched, err := patchOutputsBinding(kv, test.input, test.contents)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if patched != test.expected {
				t.Errorf("expected:\n%s\ngot:\n%s", test.expected, patched)
			}
		})
	}
}

func TestPatchOutputsIdempotent(t *testing.T) {
	t.Parallel()

	contents := "{ outputs = { self, ... }: { }; }"
	kv := outputsBinding(t, contents)

	patched, err := patchOutputsBinding(kv, "nixpkgs", contents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Patching again against the re-parsed result must change nothing.
	again := outputsBinding(t, patched)
	patchedAgain, err := patchOutputsBinding(again, "nixpkgs", patched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patchedAgain != patched {
		t.Errorf("second patch changed the text:\n%s\nbecame:\n%s", patched, patchedAgain)
	}
}

func TestPatchOutputsEmptyParameterList(t *testing.T) {
	t.Parallel()

	contents := "{ outputs = { }: { }; }"
	kv := outputsBinding(t, contents)

	_, err := patchOutputsBinding(kv, "nixpkgs", contents)
	var empty *EmptyParameterListError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyParameterListError, got %v", err)
	}
	if empty.InputName != "nixpkgs" {
		t.Errorf("unexpected input name %q", empty.InputName)
	}
}

func TestPatchOutputsNonFunction(t *testing.T) {
	t.Parallel()

	contents := `{ outputs = { packages = { }; }; }`
	kv := outputsBinding(t, contents)

	_, err := patchOutputsBinding(kv, "nixpkgs", contents)
	var unsupported *UnsupportedExpressionError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedExpressionError, got %v", err)
	}
	if unsupported.Kind != "attrset" {
		t.Errorf("unexpected kind %q", unsupported.Kind)
	}
}
