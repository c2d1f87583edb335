package scaffold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeterminateSystems/flakedit/internal/nix"
	"github.com/DeterminateSystems/flakedit/internal/scaffold"
)

func TestFallback(t *testing.T) {
	t.Parallel()

	contents, err := scaffold.Fallback("")
	require.NoError(t, err)
	assert.Equal(t, "{\n  description = \"My new flake.\";\n\n  outputs = { ... } @ inputs: { };\n}\n", contents)
}

func TestFallbackDescription(t *testing.T) {
	t.Parallel()

	contents, err := scaffold.Fallback(`a "quoted" description`)
	require.NoError(t, err)
	assert.Contains(t, contents, `description = "a \"quoted\" description";`)
}

func TestFallbackParses(t *testing.T) {
	t.Parallel()

	contents, err := scaffold.Fallback("")
	require.NoError(t, err)

	expr, err := nix.Parse(contents)
	require.NoError(t, err)

	m, ok := expr.(*nix.Map)
	require.True(t, ok)
	assert.Len(t, m.Bindings, 2)
}
