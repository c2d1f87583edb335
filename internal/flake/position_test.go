package flake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

func TestPositionToOffset(t *testing.T) {
	t.Parallel()

	contents := "ab\ncd\n"

	tests := []struct {
		name   string
		pos    nix.Position
		offset int
	}{
		{name: "start of text", pos: nix.Position{Line: 1, Column: 1}, offset: 0},
		{name: "middle of first line", pos: nix.Position{Line: 1, Column: 2}, offset: 1},
		{name: "newline column", pos: nix.Position{Line: 1, Column: 3}, offset: 2},
		{name: "start of second line", pos: nix.Position{Line: 2, Column: 1}, offset: 3},
		{name: "end of text", pos: nix.Position{Line: 3, Column: 1}, offset: 6},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			offset, err := PositionToOffset(contents, test.pos)
			require.NoError(t, err)
			assert.Equal(t, test.offset, offset)
		})
	}
}

func TestPositionToOffsetNotFound(t *testing.T) {
	t.Parallel()

	_, err := PositionToOffset("ab\n", nix.Position{Line: 5, Column: 1})
	var notFound *PositionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 5, notFound.Line)
	assert.Equal(t, 1, notFound.Column)
}

func TestPositionToOffsetMultibyte(t *testing.T) {
	t.Parallel()

	// Columns count characters; offsets count bytes.
	offset, err := PositionToOffset("héllo\n", nix.Position{Line: 1, Column: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, offset)
}

func TestSpanToOffsets(t *testing.T) {
	t.Parallel()

	contents := "inputs = {\n};\n"
	start, end, err := SpanToOffsets(contents, nix.Span{
		Start: nix.Position{Line: 1, Column: 1},
		End:   nix.Position{Line: 2, Column: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.Equal(t, 13, end)
	assert.Equal(t, "inputs = {\n};", contents[start:end])
}
