package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repobee/sanitizer/internal/syntax"
)

func classify(text string) []syntax.Line {
	return syntax.ClassifyAll(strings.Split(text, "\n"))
}

func kinds(errs []SyntaxError) []ErrorKind {
	out := make([]ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestParse_ValidBlock(t *testing.T) {
	outcome, errs := Parse(classify(strings.Join([]string{
		"before",
		"REPOBEE-SANITIZER-START",
		"secret",
		"REPOBEE-SANITIZER-END",
		"after",
	}, "\n")))
	require.Empty(t, errs)
	require.NotNil(t, outcome.Tree)
	require.Len(t, outcome.Tree.Segments, 3)

	blk := outcome.Tree.Segments[1].Block
	require.NotNil(t, blk)
	assert.Equal(t, "", blk.Prefix)
	require.Len(t, blk.Removed, 1)
	assert.Equal(t, "secret", blk.Removed[0].Raw)
	assert.Empty(t, blk.Replacement)
}

func TestParse_ReplaceWith(t *testing.T) {
	outcome, errs := Parse(classify(strings.Join([]string{
		"// REPOBEE-SANITIZER-START",
		"// solution();",
		"// REPOBEE-SANITIZER-REPLACE-WITH",
		"// fail();",
		"// REPOBEE-SANITIZER-END",
	}, "\n")))
	require.Empty(t, errs)

	blk := outcome.Tree.Segments[0].Block
	require.NotNil(t, blk)
	assert.Equal(t, "// ", blk.Prefix)
	require.Len(t, blk.Replacement, 1)
	assert.Equal(t, "// fail();", blk.Replacement[0].Raw)
}

func TestParse_PrefixBindsPerBlock(t *testing.T) {
	// "#" is a fine prefix for its own block, but not inside a "//" block.
	_, errs := Parse(classify(strings.Join([]string{
		"// REPOBEE-SANITIZER-START",
		"# not the bound prefix",
		"// REPOBEE-SANITIZER-END",
		"# REPOBEE-SANITIZER-START",
		"# body",
		"# REPOBEE-SANITIZER-END",
	}, "\n")))
	require.Len(t, errs, 1)
	assert.Equal(t, PrefixMismatch, errs[0].Kind)
	assert.Equal(t, 2, errs[0].Line)
}

func TestParse_MarkerLinesMustCarryPrefix(t *testing.T) {
	_, errs := Parse(classify(strings.Join([]string{
		"// REPOBEE-SANITIZER-START",
		"// body",
		"REPOBEE-SANITIZER-END",
	}, "\n")))
	require.Len(t, errs, 1)
	assert.Equal(t, PrefixMismatch, errs[0].Kind)
	assert.Equal(t, 3, errs[0].Line)
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ErrorKind
	}{
		{
			name: "orphan end",
			text: "content\nREPOBEE-SANITIZER-END",
			want: []ErrorKind{OrphanMarker},
		},
		{
			name: "orphan replace-with",
			text: "REPOBEE-SANITIZER-REPLACE-WITH",
			want: []ErrorKind{OrphanMarker},
		},
		{
			name: "nested start",
			text: "REPOBEE-SANITIZER-START\nREPOBEE-SANITIZER-START\nREPOBEE-SANITIZER-END",
			want: []ErrorKind{NestedBlock, OrphanMarker},
		},
		{
			name: "duplicate replace-with",
			text: strings.Join([]string{
				"REPOBEE-SANITIZER-START",
				"REPOBEE-SANITIZER-REPLACE-WITH",
				"REPOBEE-SANITIZER-REPLACE-WITH",
				"REPOBEE-SANITIZER-END",
			}, "\n"),
			want: []ErrorKind{MalformedBlock, OrphanMarker},
		},
		{
			name: "start inside replacement",
			text: strings.Join([]string{
				"REPOBEE-SANITIZER-START",
				"REPOBEE-SANITIZER-REPLACE-WITH",
				"REPOBEE-SANITIZER-START",
				"REPOBEE-SANITIZER-END",
			}, "\n"),
			want: []ErrorKind{MalformedBlock, OrphanMarker},
		},
		{
			name: "unterminated block",
			text: "REPOBEE-SANITIZER-START\nbody",
			want: []ErrorKind{UnterminatedBlock},
		},
		{
			name: "misspelled marker",
			text: "// REPOBEE-SANITIZER-STOP",
			want: []ErrorKind{UnrecognizedMarker},
		},
		{
			name: "shred on a later line",
			text: "content\nREPOBEE-SANITIZER-SHRED",
			want: []ErrorKind{MisplacedShred},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse(classify(tt.text))
			assert.Equal(t, tt.want, kinds(errs))
		})
	}
}

func TestParse_AccumulatesEveryDefect(t *testing.T) {
	_, errs := Parse(classify(strings.Join([]string{
		"REPOBEE-SANITIZER-END",    // orphan
		"REPOBEE-SANITIZER-TYPO",   // unrecognized
		"REPOBEE-SANITIZER-START",  // opens
		"body",
		// never closed
	}, "\n")))
	require.Len(t, errs, 3)
	assert.Equal(t,
		[]ErrorKind{OrphanMarker, UnrecognizedMarker, UnterminatedBlock},
		kinds(errs))
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, 2, errs[1].Line)
	assert.Equal(t, 3, errs[2].Line, "unterminated block cites its START line")
}

func TestParse_ShredOutcome(t *testing.T) {
	t.Run("lone shred", func(t *testing.T) {
		outcome, errs := Parse(classify("REPOBEE-SANITIZER-SHRED"))
		require.Empty(t, errs)
		assert.True(t, outcome.Shred)
		assert.Nil(t, outcome.Tree)
	})

	t.Run("shred plus ordinary content", func(t *testing.T) {
		outcome, errs := Parse(classify("REPOBEE-SANITIZER-SHRED\nany old content\n"))
		require.Empty(t, errs)
		assert.True(t, outcome.Shred)
	})

	t.Run("shred excludes every other marker", func(t *testing.T) {
		_, errs := Parse(classify(strings.Join([]string{
			"REPOBEE-SANITIZER-SHRED",
			"REPOBEE-SANITIZER-START",
			"REPOBEE-SANITIZER-END",
		}, "\n")))
		require.Len(t, errs, 2)
		assert.Equal(t, []ErrorKind{MisplacedShred, MisplacedShred}, kinds(errs))
	})
}

func TestParse_EmptyInput(t *testing.T) {
	outcome, errs := Parse(classify(""))
	require.Empty(t, errs)
	require.NotNil(t, outcome.Tree)
}
