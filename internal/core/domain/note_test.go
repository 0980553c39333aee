package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeContentHash_Stable verifies identical inputs always hash identically.
func TestComputeContentHash_Stable(t *testing.T) {
	h1 := ComputeContentHash("Groceries", "milk\neggs\nbread")
	h2 := ComputeContentHash("Groceries", "milk\neggs\nbread")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, ContentHashLength)
}

// TestComputeContentHash_DiffersOnContent verifies changed bodies change the hash.
func TestComputeContentHash_DiffersOnContent(t *testing.T) {
	h1 := ComputeContentHash("Groceries", "milk")
	h2 := ComputeContentHash("Groceries", "milk and eggs")
	h3 := ComputeContentHash("Shopping", "milk")

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

// TestComputeContentHash_NormalisesWhitespace verifies formatting-only
// differences do not change the hash.
func TestComputeContentHash_NormalisesWhitespace(t *testing.T) {
	base := ComputeContentHash("Title", "line one\nline two")

	assert.Equal(t, base, ComputeContentHash("Title", "line one\r\nline two"))
	assert.Equal(t, base, ComputeContentHash("Title", "line one\rline two"))
	assert.Equal(t, base, ComputeContentHash("  Title  ", "\n line one\nline two \n"))
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"outer whitespace", "  a b  \n", "a b"},
		{"empty", "", ""},
		{"whitespace only", " \r\n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContent(tt.input))
		})
	}
}
