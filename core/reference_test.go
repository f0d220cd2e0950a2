package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"book only", "10", "10"},
		{"book and hymn", "10.129", "10.129"},
		{"full verse", "10.129.1", "10.129.1"},
		{"whitespace trimmed", "  3.62.10 ", "3.62.10"},
		{"single digit book", "7.103", "7.103"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseReference(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.String())
		})
	}
}

func TestParseReference_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"non numeric", "ten.129"},
		{"too many components", "10.129.1.4"},
		{"trailing dot", "10.129."},
		{"negative", "-1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReference(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidReference)
		})
	}
}

func TestFindReference(t *testing.T) {
	t.Run("locator embedded in question", func(t *testing.T) {
		ref, ok := FindReference("Tell me about 10.129.1 please")
		require.True(t, ok)
		assert.Equal(t, "10.129.1", ref.String())
	})

	t.Run("hymn level locator", func(t *testing.T) {
		ref, ok := FindReference("what does hymn 1.32 say")
		require.True(t, ok)
		assert.Equal(t, "1.32", ref.String())
	})

	t.Run("bare number does not match", func(t *testing.T) {
		_, ok := FindReference("give me 10 hymns about fire")
		assert.False(t, ok)
	})

	t.Run("no number at all", func(t *testing.T) {
		_, ok := FindReference("who is the god of fire")
		assert.False(t, ok)
	})
}

func TestReferenceMatches(t *testing.T) {
	ref, err := ParseReference("10.129")
	require.NoError(t, err)

	assert.True(t, ref.Matches("10.129"))
	assert.True(t, ref.Matches("10.129.1"))
	assert.True(t, ref.Matches("10.129.7"))
	assert.False(t, ref.Matches("10.13.1"))
	assert.False(t, ref.Matches("10.12"))
	assert.False(t, ref.Matches("1.129.1"))
}

func TestReferenceMatches_FullVerse(t *testing.T) {
	ref, err := ParseReference("10.129.1")
	require.NoError(t, err)

	assert.True(t, ref.Matches("10.129.1"))
	assert.False(t, ref.Matches("10.129.10"))
	assert.False(t, ref.Matches("10.129"))
}
