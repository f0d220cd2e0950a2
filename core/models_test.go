package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("agni fire sacrifice")
		id2 := IDFromContent("agni fire sacrifice")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := IDFromContent("agni")
		id2 := IDFromContent("indra")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content", func(t *testing.T) {
		id := IDFromContent("")
		assert.NotZero(t, id)
	})
}

func TestImportanceTier(t *testing.T) {
	tests := []struct {
		tier ImportanceTier
		name string
	}{
		{TierUnset, "unset"},
		{TierLow, "low"},
		{TierMedium, "medium"},
		{TierHigh, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tier.String())
			if tt.tier != TierUnset {
				assert.Equal(t, tt.tier, TierFromString(tt.name))
			}
		})
	}

	t.Run("unknown name maps to unset", func(t *testing.T) {
		assert.Equal(t, TierUnset, TierFromString("critical"))
	})
}

func TestRetrievedItemEvaluated(t *testing.T) {
	item := &RetrievedItem{EntryID: "rv-1"}
	assert.False(t, item.Evaluated())

	item.Tier = TierMedium
	assert.True(t, item.Evaluated())

	filtered := &RetrievedItem{EntryID: "rv-2", Filtered: true}
	assert.True(t, filtered.Evaluated())
}

func TestValidateEntry(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		err := ValidateEntry(&CorpusEntry{
			ID:          "rv-10-129-1",
			Text:        "nāsad āsīn no sad āsīt tadānīṃ",
			SourceLabel: "rigveda",
			Reference:   "10.129.1",
		})
		assert.NoError(t, err)
	})

	t.Run("empty text allowed", func(t *testing.T) {
		err := ValidateEntry(&CorpusEntry{ID: "rv-x", Reference: "1.1.1"})
		assert.NoError(t, err)
	})

	t.Run("nil entry", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEntry(nil), ErrInvalidEntry)
	})

	t.Run("empty id", func(t *testing.T) {
		err := ValidateEntry(&CorpusEntry{Reference: "1.1.1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyEntryID)
	})

	t.Run("empty reference", func(t *testing.T) {
		err := ValidateEntry(&CorpusEntry{ID: "rv-x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyReference)
	})

	t.Run("unparseable reference", func(t *testing.T) {
		err := ValidateEntry(&CorpusEntry{ID: "rv-x", Reference: "ten.one"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.5, 0.5, 0.7071}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-5)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		a := []float32{1, 0, 0}
		b := []float32{0, 1, 0}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-5)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{-1, 0}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-5)
	})

	t.Run("dimension mismatch returns zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	})

	t.Run("zero vector returns zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	})
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length result", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-5)
		assert.InDelta(t, 0.8, v[1], 1e-5)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})
}
