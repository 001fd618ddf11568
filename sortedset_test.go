package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedSetInsertAndRank(t *testing.T) {
	z := NewSortedSet()
	z.InsertOrReplace("b", 2)
	z.InsertOrReplace("a", 1)
	z.InsertOrReplace("c", 3)

	assert.Equal(t, 3, z.Len())
	rank, ok := z.RankOf("a")
	require.True(t, ok)
	assert.Equal(t, 0, rank)

	rank, ok = z.RankOf("c")
	require.True(t, ok)
	assert.Equal(t, 2, rank)
}

func TestSortedSetTieBreaksByMember(t *testing.T) {
	z := NewSortedSet()
	z.InsertOrReplace("zebra", 1)
	z.InsertOrReplace("apple", 1)

	assert.Equal(t, []string{"apple", "zebra"}, z.Range(0, -1))
}

func TestSortedSetReplaceUpdatesIndex(t *testing.T) {
	z := NewSortedSet()
	z.InsertOrReplace("a", 5)
	z.InsertOrReplace("a", 1)

	score, ok := z.ScoreOf("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, []string{"a"}, z.Range(0, -1))
}

func TestSortedSetRemove(t *testing.T) {
	z := NewSortedSet()
	z.InsertOrReplace("a", 1)
	assert.True(t, z.Remove("a"))
	assert.False(t, z.Remove("a"))
	assert.Equal(t, 0, z.Len())
}

func TestSortedSetRangeNegativeIndices(t *testing.T) {
	z := NewSortedSet()
	for i, m := range []string{"a", "b", "c", "d"} {
		z.InsertOrReplace(m, float64(i))
	}
	assert.Equal(t, []string{"c", "d"}, z.Range(-2, -1))
	assert.Equal(t, []string{"a", "b", "c", "d"}, z.Range(0, -1))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "1", formatScore(1.0))
	assert.Equal(t, "1.5", formatScore(1.5))
}
