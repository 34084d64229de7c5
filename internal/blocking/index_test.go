package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store(code string) []Key {
	return []Key{{Name: "RSBK", Value: code}}
}

func TestCandidatesShareAPair(t *testing.T) {
	ix := New(true)
	require.NoError(t, ix.Insert(1, store("SM")))
	require.NoError(t, ix.Insert(2, store("SM")))
	require.NoError(t, ix.Insert(3, store("Robinsons")))
	require.NoError(t, ix.Insert(4, nil))

	got, err := ix.Candidates(1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, got)

	got, err = ix.Candidates(3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ix.Candidates(4)
	require.NoError(t, err)
	assert.Empty(t, got, "a cluster without key values has no candidates")

	assert.True(t, ix.Shared(1, 2))
	assert.False(t, ix.Shared(1, 3))
}

func TestCandidatesAcrossKeyNames(t *testing.T) {
	ix := New(true)
	require.NoError(t, ix.Insert(5, []Key{{"FCBK", "P"}, {"LCBK", "g"}}))
	require.NoError(t, ix.Insert(2, []Key{{"FCBK", "P"}, {"LCBK", "L"}}))
	require.NoError(t, ix.Insert(9, []Key{{"FCBK", "N"}, {"LCBK", "g"}}))
	require.NoError(t, ix.Insert(7, []Key{{"FCBK", "g"}, {"LCBK", "P"}}))

	got, err := ix.Candidates(5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 9}, got, "values only match under the same key name")
}

func TestDisabledIndexReturnsEveryOtherCluster(t *testing.T) {
	ix := New(false)
	for _, id := range []uint64{3, 1, 2} {
		require.NoError(t, ix.Insert(id, nil))
	}
	got, err := ix.Candidates(2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, got)
	assert.True(t, ix.Shared(1, 3))
	assert.False(t, ix.Enabled())
}

func TestAbsorbUnionsPairs(t *testing.T) {
	ix := New(true)
	require.NoError(t, ix.Insert(1, store("SM")))
	require.NoError(t, ix.Insert(2, store("Robinsons")))
	require.NoError(t, ix.Insert(3, store("Robinsons")))

	require.NoError(t, ix.Absorb(1, 2))

	assert.False(t, ix.Contains(2))
	assert.Equal(t, []Key{{"RSBK", "Robinsons"}, {"RSBK", "SM"}}, ix.Keys(1))
	assert.Empty(t, ix.Keys(2))
	assert.Equal(t, "RSBK=SM", Key{"RSBK", "SM"}.String())

	got, err := ix.Candidates(3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, got, "the retired id is never returned")

	_, err = ix.Candidates(2)
	assert.ErrorIs(t, err, ErrUnknownCluster)
}

func TestAbsorbRejectsUnknownOrSelf(t *testing.T) {
	ix := New(true)
	require.NoError(t, ix.Insert(1, store("SM")))
	assert.ErrorIs(t, ix.Absorb(1, 2), ErrUnknownCluster)
	assert.ErrorIs(t, ix.Absorb(2, 1), ErrUnknownCluster)
	assert.ErrorIs(t, ix.Absorb(1, 1), ErrDuplicateCluster)
	assert.ErrorIs(t, ix.Insert(1, nil), ErrDuplicateCluster)
}
