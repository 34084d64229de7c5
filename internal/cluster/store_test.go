package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entres/internal/record"
)

func storeSchema(t *testing.T, keyed bool) *record.Schema {
	t.Helper()
	code, err := record.NewExactField[string]("code")
	require.NoError(t, err)
	var keys []record.BlockingKey
	if keyed {
		keys = []record.BlockingKey{{
			Name: "code",
			Derive: func(v record.Values) (string, bool) {
				s := v.String("code")
				return s, s != ""
			},
		}}
	}
	schema, err := record.NewSchema("store", []record.Field{code}, keys)
	require.NoError(t, err)
	return schema
}

func newRef(t *testing.T, schema *record.Schema, code string) *record.Reference {
	t.Helper()
	r, err := schema.New(map[string]any{"code": code}, nil)
	require.NoError(t, err)
	return r
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	schema := storeSchema(t, true)
	s := NewStore(record.NewSequence(), schema.Blocking())

	a, err := s.Create(newRef(t, schema, "SM"))
	require.NoError(t, err)
	b, err := s.Create(newRef(t, schema, "SM"))
	require.NoError(t, err)

	assert.Less(t, a.OID(), b.OID())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []uint64{a.OID(), b.OID()}, s.IDs())
	assert.Equal(t, map[string][]string{"code": {"SM"}}, a.BlockingMap())
	require.NoError(t, s.Check())
}

func TestCreateRejectsOwnedReference(t *testing.T) {
	schema := storeSchema(t, true)
	s := NewStore(nil, true)
	r := newRef(t, schema, "SM")

	_, err := s.Create(r)
	require.NoError(t, err)
	_, err = s.Create(r)
	assert.ErrorIs(t, err, ErrOwnership)
	assert.Equal(t, 1, s.Len())
}

func TestMergeAbsorbsAndRetires(t *testing.T) {
	schema := storeSchema(t, true)
	s := NewStore(record.NewSequence(), true)
	r1, r2, r3 := newRef(t, schema, "SM"), newRef(t, schema, "SM"), newRef(t, schema, "RB")
	a, _ := s.Create(r1)
	b, _ := s.Create(r2)
	c, _ := s.Create(r3)

	merged, err := s.Merge(a.OID(), b.OID())
	require.NoError(t, err)
	assert.Same(t, a, merged)
	assert.Equal(t, []*record.Reference{r1, r2}, merged.Members())
	assert.Equal(t, map[string][]string{"code": {"SM"}}, merged.BlockingMap())
	assert.False(t, s.Live(b.OID()))

	owner, ok := s.Owner(r2.OID())
	require.True(t, ok)
	assert.Equal(t, a.OID(), owner)

	candidates, err := s.Candidates(c.OID())
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, err = s.Merge(a.OID(), b.OID())
	assert.ErrorIs(t, err, ErrNotLive)
	_, err = s.Merge(a.OID(), a.OID())
	assert.ErrorIs(t, err, ErrNotLive)
	_, err = s.Candidates(b.OID())
	assert.ErrorIs(t, err, ErrNotLive)

	require.NoError(t, s.Check())
	assert.Equal(t, 3, s.References())
}

func TestMergeRequiresSharedBlock(t *testing.T) {
	schema := storeSchema(t, true)
	s := NewStore(record.NewSequence(), true)
	a, _ := s.Create(newRef(t, schema, "SM"))
	b, _ := s.Create(newRef(t, schema, "RB"))

	_, err := s.Merge(a.OID(), b.OID())
	assert.ErrorIs(t, err, ErrUnblocked)
	assert.True(t, s.Live(b.OID()))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, map[string][]string{"code": {"SM"}}, a.BlockingMap())
	require.NoError(t, s.Check())
}

func TestRetiredIDsNeverReused(t *testing.T) {
	schema := storeSchema(t, false)
	s := NewStore(record.NewSequence(), false)
	a, _ := s.Create(newRef(t, schema, "x"))
	b, _ := s.Create(newRef(t, schema, "y"))
	_, err := s.Merge(a.OID(), b.OID())
	require.NoError(t, err)

	c, err := s.Create(newRef(t, schema, "z"))
	require.NoError(t, err)
	assert.Greater(t, c.OID(), b.OID())
}

func TestSnapshotIsCopy(t *testing.T) {
	schema := storeSchema(t, false)
	s := NewStore(nil, false)
	a, _ := s.Create(newRef(t, schema, "x"))

	snap := s.Snapshot()
	snap[a.OID()][0] = nil
	assert.NotNil(t, a.Members()[0])
}

func TestAdoptAcrossStores(t *testing.T) {
	schema := storeSchema(t, true)
	seq := record.NewSequence()
	left := NewStore(seq, true)
	right := NewStore(seq, true)
	l, _ := left.Create(newRef(t, schema, "SM"))
	r, _ := right.Create(newRef(t, schema, "SM"))
	require.NotEqual(t, l.OID(), r.OID())

	merged := NewStore(seq, true)
	require.NoError(t, merged.Adopt(l))
	require.NoError(t, merged.Adopt(r))
	assert.ErrorContains(t, merged.Adopt(l), "already indexed")

	candidates, err := merged.Candidates(l.OID())
	require.NoError(t, err)
	assert.Equal(t, []uint64{r.OID()}, candidates)
	require.NoError(t, merged.Check())
}
