package chemical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/pkg/errors"
)

const testOffset int64 = 134825000

func newAssigner(t *testing.T) *CompositeKeyAssigner {
	t.Helper()
	a, err := NewCompositeKeyAssigner(testOffset)
	require.NoError(t, err)
	return a
}

func TestNewCompositeKeyAssigner_RejectsNonPositive(t *testing.T) {
	for _, off := range []int64{0, -1} {
		_, err := NewCompositeKeyAssigner(off)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeCompositeOffsetLow))
	}
}

func TestAssign(t *testing.T) {
	a := newAssigner(t)

	cases := []struct {
		name string
		in   ResolvedIdentifier
		want Optional[int64]
	}{
		{"pubchem wins", ResolvedIdentifier{PubChemID: Some[int64](5284421), FooDBID: Some[int64](12)}, Some[int64](5284421)},
		{"foodb offset", ResolvedIdentifier{FooDBID: Some[int64](12)}, Some(testOffset + 12)},
		{"foodb zero is present", ResolvedIdentifier{FooDBID: Some[int64](0)}, Some(testOffset)},
		{"both absent", ResolvedIdentifier{Query: "unobtainium"}, None[int64]()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Assign(tc.in)
			assert.Equal(t, tc.want, got.CompositeID)
			assert.Equal(t, tc.in.PubChemID, got.PubChemID)
			assert.Equal(t, tc.in.FooDBID, got.FooDBID)
		})
	}
}

func TestAssign_OverwritesStaleComposite(t *testing.T) {
	a := newAssigner(t)
	in := ResolvedIdentifier{CompositeID: Some[int64](1)}
	assert.False(t, a.Assign(in).CompositeID.Present())
}

func TestAssign_NamespacesNeverCollide(t *testing.T) {
	a := newAssigner(t)
	seen := make(map[int64]SourceTag)

	cids := []int64{1, 2, 65036, 5284421, testOffset - 1}
	fdbs := []int64{0, 1, 2, 65036, 5284421, 900000}

	for _, cid := range cids {
		id, _ := a.Assign(ResolvedIdentifier{PubChemID: Some(cid)}).CompositeID.Get()
		seen[id] = SourcePubChemCID
	}
	for _, fdb := range fdbs {
		id, _ := a.Assign(ResolvedIdentifier{FooDBID: Some(fdb)}).CompositeID.Get()
		prev, dup := seen[id]
		assert.False(t, dup, "foodb %d collides with %s", fdb, prev)
		seen[id] = SourceFooDB
	}
}

func TestSource_Inverse(t *testing.T) {
	a := newAssigner(t)

	tag, id := a.Source(5284421)
	assert.Equal(t, SourcePubChemCID, tag)
	assert.Equal(t, int64(5284421), id)

	tag, id = a.Source(testOffset + 77)
	assert.Equal(t, SourceFooDB, tag)
	assert.Equal(t, int64(77), id)
}

func TestCheckPubChemID(t *testing.T) {
	a := newAssigner(t)
	assert.NoError(t, a.CheckPubChemID(testOffset-1))
	assert.Error(t, a.CheckPubChemID(testOffset))
}

//Personal.AI order the ending
