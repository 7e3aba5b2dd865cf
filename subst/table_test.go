package subst_test

import (
	"testing"

	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/subst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFor(t *testing.T, args ...hint.Hint) (subst.Table, []*hint.TypeParam) {
	t.Helper()
	params := make([]*hint.TypeParam, len(args))
	names := []string{"T", "U", "V"}
	for i := range args {
		params[i] = hint.NewTypeParam(names[i], nil, hint.EmptyProv)
	}
	h := hint.NewSubscripted(
		hint.NewTemplate("box", params, hint.EmptyProv), args, hint.EmptyProv)
	table, err := subst.NewEngine(true).Resolve(h)
	require.NoError(t, err)
	return table, params
}

func TestZeroTable(t *testing.T) {
	var table subst.Table
	assert.True(t, table.IsZero())
	assert.Equal(t, 0, table.Len())
	_, ok := table.Get(hint.NewTypeParam("T", nil, hint.EmptyProv))
	assert.False(t, ok)
	assert.Equal(t, "{}", table.String())
}

func TestMergeChildWins(t *testing.T) {
	parent, parentParams := tableFor(t, hint.Int)
	child, err := subst.NewEngine(true).Resolve(hint.NewSubscripted(
		hint.NewTemplate("box", parentParams, hint.EmptyProv),
		[]hint.Hint{hint.Str}, hint.EmptyProv))
	require.NoError(t, err)

	merged := parent.Merge(child)
	got, ok := merged.Get(parentParams[0])
	assert.True(t, ok)
	assert.Equal(t, hint.Hint(hint.Str), got)
}

func TestMergeDisjointKeepsBoth(t *testing.T) {
	a, aParams := tableFor(t, hint.Int)
	b, bParams := tableFor(t, hint.Str)

	merged := a.Merge(b)
	assert.Equal(t, 2, merged.Len())
	got, _ := merged.Get(aParams[0])
	assert.Equal(t, hint.Hint(hint.Int), got)
	got, _ = merged.Get(bParams[0])
	assert.Equal(t, hint.Hint(hint.Str), got)
}

func TestMergeWithZero(t *testing.T) {
	table, _ := tableFor(t, hint.Int)
	assert.Equal(t, table, table.Merge(subst.Table{}))
	assert.Equal(t, table, subst.Table{}.Merge(table))
}

func TestStringSortsByParamName(t *testing.T) {
	table, _ := tableFor(t, hint.Int, hint.Str)
	assert.Equal(t, "{T: int, U: str}", table.String())
}
