package sane_test

import (
	"testing"

	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/sane"
	"github.com/cottand/sanehint/subst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(t *testing.T, param *hint.TypeParam, arg hint.Hint) subst.Table {
	t.Helper()
	h := hint.NewSubscripted(
		hint.NewTemplate("box", []*hint.TypeParam{param}, hint.EmptyProv),
		[]hint.Hint{arg}, hint.EmptyProv)
	table, err := subst.NewEngine(true).Resolve(h)
	require.NoError(t, err)
	return table
}

func TestChildMergesTablesChildWins(t *testing.T) {
	p := hint.NewTypeParam("T", nil, hint.EmptyProv)
	root := sane.New(hint.Any)
	root.Table = tableOf(t, p, hint.Int)

	child := root.Child(hint.Str, tableOf(t, p, hint.Str))
	got, ok := child.Table.Get(p)
	assert.True(t, ok)
	assert.Equal(t, hint.Hint(hint.Str), got)
}

func TestChildInheritsAncestorEntries(t *testing.T) {
	p1 := hint.NewTypeParam("T", nil, hint.EmptyProv)
	p2 := hint.NewTypeParam("U", nil, hint.EmptyProv)
	root := sane.New(hint.Any)
	root.Table = tableOf(t, p1, hint.Int)

	child := root.Child(hint.Str, tableOf(t, p2, hint.Str))
	assert.Equal(t, 2, child.Table.Len())
	got, _ := child.Table.Get(p1)
	assert.Equal(t, hint.Hint(hint.Int), got)
}

func TestRecursionGuardIsolatesSiblings(t *testing.T) {
	root := sane.New(hint.Any)
	marked := root.WithRecursed(42)

	assert.True(t, marked.IsRecursed(42))
	assert.False(t, root.IsRecursed(42))

	// siblings derived from the same ancestor do not see each other's marks
	left := marked.WithRecursed(1)
	right := marked.WithRecursed(2)
	assert.True(t, left.IsRecursed(1))
	assert.False(t, left.IsRecursed(2))
	assert.True(t, right.IsRecursed(2))
	assert.False(t, right.IsRecursed(1))
}

func TestIgnorable(t *testing.T) {
	assert.True(t, sane.Ignorable(sane.New(hint.Any)))
	assert.False(t, sane.Ignorable(sane.New(hint.Int)))
}
