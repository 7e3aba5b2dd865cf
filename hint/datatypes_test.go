package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionFlattensAndDedupes(t *testing.T) {
	inner := NewUnion([]Hint{Str, Bool}, EmptyProv)
	u := NewUnion([]Hint{Int, inner, Int}, EmptyProv)

	union, ok := u.(*Union)
	if !ok {
		t.Fatalf("expected a union, got %T", u)
	}
	assert.Equal(t, []Hint{Int, Str, Bool}, union.Members())
}

func TestUnionCollapsesSingleMember(t *testing.T) {
	u := NewUnion([]Hint{Int, Int}, EmptyProv)
	assert.Equal(t, Hint(Int), u)
}

func TestTypeSubtyping(t *testing.T) {
	animal := NewType("animal", []string{"object"}, EmptyProv)
	cat := NewType("cat", []string{"animal", "object"}, EmptyProv)

	assert.True(t, cat.SubtypeOf(animal))
	assert.True(t, cat.SubtypeOf(cat))
	assert.True(t, cat.SubtypeOf(Object))
	assert.False(t, animal.SubtypeOf(cat))
}

func TestTypeAccepts(t *testing.T) {
	assert.True(t, Int.Accepts(5))
	assert.False(t, Int.Accepts("five"))
	assert.True(t, Str.Accepts("five"))

	// a type with no backing runtime type accepts only nil
	assert.True(t, None.Accepts(nil))
	assert.False(t, None.Accepts(0))
}

func TestTupleUnionModern(t *testing.T) {
	legacy := NewTupleUnion([]Hint{Int, Str}, EmptyProv)
	modern := legacy.Modern()

	union, ok := modern.(*Union)
	if !ok {
		t.Fatalf("expected a union, got %T", modern)
	}
	assert.Equal(t, []Hint{Int, Str}, union.Members())
	assert.NotEqual(t, legacy.Hash(), modern.Hash())
}

func TestStringForms(t *testing.T) {
	cases := map[Hint]string{
		Int:  "int",
		Dict: "dict[K, V]",
		NewSubscripted(Dict, []Hint{Str, Int}, EmptyProv): "dict[str, int]",
		NewUnion([]Hint{Int, Str}, EmptyProv):             "(int | str)",
		Ref("mod.T"):                                      `"mod.T"`,
		Any:                                               "Any",
	}
	for h, expected := range cases {
		assert.Equal(t, expected, h.String())
	}
}

func TestTypeParamIdentity(t *testing.T) {
	a := NewTypeParam("T", nil, EmptyProv)
	b := NewTypeParam("T", nil, EmptyProv)

	// same name, distinct declarations
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.True(t, Equal(a, a))
}

func TestEqualByHash(t *testing.T) {
	a := NewSubscripted(List, []Hint{Int}, EmptyProv)
	b := NewSubscripted(List, []Hint{Int}, EmptyProv)
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, NewSubscripted(List, []Hint{Str}, EmptyProv)))
}

func TestUniverseBindings(t *testing.T) {
	u := Universe()
	assert.Equal(t, any(Int), u["int"])
	assert.Equal(t, any(Generator), u["generator"])

	// each call returns a fresh map callers may mutate
	u["int"] = nil
	assert.Equal(t, any(Int), Universe()["int"])
}
