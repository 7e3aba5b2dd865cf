package sanify_test

import (
	"testing"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/meta"
	"github.com/cottand/sanehint/sane"
	"github.com/cottand/sanehint/sanify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanitizer(t *testing.T) (*sanify.Sanitizer, *forward.Registry) {
	t.Helper()
	registry := forward.NewRegistry(nil)
	cfg := meta.DefaultConfig()
	cfg.Registry = registry
	return sanify.New(cfg), registry
}

func TestRootForValueSubscriptedBuiltin(t *testing.T) {
	s, _ := newTestSanitizer(t)

	model, err := s.RootForValue(hint.Ref("dict[str, int]"), "main", nil)
	require.NoError(t, err)

	sub, ok := model.Hint.(*hint.Subscripted)
	require.True(t, ok)
	assert.Equal(t, hint.Hint(hint.Dict), sub.Origin())

	k, v := hint.Dict.Params()[0], hint.Dict.Params()[1]
	got, ok := model.Table.Get(k)
	assert.True(t, ok)
	assert.Equal(t, hint.Hint(hint.Str), got)
	got, ok = model.Table.Get(v)
	assert.True(t, ok)
	assert.Equal(t, hint.Hint(hint.Int), got)

	// the minified scope retains exactly the names resolution touched
	assert.Equal(t, map[string]any{
		"dict": hint.Dict, "str": hint.Str, "int": hint.Int,
	}, model.ScopeMin)
}

func TestRootForValueIdentityNeedsNoTable(t *testing.T) {
	s, _ := newTestSanitizer(t)

	model, err := s.RootForValue(hint.Ref("int"), "main", nil)
	require.NoError(t, err)
	assert.Equal(t, hint.Hint(hint.Int), model.Hint)
	assert.True(t, model.Table.IsZero())
}

func TestRootForValueUnionAbsorbedByAny(t *testing.T) {
	s, _ := newTestSanitizer(t)

	model, err := s.RootForValue(hint.Ref("int | Any"), "main", nil)
	require.NoError(t, err)
	assert.True(t, sane.Ignorable(model))
}

func TestRootForValueUnion(t *testing.T) {
	s, _ := newTestSanitizer(t)

	model, err := s.RootForValue(hint.Ref("int | str"), "main", nil)
	require.NoError(t, err)
	union, ok := model.Hint.(*hint.Union)
	require.True(t, ok)
	assert.Equal(t, []hint.Hint{hint.Int, hint.Str}, union.Members())
}

func TestRootForValueUndefinedBecomesProxy(t *testing.T) {
	s, registry := newTestSanitizer(t)

	model, err := s.RootForValue(hint.Ref("Undefined"), "main", nil)
	require.NoError(t, err)
	p, ok := model.Hint.(*forward.Proxy)
	require.True(t, ok)
	assert.Equal(t, "Undefined", p.Name())
	assert.Equal(t, model.ScopeMin["Undefined"], any(p))
	assert.Len(t, registry.All(), 1)
}

func TestRootForValueBoundViolation(t *testing.T) {
	s, _ := newTestSanitizer(t)
	animal := hint.NewType("animal", []string{"object"}, hint.EmptyProv)
	cat := hint.NewType("cat", []string{"animal", "object"}, hint.EmptyProv)
	box := hint.NewTemplate("box", []*hint.TypeParam{
		hint.NewTypeParam("T", animal, hint.EmptyProv),
	}, hint.EmptyProv)
	bindings := map[string]any{"box": box, "cat": cat}

	_, err := s.RootForValue(hint.Ref("box[cat]"), "main", bindings)
	require.NoError(t, err)

	_, err = s.RootForValue(hint.Ref("box[int]"), "main", bindings)
	require.Error(t, err)
	assert.Equal(t, herr.BoundViolation, herr.CodeOf(err))
	assert.Contains(t, err.Error(), `in scope "main"`)
}

func TestRootForValueBadScopeName(t *testing.T) {
	s, _ := newTestSanitizer(t)
	_, err := s.RootForValue(hint.Ref("int"), "not a scope", nil)
	require.Error(t, err)
	assert.Equal(t, herr.BadIdentifier, herr.CodeOf(err))
}

func TestRootForValueRecursiveRef(t *testing.T) {
	s, _ := newTestSanitizer(t)
	bindings := map[string]any{"Node": hint.Ref("Node")}

	model, err := s.RootForValue(hint.Ref("Node"), "main", bindings)
	require.NoError(t, err)
	p, ok := model.Hint.(*forward.Proxy)
	require.True(t, ok)
	assert.Equal(t, "Node", p.Name())
}

func TestRootForFuncCoercesTupleUnionPermanently(t *testing.T) {
	s, _ := newTestSanitizer(t)
	legacy := hint.NewTupleUnion([]hint.Hint{hint.Int, hint.Str}, hint.EmptyProv)
	fn := &meta.Callable{
		Name:        "f",
		ScopeName:   "mod",
		Annotations: map[string]hint.Hint{"x": legacy},
	}

	model, err := s.RootForFunc(fn, "x")
	require.NoError(t, err)

	union, ok := model.Hint.(*hint.Union)
	require.True(t, ok)
	assert.Equal(t, []hint.Hint{hint.Int, hint.Str}, union.Members())

	// the coercion is written back, so re-decoration starts from it
	_, stillLegacy := fn.Annotations["x"].(*hint.TupleUnion)
	assert.False(t, stillLegacy)
}

func TestRootForFuncResolvesAgainstLocals(t *testing.T) {
	s, _ := newTestSanitizer(t)
	myType := hint.NewType("MyType", []string{"object"}, hint.EmptyProv)
	fn := &meta.Callable{
		Name:        "f",
		ScopeName:   "mod",
		Annotations: map[string]hint.Hint{"x": hint.Ref("MyType")},
		Locals:      map[string]any{"MyType": myType},
	}

	model, err := s.RootForFunc(fn, "x")
	require.NoError(t, err)
	assert.Equal(t, hint.Hint(myType), model.Hint)
	assert.Equal(t, map[string]any{"MyType": myType}, model.ScopeMin)
}

func TestRootForFuncMissingSlot(t *testing.T) {
	s, _ := newTestSanitizer(t)
	fn := &meta.Callable{Name: "f", ScopeName: "mod", Annotations: map[string]hint.Hint{}}

	_, err := s.RootForFunc(fn, "x")
	require.Error(t, err)
	assert.Equal(t, herr.BadCallable, herr.CodeOf(err))
}

func TestRootForFuncGeneratorReturnUnwraps(t *testing.T) {
	s, _ := newTestSanitizer(t)
	fn := &meta.Callable{
		Name:        "gen",
		ScopeName:   "mod",
		IsGenerator: true,
		Annotations: map[string]hint.Hint{
			meta.SlotReturn: hint.Ref("generator[int, None, str]"),
		},
	}

	model, err := s.RootForFunc(fn, meta.SlotReturn)
	require.NoError(t, err)
	// the model describes R, the value a finished generator produces
	assert.Equal(t, hint.Hint(hint.Str), model.Hint)
}

func TestRootForFuncGeneratorBareReturnIsIgnorable(t *testing.T) {
	s, _ := newTestSanitizer(t)
	fn := &meta.Callable{
		Name:        "gen",
		ScopeName:   "mod",
		IsGenerator: true,
		Annotations: map[string]hint.Hint{meta.SlotReturn: hint.Ref("generator")},
	}

	model, err := s.RootForFunc(fn, meta.SlotReturn)
	require.NoError(t, err)
	assert.True(t, sane.Ignorable(model))
}

func TestRootForFuncGeneratorBadReturn(t *testing.T) {
	s, _ := newTestSanitizer(t)
	fn := &meta.Callable{
		Name:        "gen",
		ScopeName:   "mod",
		IsGenerator: true,
		Annotations: map[string]hint.Hint{meta.SlotReturn: hint.Ref("int")},
	}

	_, err := s.RootForFunc(fn, meta.SlotReturn)
	require.Error(t, err)
	assert.Equal(t, herr.BadCallable, herr.CodeOf(err))
	assert.Contains(t, err.Error(), `function "mod.gen" return`)
}

func TestChildReducesParamThroughTable(t *testing.T) {
	s, _ := newTestSanitizer(t)

	parent, err := s.RootForValue(hint.Ref("dict[str, int]"), "main", nil)
	require.NoError(t, err)

	child, err := s.Child(parent, hint.Dict.Params()[1])
	require.NoError(t, err)
	assert.Equal(t, hint.Hint(hint.Int), child.Hint)
}

func TestChildUnmappedParamFallsBackToBound(t *testing.T) {
	s, _ := newTestSanitizer(t)
	animal := hint.NewType("animal", []string{"object"}, hint.EmptyProv)
	bounded := hint.NewTypeParam("T", animal, hint.EmptyProv)
	unbounded := hint.NewTypeParam("U", nil, hint.EmptyProv)

	parent, err := s.RootForValue(hint.Ref("int"), "main", nil)
	require.NoError(t, err)

	child, err := s.Child(parent, bounded)
	require.NoError(t, err)
	assert.Equal(t, hint.Hint(animal), child.Hint)

	child, err = s.Child(parent, unbounded)
	require.NoError(t, err)
	assert.True(t, sane.Ignorable(child))
}

func TestChildRefResolvesAgainstMinifiedScope(t *testing.T) {
	s, _ := newTestSanitizer(t)
	myType := hint.NewType("MyType", []string{"object"}, hint.EmptyProv)

	parent, err := s.RootForValue(hint.Ref("MyType"), "main",
		map[string]any{"MyType": myType})
	require.NoError(t, err)

	// the root resolved MyType, so the retained scope still knows it
	child, err := s.Child(parent, hint.Ref("MyType"))
	require.NoError(t, err)
	assert.Equal(t, hint.Hint(myType), child.Hint)
}
