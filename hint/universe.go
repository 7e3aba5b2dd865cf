package hint

var builtinProv = Provenance{Site: "builtin", Desc: "builtin"}

// Object is the root of the builtin nominal hierarchy.
var Object = NewType("object", nil, builtinProv)

var (
	Int   = NewTypeOf("int", []string{"object"}, int(0), builtinProv)
	Float = NewTypeOf("float", []string{"object"}, float64(0), builtinProv)
	Str   = NewTypeOf("str", []string{"object"}, "", builtinProv)
	Bool  = NewTypeOf("bool", []string{"object"}, false, builtinProv)
	Bytes = NewTypeOf("bytes", []string{"object"}, []byte(nil), builtinProv)
	None  = NewType("None", []string{"object"}, builtinProv)
)

// Builtin container templates. Each declares fresh parameters; table keys
// are the parameter identities below, not their names.
var (
	List = NewTemplate("list", []*TypeParam{
		NewTypeParam("T", nil, builtinProv),
	}, builtinProv)

	Dict = NewTemplate("dict", []*TypeParam{
		NewTypeParam("K", nil, builtinProv),
		NewTypeParam("V", nil, builtinProv),
	}, builtinProv)

	Pair = NewTemplate("pair", []*TypeParam{
		NewTypeParam("A", nil, builtinProv),
		NewTypeParam("B", nil, builtinProv),
	}, builtinProv)

	// Generator is the return wrapper unwrapped by return-shape reduction:
	// a generator callable annotated Generator[Y, S, R] is checked against R.
	Generator = NewTemplate("generator", []*TypeParam{
		NewTypeParam("Y", nil, builtinProv),
		NewTypeParam("S", nil, builtinProv),
		NewTypeParam("R", nil, builtinProv),
	}, builtinProv)
)

// Universe returns the built-in bindings seeded into every forward scope.
// The map is rebuilt per call so callers may mutate their copy.
func Universe() map[string]any {
	return map[string]any{
		"object":    Object,
		"int":       Int,
		"float":     Float,
		"str":       Str,
		"bool":      Bool,
		"bytes":     Bytes,
		"None":      None,
		"Any":       Any,
		"list":      List,
		"dict":      Dict,
		"pair":      Pair,
		"generator": Generator,
	}
}
