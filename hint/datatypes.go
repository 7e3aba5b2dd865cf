package hint

import (
	"fmt"
	"hash/fnv"
	"iter"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cottand/sanehint/util"
	"github.com/hashicorp/go-set/v3"
)

// Hint is a node in a type-specification tree: either atomic (a concrete
// checkable type) or compound (a template applied to argument hints).
// Hints are immutable and compared by Hash, never mutated in place.
type Hint interface {
	fmt.Stringer
	Hash() uint64
	Children() iter.Seq[Hint]
}

// Checkable is implemented by hints which can decide membership of a
// runtime value directly, without consulting a code generator.
type Checkable interface {
	Hint
	Accepts(value any) bool
}

var (
	_ Hint = (*Type)(nil)
	_ Hint = (*TypeParam)(nil)
	_ Hint = (*Template)(nil)
	_ Hint = (*Subscripted)(nil)
	_ Hint = (*Union)(nil)
	_ Hint = (*TupleUnion)(nil)
	_ Hint = (Ref)("")
	_ Hint = anyType{}

	_ Checkable = (*Type)(nil)
)

// Provenance tracks the origin and description of hints
type Provenance struct {
	Site string // annotated site the hint came from, may be ""
	Desc string
}

var EmptyProv = Provenance{}

type withProvenance struct {
	provenance Provenance
}

func (w withProvenance) Prov() Provenance { return w.provenance }

func (p Provenance) embed() withProvenance {
	return withProvenance{provenance: p}
}

var emptySeqHint iter.Seq[Hint] = func(_ func(Hint) bool) {}

// Type is an atomic checkable type, identified nominally by name.
// parents holds the names of every transitive supertype, so the subtype
// test is a single set lookup as in a nominal class-tag encoding.
type Type struct {
	name    string
	parents *set.Set[string]
	rt      reflect.Type
	withProvenance
}

// NewType declares an atomic type with the given transitive parent names.
// A type with no backing runtime type accepts only nil values.
func NewType(name string, parents []string, prov Provenance) *Type {
	return &Type{
		name:           name,
		parents:        set.From(parents),
		withProvenance: prov.embed(),
	}
}

// NewTypeOf declares an atomic type backed by the dynamic Go type of zero,
// so that Accepts can test runtime values against it.
func NewTypeOf(name string, parents []string, zero any, prov Provenance) *Type {
	return &Type{
		name:           name,
		parents:        set.From(parents),
		rt:             reflect.TypeOf(zero),
		withProvenance: prov.embed(),
	}
}

func (t *Type) Name() string   { return t.name }
func (t *Type) String() string { return t.name }

func (t *Type) Children() iter.Seq[Hint] { return emptySeqHint }

func (t *Type) Hash() uint64 {
	const prime1 uint64 = 1299709
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(t.name))
	return prime1 ^ hasher.Sum64()
}

// SubtypeOf reports whether t is a (possibly improper) nominal subtype of
// other, consulting t's transitive parent-name set.
func (t *Type) SubtypeOf(other *Type) bool {
	return t.name == other.name || t.parents.Contains(other.name)
}

func (t *Type) Accepts(value any) bool {
	if t.rt == nil {
		return value == nil
	}
	vt := reflect.TypeOf(value)
	return vt != nil && vt.AssignableTo(t.rt)
}

// TypeParam is a named placeholder belonging to a template's declaration.
// Parameters are identity-compared: two declarations with the same name are
// distinct parameters, so each carries a process-unique id.
type TypeParam struct {
	id       uint64
	name     string
	bound    Hint // may be nil
	variadic bool
	withProvenance
}

var typeParamIDs atomic.Uint64

// NewTypeParam declares a singular parameter, optionally bounded.
func NewTypeParam(name string, bound Hint, prov Provenance) *TypeParam {
	return &TypeParam{
		id:             typeParamIDs.Add(1),
		name:           name,
		bound:          bound,
		withProvenance: prov.embed(),
	}
}

// NewVariadicParam declares a parameter binding a run of zero or more
// trailing arguments. Variadic parameters take part in arity accounting
// only and never appear in substitution tables.
func NewVariadicParam(name string, prov Provenance) *TypeParam {
	return &TypeParam{
		id:             typeParamIDs.Add(1),
		name:           name,
		variadic:       true,
		withProvenance: prov.embed(),
	}
}

func (p *TypeParam) Name() string   { return p.name }
func (p *TypeParam) Bound() Hint    { return p.bound }
func (p *TypeParam) Variadic() bool { return p.variadic }

func (p *TypeParam) String() string {
	if p.variadic {
		return "*" + p.name
	}
	return p.name
}

func (p *TypeParam) Hash() uint64 {
	const prime1 uint64 = 31
	const prime2 uint64 = 7919
	return prime1 * prime2 * p.id
}

func (p *TypeParam) Children() iter.Seq[Hint] {
	if p.bound == nil {
		return emptySeqHint
	}
	return util.SingleIter(p.bound)
}

// Template is a compound hint's unsubscripted origin, declaring the type
// parameters that instantiations substitute.
type Template struct {
	name   string
	params []*TypeParam
	withProvenance
}

func NewTemplate(name string, params []*TypeParam, prov Provenance) *Template {
	return &Template{
		name:           name,
		params:         params,
		withProvenance: prov.embed(),
	}
}

func (t *Template) Name() string         { return t.name }
func (t *Template) Params() []*TypeParam { return t.params }

func (t *Template) String() string {
	if len(t.params) == 0 {
		return t.name
	}
	return fmt.Sprintf("%s[%s]", t.name, util.JoinString(t.params, ", "))
}

func (t *Template) Hash() uint64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(t.name))
	hash := hasher.Sum64()
	for _, p := range t.params {
		hash = hash*16777619 ^ p.Hash()
	}
	return hash
}

func (t *Template) Children() iter.Seq[Hint] {
	return func(yield func(Hint) bool) {
		for _, p := range t.params {
			if !yield(p) {
				return
			}
		}
	}
}

// Subscripted is a template instantiation: an origin hint applied to
// argument hints. The origin is normally a *Template but may also be a
// subscriptable forward-reference proxy whose resolution is deferred.
type Subscripted struct {
	origin Hint
	args   []Hint
	withProvenance
}

func NewSubscripted(origin Hint, args []Hint, prov Provenance) *Subscripted {
	return &Subscripted{
		origin:         origin,
		args:           args,
		withProvenance: prov.embed(),
	}
}

func (s *Subscripted) Origin() Hint { return s.origin }
func (s *Subscripted) Args() []Hint { return s.args }

func (s *Subscripted) String() string {
	name := s.origin.String()
	if t, ok := s.origin.(*Template); ok {
		name = t.Name()
	}
	return fmt.Sprintf("%s[%s]", name, util.JoinString(s.args, ", "))
}

func (s *Subscripted) Hash() uint64 {
	hash := s.origin.Hash() * 31
	for _, arg := range s.args {
		hash = hash*16777619 ^ arg.Hash()
	}
	return hash
}

func (s *Subscripted) Children() iter.Seq[Hint] {
	return util.ConcatIter(util.SingleIter(s.origin), func(yield func(Hint) bool) {
		for _, arg := range s.args {
			if !yield(arg) {
				return
			}
		}
	})
}

// Union is the modern n-ary union form.
type Union struct {
	members []Hint
	withProvenance
}

// NewUnion flattens nested unions, drops duplicate members by hash, and
// collapses single-member unions to the member itself.
func NewUnion(members []Hint, prov Provenance) Hint {
	var flat []Hint
	seen := set.New[uint64](len(members))
	var push func(h Hint)
	push = func(h Hint) {
		if u, ok := h.(*Union); ok {
			for _, m := range u.members {
				push(m)
			}
			return
		}
		if seen.Insert(h.Hash()) {
			flat = append(flat, h)
		}
	}
	for _, m := range members {
		push(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Union{members: flat, withProvenance: prov.embed()}
}

func (u *Union) Members() []Hint { return u.members }

func (u *Union) String() string {
	return "(" + util.JoinString(u.members, " | ") + ")"
}

func (u *Union) Hash() uint64 {
	var hash uint64 = 2166136261
	for _, m := range u.members {
		hash = hash*37 + m.Hash()
	}
	return hash
}

func (u *Union) Children() iter.Seq[Hint] {
	return func(yield func(Hint) bool) {
		for _, m := range u.members {
			if !yield(m) {
				return
			}
		}
	}
}

// TupleUnion is the legacy tuple-of-types union form. It only survives
// until the first sanification of its annotated site: the sanitizer
// permanently coerces it into the modern Union form.
type TupleUnion struct {
	members []Hint
	withProvenance
}

func NewTupleUnion(members []Hint, prov Provenance) *TupleUnion {
	return &TupleUnion{members: members, withProvenance: prov.embed()}
}

func (u *TupleUnion) Members() []Hint { return u.members }

// Modern returns the equivalent modern-form union. The rewrite is
// hint-content-invariant: every observer sees the same member set.
func (u *TupleUnion) Modern() Hint {
	return NewUnion(u.members, u.provenance)
}

func (u *TupleUnion) String() string {
	return "(" + util.JoinString(u.members, ", ") + ")"
}

func (u *TupleUnion) Hash() uint64 {
	const prime1 uint64 = 433
	hash := prime1
	for _, m := range u.members {
		hash = hash*41 + m.Hash()
	}
	return hash
}

func (u *TupleUnion) Children() iter.Seq[Hint] {
	return func(yield func(Hint) bool) {
		for _, m := range u.members {
			if !yield(m) {
				return
			}
		}
	}
}

// Ref is a symbolic (string-form) forward reference to a name that may not
// be defined yet in its declaring scope.
type Ref string

func (r Ref) Name() string   { return string(r) }
func (r Ref) String() string { return strconv.Quote(string(r)) }

func (r Ref) Hash() uint64 {
	const prime1 uint64 = 104729
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(r))
	return prime1 ^ hasher.Sum64()
}

func (r Ref) Children() iter.Seq[Hint] { return emptySeqHint }

// anyType is the canonical ignorable marker: every value satisfies it.
type anyType struct{}

// Any is the canonical "ignorable" hint. Reductions that erase all
// information (an unbound parameter, an ignorable union member set)
// produce Any rather than an empty model.
var Any Hint = anyType{}

func (anyType) String() string           { return "Any" }
func (anyType) Hash() uint64             { return 16777619 }
func (anyType) Children() iter.Seq[Hint] { return emptySeqHint }
func (anyType) Accepts(any) bool         { return true }

// Equal compares two hints for equality by hash, as each hint kind has its
// own interpretation of structural equality.
func Equal(a, b Hint) bool {
	return a.Hash() == b.Hash()
}

// Label renders a hint for inclusion in diagnostics, truncating deeply
// nested trees.
func Label(h Hint) string {
	s := h.String()
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return strings.ToValidUTF8(s, "")
}
