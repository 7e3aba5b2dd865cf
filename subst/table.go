package subst

import (
	"iter"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/util"
)

// paramHasher hashes type parameters by identity, matching the Table
// invariant that parameters are keys by declaration, not by name
type paramHasher struct{}

func (paramHasher) Hash(p *hint.TypeParam) uint32   { return uint32(p.Hash()) }
func (paramHasher) Equal(a, b *hint.TypeParam) bool { return a == b }

var _ immutable.Hasher[*hint.TypeParam] = paramHasher{}

// Table is an immutable parameter-to-hint mapping produced by instantiating
// a template. The zero value is "no table": the signal that a substitution
// was not needed at all. A Table never maps a parameter to itself.
type Table struct {
	m *immutable.Map[*hint.TypeParam, hint.Hint]
}

// IsZero reports the "no table" signal
func (t Table) IsZero() bool {
	return t.m == nil || t.m.Len() == 0
}

func (t Table) Len() int {
	if t.m == nil {
		return 0
	}
	return t.m.Len()
}

func (t Table) Get(p *hint.TypeParam) (hint.Hint, bool) {
	if t.m == nil {
		return nil, false
	}
	return t.m.Get(p)
}

func (t Table) All() iter.Seq2[*hint.TypeParam, hint.Hint] {
	return func(yield func(*hint.TypeParam, hint.Hint) bool) {
		if t.m == nil {
			return
		}
		itr := t.m.Iterator()
		for !itr.Done() {
			p, h, _ := itr.Next()
			if !yield(p, h) {
				return
			}
		}
	}
}

// Merge returns the left-biased union of t overridden by child: entries of
// child win on key collision. Either side may be the zero Table.
func (t Table) Merge(child Table) Table {
	if t.IsZero() {
		return child
	}
	if child.IsZero() {
		return t
	}
	merged := t.m
	itr := child.m.Iterator()
	for !itr.Done() {
		p, h, _ := itr.Next()
		merged = merged.Set(p, h)
	}
	return Table{m: merged}
}

func (t Table) String() string {
	if t.IsZero() {
		return "{}"
	}
	entries := make([]util.Pair[*hint.TypeParam, hint.Hint], 0, t.m.Len())
	for p, h := range t.All() {
		entries = append(entries, util.NewPair(p, h))
	}
	// iteration order of the underlying map is arbitrary
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Fst.Name() != entries[j].Fst.Name() {
			return entries[i].Fst.Name() < entries[j].Fst.Name()
		}
		return entries[i].Fst.Hash() < entries[j].Fst.Hash()
	})
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Fst.String())
		sb.WriteString(": ")
		sb.WriteString(e.Snd.String())
	}
	sb.WriteString("}")
	return sb.String()
}

type tableBuilder struct {
	m *immutable.Map[*hint.TypeParam, hint.Hint]
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{m: immutable.NewMap[*hint.TypeParam, hint.Hint](paramHasher{})}
}

func (b *tableBuilder) put(p *hint.TypeParam, h hint.Hint) {
	b.m = b.m.Set(p, h)
}

func (b *tableBuilder) table() Table {
	if b.m.Len() == 0 {
		return Table{}
	}
	return Table{m: b.m}
}
