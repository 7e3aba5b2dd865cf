// Package sane holds the value type threading through the whole pipeline:
// a reduced hint together with its accumulated substitution table and
// ancestry metadata. Models are created per reduction step, owned by the
// call that produced them, and never cached across decorations.
package sane

import (
	"fmt"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/subst"
	"github.com/hashicorp/go-set/v3"
)

// Hint is a sanified hint model. The zero value is not meaningful;
// construct roots with New and children with Child.
type Hint struct {
	// Hint is the reduced hint itself
	Hint hint.Hint
	// Table maps the type parameters visible at this node to the argument
	// hints they were instantiated with, including every ancestor's entries
	Table subst.Table
	// recursed guards against reduction cycles through forward references:
	// it records the hashes of hints already visited on this ancestry path
	recursed *set.Set[uint64]
	// Scope is the evaluation environment symbolic references resolve
	// against. After root reduction the sanitizer swaps the full scope for
	// one rebuilt from ScopeMin, so lingering models do not pin the
	// declaring namespace.
	Scope *forward.Scope
	// ScopeMin is the minified forward scope retained for the code
	// generator once root reduction finishes; nil until then
	ScopeMin map[string]any
}

func New(h hint.Hint) Hint {
	return Hint{Hint: h}
}

// Child derives the model for a child hint reduced under s. Its table is
// the left-biased union of s's table overridden by childTable: the child's
// entries win on key collision. Ancestry metadata cascades down.
func (s Hint) Child(h hint.Hint, childTable subst.Table) Hint {
	return Hint{
		Hint:     h,
		Table:    s.Table.Merge(childTable),
		recursed: s.recursed,
		Scope:    s.Scope,
		ScopeMin: s.ScopeMin,
	}
}

// WithRecursed marks hash as visited on this ancestry path. The guard set
// is copied, so sibling subtrees do not observe each other's visits.
func (s Hint) WithRecursed(hash uint64) Hint {
	guarded := set.New[uint64](1)
	if s.recursed != nil {
		guarded = s.recursed.Copy()
	}
	guarded.Insert(hash)
	s.recursed = guarded
	return s
}

func (s Hint) IsRecursed(hash uint64) bool {
	return s.recursed != nil && s.recursed.Contains(hash)
}

// Ignorable reports whether s reduced to the canonical ignorable marker
func Ignorable(s Hint) bool {
	return s.Hint == hint.Any
}

func (s Hint) String() string {
	if s.Table.IsZero() {
		return fmt.Sprintf("Sane(%v)", s.Hint)
	}
	return fmt.Sprintf("Sane(%v, table=%v)", s.Hint, s.Table)
}
