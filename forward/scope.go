package forward

import (
	"maps"

	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/util"
)

// Trust gates fabrication on scope misses. Instead of inspecting the call
// stack to decide whether the caller is engine-internal, the only two
// legitimate fabricating callers (the reducer and the expression resolver)
// pass TrustResolver explicitly; everyone else gets the standard lookup
// failure on a miss.
type Trust int

const (
	TrustNone Trust = iota
	TrustResolver
)

// Scope is the composite namespace used as the evaluation environment when
// destringifying symbolic references: built-in bindings plus a snapshot of
// the declaring scope's locals and globals, pre-merged because the
// evaluation primitive takes a single namespace argument.
//
// A Scope is created once per annotated site, is not safe for concurrent
// use, and is discarded after Minify.
type Scope struct {
	name     string
	entries  map[string]any
	resolved util.MSet[string]
	registry *Registry

	// codeUnit links back to the declaring callable's defining code unit;
	// used only for provenance, never for correctness
	codeUnit any
}

type ScopeOption func(*Scope)

// WithCodeUnit records the declaring code unit for proxy provenance
func WithCodeUnit(unit any) ScopeOption {
	return func(s *Scope) { s.codeUnit = unit }
}

// NewScope validates name as a dotted identifier and seeds the scope with
// the built-in universe overlaid with seed (the declaring scope's
// locals and globals, pre-merged by the caller).
func NewScope(name string, seed map[string]any, registry *Registry, opts ...ScopeOption) (*Scope, error) {
	if err := checkIdentifier(name, "forward scope name"); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = Default()
	}
	entries := hint.Universe()
	maps.Copy(entries, seed)
	s := &Scope{
		name:     name,
		entries:  entries,
		resolved: util.NewEmptySet[string](),
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scope) Name() string { return s.name }

// CodeUnit returns the declaring code unit link, which may be nil
func (s *Scope) CodeUnit() any { return s.codeUnit }

// Lookup returns the binding for name, recording it as resolved. On a
// miss, a trusted caller receives a freshly fabricated subscriptable proxy
// (cached in this scope, so repeated lookups do not re-fabricate); any
// other caller receives the standard lookup failure, since an untrusted
// miss is usually third-party code probing for attribute existence.
func (s *Scope) Lookup(name string, trust Trust) (any, error) {
	if v, ok := s.entries[name]; ok {
		s.resolved.Add(name)
		return v, nil
	}
	if trust != TrustResolver {
		return nil, herr.New(herr.NewNotFound{Scope: s.name, Name: name})
	}
	if err := checkIdentifier(name, "forward reference"); err != nil {
		return nil, err
	}
	p, err := s.registry.Make(Subbable, name, s.name)
	if err != nil {
		return nil, err
	}
	s.entries[name] = p
	s.resolved.Add(name)
	return p, nil
}

// Proxy fabricates (or returns the memoized) subscriptable proxy for name
// relative to this scope, without consulting or mutating the entries. Used
// to break reference cycles during reduction.
func (s *Scope) Proxy(name string) (*Proxy, error) {
	return s.registry.Make(Subbable, name, s.name)
}

// Minify returns a plain map holding exactly the entries that were looked
// up, mapped to the same values originally returned. This is the artifact
// retained long-term; the full scope pins an entire enclosing namespace
// and should be discarded after minification.
func (s *Scope) Minify() map[string]any {
	minified := make(map[string]any, s.resolved.Len())
	for name := range s.resolved.All() {
		minified[name] = s.entries[name]
	}
	return minified
}

// Clear empties the scope, drops the code-unit link and forgets which
// names were resolved
func (s *Scope) Clear() {
	s.entries = make(map[string]any)
	s.resolved = util.NewEmptySet[string]()
	s.codeUnit = nil
}
