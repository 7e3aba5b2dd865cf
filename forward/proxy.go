package forward

import (
	"fmt"
	"hash/fnv"
	"iter"
	"strings"
	"sync"

	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
)

// Kind distinguishes the two proxy flavors
type Kind int

const (
	// Subbable proxies may later be instantiated with template arguments,
	// for references that might denote a generic
	Subbable Kind = iota
	// Sealed proxies may not be subscripted
	Sealed
)

func (k Kind) String() string {
	if k == Sealed {
		return "sealed"
	}
	return "subbable"
}

// Proxy is a nominal, uninstantiable placeholder hint standing in for a
// name not yet defined in its declaring scope. Two proxies with the same
// (scope name, name, kind) are the same object: the registry memoizes them
// globally, because downstream caches key on hint identity.
//
// A proxy participates in exactly one externally visible protocol,
// Satisfies, which resolves the proxied name lazily on first use.
type Proxy struct {
	name      string
	scopeName string
	kind      Kind
	registry  *Registry

	resolveOnce sync.Once
	resolved    hint.Hint
	resolveErr  error
}

var _ hint.Hint = (*Proxy)(nil)

func (p *Proxy) Name() string      { return p.name }
func (p *Proxy) ScopeName() string { return p.scopeName }
func (p *Proxy) Kind() Kind        { return p.kind }

func (p *Proxy) String() string {
	return fmt.Sprintf("<forward %q in %q>", p.name, p.scopeName)
}

func (p *Proxy) Hash() uint64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(p.scopeName))
	_, _ = hasher.Write([]byte{'.'})
	_, _ = hasher.Write([]byte(p.name))
	return hasher.Sum64()*31 + uint64(p.kind)
}

func (p *Proxy) Children() iter.Seq[hint.Hint] {
	return func(_ func(hint.Hint) bool) {}
}

// Subscript instantiates a subbable proxy with template arguments,
// deferring arity and bound validation until the proxy resolves
func (p *Proxy) Subscript(args []hint.Hint) (hint.Hint, error) {
	if p.kind != Subbable {
		return nil, herr.New(herr.NewUnsupportedHint{Value: p})
	}
	prov := hint.Provenance{Site: p.scopeName, Desc: "subscripted forward reference"}
	return hint.NewSubscripted(p, args, prov), nil
}

// Resolved returns the hint p stands in for, resolving it on first call.
// Resolution looks the proxied name up relative to the declaring scope's
// module, recursing through intervening dotted qualifiers. The outcome,
// success or failure, is fixed for the proxy's lifetime.
func (p *Proxy) Resolved() (hint.Hint, error) {
	p.resolveOnce.Do(func() {
		p.resolved, p.resolveErr = p.resolve()
	})
	return p.resolved, p.resolveErr
}

func (p *Proxy) resolve() (hint.Hint, error) {
	index := p.registry.Index()
	segs := strings.Split(p.name, ".")

	// an absolute dotted reference names its own module outright
	if len(segs) > 1 {
		moduleName := strings.Join(segs[:len(segs)-1], ".")
		if ns, ok := index.LookupModule(moduleName); ok {
			return coerceResolved(p, ns, segs[len(segs)-1:])
		}
	}

	// otherwise resolve relative to the declaring scope's module
	ns, ok := index.LookupModule(p.scopeName)
	if !ok {
		return nil, herr.New(herr.NewNotFound{Scope: p.scopeName, Name: p.name})
	}
	return coerceResolved(p, ns, segs)
}

func coerceResolved(p *Proxy, ns Module, segs []string) (hint.Hint, error) {
	var cur any = ns
	for _, seg := range segs {
		m, ok := cur.(Module)
		if !ok {
			return nil, herr.New(herr.NewNotFound{Scope: p.scopeName, Name: p.name})
		}
		cur, ok = m[seg]
		if !ok {
			return nil, herr.New(herr.NewNotFound{Scope: p.scopeName, Name: p.name})
		}
	}
	h, ok := cur.(hint.Hint)
	if !ok {
		return nil, herr.New(herr.NewUnsupportedHint{Value: cur})
	}
	return h, nil
}

// Satisfies reports whether value satisfies the proxied hint. This is the
// type-relationship query that triggers resolution on first use.
func (p *Proxy) Satisfies(value any) (bool, error) {
	resolved, err := p.Resolved()
	if err != nil {
		return false, err
	}
	switch h := resolved.(type) {
	case hint.Checkable:
		return h.Accepts(value), nil
	case *Proxy:
		if h == p {
			return false, herr.New(herr.NewUnsupportedHint{Value: p})
		}
		return h.Satisfies(value)
	default:
		return false, herr.New(herr.NewUnsupportedHint{Value: resolved})
	}
}
