// Package sanify normalizes raw annotation hints into sane models: the
// canonical reduced hint, its accumulated substitution table, and the
// minified forward scope the code generator keeps.
package sanify

import (
	"log/slog"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/internal/log"
	"github.com/cottand/sanehint/meta"
	"github.com/cottand/sanehint/sane"
	"github.com/cottand/sanehint/subst"
)

// Sanitizer drives hint normalization for one configuration. Safe for
// concurrent use: per-site state lives in the models it returns, never in
// the sanitizer itself.
type Sanitizer struct {
	cfg    meta.Config
	engine *subst.Engine
	logger *slog.Logger
}

func New(cfg meta.Config) *Sanitizer {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(log.DefaultLogger.Handler())
	}
	if cfg.Registry == nil {
		cfg.Registry = forward.Default()
	}
	return &Sanitizer{
		cfg:    cfg,
		engine: subst.NewEngine(cfg.BoundChecks),
		logger: cfg.Logger.With("section", "sanify"),
	}
}

// RootForFunc sanifies the annotation in fn's slot. Coercions that survive
// the pass (legacy tuple unions rewritten to the modern form) are written
// back into fn.Annotations, so re-decoration starts from the coerced form.
//
// For a generator callable's return slot the annotation must be a
// generator[Y, S, R] hint; the returned model describes R, the value a
// finished generator produces.
func (s *Sanitizer) RootForFunc(fn *meta.Callable, slot string) (sane.Hint, error) {
	prefix := fn.Label(slot) + " "

	raw, ok := fn.Annotations[slot]
	if !ok {
		return sane.Hint{}, herr.New(herr.NewBadCallable{
			Func: fn.Name, Slot: slot, Reason: "slot is not annotated",
		})
	}
	if tu, isTuple := raw.(*hint.TupleUnion); isTuple {
		raw = tu.Modern()
		fn.Annotations[slot] = raw
	}

	scope, err := forward.NewScope(fn.ScopeName, fn.Namespace(), s.cfg.Registry,
		forward.WithCodeUnit(fn))
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}

	root := sane.New(raw)
	root.Scope = scope
	model, err := s.reduce(root, raw)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}

	if slot == meta.SlotReturn && fn.IsGenerator {
		model, err = s.unwrapGenerator(fn, slot, model)
		if err != nil {
			return sane.Hint{}, herr.Reprefix(err, prefix)
		}
	}

	model, err = s.sealScope(model, fn.ScopeName, scope)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}
	s.logger.Debug("sanified root hint",
		"callable", fn.Name, "slot", slot,
		"hint", hint.Label(raw), "model", model.String())
	return model, nil
}

// RootForValue sanifies a standalone hint against scopeName, seeded with
// the caller-supplied bindings. This is the entry point for annotated
// variables and other non-callable sites.
func (s *Sanitizer) RootForValue(h hint.Hint, scopeName string, bindings map[string]any) (sane.Hint, error) {
	prefix := "in scope \"" + scopeName + "\": "

	if tu, isTuple := h.(*hint.TupleUnion); isTuple {
		h = tu.Modern()
	}
	scope, err := forward.NewScope(scopeName, bindings, s.cfg.Registry)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}

	root := sane.New(h)
	root.Scope = scope
	model, err := s.reduce(root, h)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}
	model, err = s.sealScope(model, scopeName, scope)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, prefix)
	}
	s.logger.Debug("sanified value hint", "scope", scopeName, "model", model.String())
	return model, nil
}

// Child sanifies a child hint in parent's context: parent's table entries
// are visible, and symbolic references resolve against parent's (by now
// minified) scope.
func (s *Sanitizer) Child(parent sane.Hint, h hint.Hint) (sane.Hint, error) {
	model, err := s.reduce(parent, h)
	if err != nil {
		return sane.Hint{}, herr.Reprefix(err, "child ")
	}
	return model, nil
}

// sealScope snapshots the resolved entries, rebuilds a small scope from
// the snapshot for later child reductions, and empties the full scope so
// the model does not pin the declaring namespace.
func (s *Sanitizer) sealScope(model sane.Hint, scopeName string, scope *forward.Scope) (sane.Hint, error) {
	model.ScopeMin = scope.Minify()
	retained, err := forward.NewScope(scopeName, model.ScopeMin, s.cfg.Registry)
	if err != nil {
		return sane.Hint{}, err
	}
	model.Scope = retained
	scope.Clear()
	return model, nil
}

func (s *Sanitizer) unwrapGenerator(fn *meta.Callable, slot string, model sane.Hint) (sane.Hint, error) {
	switch g := model.Hint.(type) {
	case *hint.Subscripted:
		if g.Origin() != hint.Hint(hint.Generator) {
			return sane.Hint{}, badGenerator(fn, slot)
		}
	case *hint.Template:
		if g != hint.Generator {
			return sane.Hint{}, badGenerator(fn, slot)
		}
	default:
		return sane.Hint{}, badGenerator(fn, slot)
	}
	// the model's table binds Y, S and R; reducing the R parameter under it
	// yields the hint a finished generator is checked against
	r := hint.Generator.Params()[2]
	return s.reduce(model, r)
}

func badGenerator(fn *meta.Callable, slot string) error {
	return herr.New(herr.NewBadCallable{
		Func: fn.Name, Slot: slot,
		Reason: "generator callable must be annotated with a generator[...] return hint",
	})
}

// reduce produces the sane model for h evaluated in ctx: ctx contributes
// the visible substitution table, the recursion guard and the forward
// scope. Reduction is shallow over subscripted hints (arguments keep their
// raw form, re-reduced on demand via Child) and deep over the forms that
// must disappear from sane models: legacy tuple unions, symbolic
// references and type parameters.
func (s *Sanitizer) reduce(ctx sane.Hint, h hint.Hint) (sane.Hint, error) {
	switch t := h.(type) {
	case *hint.TupleUnion:
		return s.reduce(ctx, t.Modern())

	case *hint.Subscripted:
		table, err := s.engine.Resolve(t)
		if err != nil {
			return sane.Hint{}, err
		}
		return ctx.Child(t, table), nil

	case hint.Ref:
		return s.reduceRef(ctx, t)

	case *hint.TypeParam:
		if arg, ok := ctx.Table.Get(t); ok {
			return s.reduce(ctx, arg)
		}
		if bound := t.Bound(); bound != nil {
			return s.reduce(ctx, bound)
		}
		// unbound and unmapped: no information left
		return ctx.Child(hint.Any, subst.Table{}), nil

	case *hint.Union:
		return s.reduceUnion(ctx, t)

	case *hint.Type, *hint.Template, *forward.Proxy:
		return ctx.Child(h, subst.Table{}), nil

	default:
		if h == hint.Any {
			return ctx.Child(hint.Any, subst.Table{}), nil
		}
		return sane.Hint{}, herr.New(herr.NewUnsupportedHint{Value: h})
	}
}

func (s *Sanitizer) reduceRef(ctx sane.Hint, ref hint.Ref) (sane.Hint, error) {
	if ctx.Scope == nil {
		return sane.Hint{}, herr.New(herr.NewNotFound{Scope: "", Name: ref.Name()})
	}
	if ctx.IsRecursed(ref.Hash()) {
		// a reference cycle: stand in a proxy so the model stays finite
		p, err := ctx.Scope.Proxy(ref.Name())
		if err != nil {
			return sane.Hint{}, err
		}
		return ctx.Child(p, subst.Table{}), nil
	}
	resolved, err := forward.Resolve(ref.Name(), ctx.Scope)
	if err != nil {
		return sane.Hint{}, err
	}
	return s.reduce(ctx.WithRecursed(ref.Hash()), resolved)
}

func (s *Sanitizer) reduceUnion(ctx sane.Hint, u *hint.Union) (sane.Hint, error) {
	members := u.Members()
	reduced := make([]hint.Hint, 0, len(members))
	for _, m := range members {
		mm, err := s.reduce(ctx, m)
		if err != nil {
			return sane.Hint{}, err
		}
		// an ignorable member absorbs the whole union
		if sane.Ignorable(mm) {
			return ctx.Child(hint.Any, subst.Table{}), nil
		}
		reduced = append(reduced, mm.Hint)
	}
	site := ""
	if ctx.Scope != nil {
		site = ctx.Scope.Name()
	}
	prov := hint.Provenance{Site: site, Desc: "reduced union"}
	return ctx.Child(hint.NewUnion(reduced, prov), subst.Table{}), nil
}
