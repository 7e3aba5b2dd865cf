package forward

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
)

// Resolve destringifies a symbolic hint expression against scope. It is
// the wrapper around the runtime-evaluation primitive: hint expressions
// are valid Go expression syntax ("pair[int, str]", "mod.T", "int | str"),
// so the stdlib expression parser accepts them directly and the resulting
// tree is walked against the single pre-merged namespace.
//
// Every identifier lookup passes TrustResolver: a name missing from the
// scope becomes a subscriptable proxy rather than a failure.
func Resolve(expr string, scope *Scope) (hint.Hint, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, herr.New(herr.NewBadIdentifier{
			Name: expr, What: "forward reference expression",
		})
	}
	v, err := eval(node, scope)
	if err != nil {
		return nil, err
	}
	return coerceHint(v)
}

func eval(node ast.Expr, scope *Scope) (any, error) {
	switch e := node.(type) {
	case *ast.ParenExpr:
		return eval(e.X, scope)

	case *ast.Ident:
		return scope.Lookup(e.Name, TrustResolver)

	case *ast.BasicLit:
		// a nested string literal is itself a symbolic reference
		if e.Kind != token.STRING {
			return nil, herr.New(herr.NewUnsupportedHint{Value: e.Value})
		}
		inner, err := strconv.Unquote(e.Value)
		if err != nil {
			return nil, herr.New(herr.NewBadIdentifier{
				Name: e.Value, What: "forward reference expression",
			})
		}
		return Resolve(inner, scope)

	case *ast.SelectorExpr:
		return evalSelector(e, scope)

	case *ast.IndexExpr:
		return evalSubscript(e.X, []ast.Expr{e.Index}, scope)

	case *ast.IndexListExpr:
		return evalSubscript(e.X, e.Indices, scope)

	case *ast.BinaryExpr:
		// the modern union form reads as a Go bitwise-or chain
		if e.Op != token.OR {
			return nil, herr.New(herr.NewUnsupportedHint{Value: e.Op.String()})
		}
		lhs, err := evalHint(e.X, scope)
		if err != nil {
			return nil, err
		}
		rhs, err := evalHint(e.Y, scope)
		if err != nil {
			return nil, err
		}
		prov := hint.Provenance{Site: scope.Name(), Desc: "union expression"}
		return hint.NewUnion([]hint.Hint{lhs, rhs}, prov), nil

	default:
		return nil, herr.New(herr.NewUnsupportedHint{Value: node})
	}
}

func evalSelector(e *ast.SelectorExpr, scope *Scope) (any, error) {
	base, err := eval(e.X, scope)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case Module:
		// attribute access on a seeded namespace does not fabricate
		v, ok := b[e.Sel.Name]
		if !ok {
			return nil, herr.New(herr.NewNotFound{Scope: scope.Name(), Name: e.Sel.Name})
		}
		return v, nil
	case *Proxy:
		// an attribute of an undefined name is itself undefined: extend
		// the proxied dotted path
		return scope.registry.Make(Subbable, b.Name()+"."+e.Sel.Name, b.ScopeName())
	default:
		return nil, herr.New(herr.NewNotFound{Scope: scope.Name(), Name: e.Sel.Name})
	}
}

func evalSubscript(x ast.Expr, indices []ast.Expr, scope *Scope) (any, error) {
	base, err := eval(x, scope)
	if err != nil {
		return nil, err
	}
	args := make([]hint.Hint, len(indices))
	for i, idx := range indices {
		args[i], err = evalHint(idx, scope)
		if err != nil {
			return nil, err
		}
	}
	switch b := base.(type) {
	case *hint.Template:
		prov := hint.Provenance{Site: scope.Name(), Desc: "subscript expression"}
		return hint.NewSubscripted(b, args, prov), nil
	case *Proxy:
		return b.Subscript(args)
	default:
		return nil, herr.New(herr.NewUnsupportedHint{Value: base})
	}
}

func evalHint(node ast.Expr, scope *Scope) (hint.Hint, error) {
	v, err := eval(node, scope)
	if err != nil {
		return nil, err
	}
	return coerceHint(v)
}

func coerceHint(v any) (hint.Hint, error) {
	if h, ok := v.(hint.Hint); ok {
		return h, nil
	}
	return nil, herr.New(herr.NewUnsupportedHint{Value: v})
}
