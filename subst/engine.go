package subst

import (
	"log/slog"
	"sync"

	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/internal/log"
)

// Engine builds substitution tables for parameterized template
// instantiations. Results are memoized for the life of the process: the
// computation is a pure function of (hint, parameter tuple, argument
// tuple), keyed positionally, so the cache is append-only and never
// evicted.
type Engine struct {
	mu     sync.Mutex
	cache  map[cacheKey]cacheEntry
	logger *slog.Logger

	// boundChecks may be disabled by configuration; engines are cheap and
	// per-configuration, so the cache stays a pure function of its inputs
	boundChecks bool
}

type cacheKey struct {
	hint   uint64
	params uint64
	args   uint64
}

type cacheEntry struct {
	table Table
	err   error
}

func NewEngine(boundChecks bool) *Engine {
	return &Engine{
		cache:       make(map[cacheKey]cacheEntry),
		boundChecks: boundChecks,
		logger:      slog.New(log.DefaultLogger.Handler()).With("section", "subst"),
	}
}

// Resolve reduces a subscripted hint to its substitution table.
//
// The zero Table (with a nil error) signals that no table is needed: the
// origin declares no parameters, the origin is not a template at all, or
// the argument tuple is pointwise identical to the parameter tuple.
func (e *Engine) Resolve(h *hint.Subscripted) (Table, error) {
	tmpl, ok := h.Origin().(*hint.Template)
	if !ok {
		// deferred origin (e.g. a forward-reference proxy): nothing to map yet
		return Table{}, nil
	}
	params := tmpl.Params()
	args := h.Args()

	if len(params) == 0 || identical(params, args) {
		return Table{}, nil
	}

	key := cacheKey{hint: h.Hash(), params: hashParams(params), args: hashHints(args)}
	e.mu.Lock()
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		return cached.table, cached.err
	}

	table, err := e.resolve(h, params, args)
	if err == nil {
		e.logger.Debug("built substitution table",
			"hint", h.String(), "table", table.String())
	}

	e.mu.Lock()
	e.cache[key] = cacheEntry{table: table, err: err}
	e.mu.Unlock()
	return table, err
}

func (e *Engine) resolve(h *hint.Subscripted, params []*hint.TypeParam, args []hint.Hint) (Table, error) {
	if len(args) == 0 {
		return Table{}, herr.New(herr.NewMalformedHint{
			Hint: h, NumParams: len(params), NumArgs: 0,
		})
	}
	if len(args) > len(params) && !params[len(params)-1].Variadic() {
		return Table{}, herr.New(herr.NewMalformedHint{
			Hint: h, NumParams: len(params), NumArgs: len(args),
		})
	}

	builder := newTableBuilder()
	for i, param := range params {
		if i >= len(args) {
			// partial instantiation: trailing parameters stay unbound
			break
		}
		if param.Variadic() {
			// a variadic parameter absorbs the whole trailing run; it takes
			// part in arity accounting only and is never entered in the table
			break
		}
		arg := args[i]
		// identity mappings are meaningless and elided
		if arg == hint.Hint(param) {
			continue
		}
		if err := e.checkBound(h, param, arg); err != nil {
			return Table{}, err
		}
		builder.put(param, arg)
	}
	return builder.table(), nil
}

// checkBound enforces a parameter's bound when both the bound and the
// argument are plain checkable types. Compound bounds and compound
// arguments are out of this engine's jurisdiction and skipped.
func (e *Engine) checkBound(h *hint.Subscripted, param *hint.TypeParam, arg hint.Hint) error {
	if !e.boundChecks {
		return nil
	}
	bound, ok := param.Bound().(*hint.Type)
	if !ok {
		return nil
	}
	argType, ok := arg.(*hint.Type)
	if !ok {
		return nil
	}
	if !argType.SubtypeOf(bound) {
		return herr.New(herr.NewBoundViolation{
			Hint: h, Param: param, Bound: bound, Culprit: argType,
		})
	}
	return nil
}

func identical(params []*hint.TypeParam, args []hint.Hint) bool {
	if len(params) != len(args) {
		return false
	}
	for i, p := range params {
		if args[i] != hint.Hint(p) {
			return false
		}
	}
	return true
}

func hashParams(params []*hint.TypeParam) uint64 {
	var hash uint64 = 2166136261
	for _, p := range params {
		hash = hash*16777619 ^ p.Hash()
	}
	return hash
}

func hashHints(hints []hint.Hint) uint64 {
	var hash uint64 = 2166136261
	for _, h := range hints {
		hash = hash*16777619 ^ h.Hash()
	}
	return hash
}
