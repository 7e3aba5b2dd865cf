package forward

import (
	"log/slog"
	"sync"

	"github.com/cottand/sanehint/internal/log"
)

// Module is a named namespace of bindings, the unit a proxy resolves
// against. Values are hints, nested Modules, or arbitrary objects.
type Module map[string]any

// ModuleIndex maps fully-qualified module names to their namespaces.
// The registry consults it when a proxy is first asked to resolve.
type ModuleIndex interface {
	LookupModule(name string) (Module, bool)
}

// MapIndex is the trivial in-memory ModuleIndex
type MapIndex map[string]Module

func (m MapIndex) LookupModule(name string) (Module, bool) {
	mod, ok := m[name]
	return mod, ok
}

// Registry owns every live forward-reference proxy. It is an explicit
// object injected into scopes and configuration rather than ambient global
// state, so host-reload machinery can enumerate and invalidate proxies by
// holding the registry it created.
type Registry struct {
	mu      sync.Mutex
	proxies map[registryKey]*Proxy
	index   ModuleIndex
	logger  *slog.Logger
}

type registryKey struct {
	scope string
	name  string
	kind  Kind
}

func NewRegistry(index ModuleIndex) *Registry {
	if index == nil {
		index = MapIndex{}
	}
	return &Registry{
		proxies: make(map[registryKey]*Proxy),
		index:   index,
		logger:  slog.New(log.DefaultLogger.Handler()).With("section", "forward"),
	}
}

var defaultRegistry = NewRegistry(nil)

// Default returns the process-wide registry used when a configuration does
// not inject its own, mirroring how slog carries a default logger
func Default() *Registry { return defaultRegistry }

func (r *Registry) Index() ModuleIndex {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// SetIndex swaps the module index consulted by future resolutions.
// Proxies that already resolved keep their outcome.
func (r *Registry) SetIndex(index ModuleIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = index
}

// Make returns the proxy for (scopeName, name, kind), creating it on first
// request. Both names must be valid dotted identifiers; validation happens
// before any caching. Repeated requests with the same triple return the
// identical object.
func (r *Registry) Make(kind Kind, name, scopeName string) (*Proxy, error) {
	if err := checkIdentifier(name, "forward reference"); err != nil {
		return nil, err
	}
	if err := checkIdentifier(scopeName, "forward scope name"); err != nil {
		return nil, err
	}

	key := registryKey{scope: scopeName, name: name, kind: kind}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.proxies[key]; ok {
		return p, nil
	}
	p := &Proxy{name: name, scopeName: scopeName, kind: kind, registry: r}
	r.proxies[key] = p
	r.logger.Debug("fabricated forward reference proxy",
		"name", name, "scope", scopeName, "kind", kind.String())
	return p, nil
}

// All enumerates the live proxies, for host-reload invalidation
func (r *Registry) All() []*Proxy {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*Proxy, 0, len(r.proxies))
	for _, p := range r.proxies {
		all = append(all, p)
	}
	return all
}

// Clear drops every memoized proxy, for host environments that re-execute
// a module and need stale placeholders gone
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxies = make(map[registryKey]*Proxy)
}
