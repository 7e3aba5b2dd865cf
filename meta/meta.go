// Package meta describes annotated callables and the configuration knobs
// shared by every normalization pass.
package meta

import (
	"fmt"
	"log/slog"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/internal/log"
)

// ArgKind classifies a callable parameter slot
type ArgKind int

const (
	ArgPositional ArgKind = iota
	ArgKeyword
	ArgVariadicPositional
	ArgVariadicKeyword
)

func (k ArgKind) String() string {
	switch k {
	case ArgKeyword:
		return "keyword"
	case ArgVariadicPositional:
		return "variadic positional"
	case ArgVariadicKeyword:
		return "variadic keyword"
	default:
		return "positional"
	}
}

// SlotReturn is the reserved annotation slot naming a callable's return
const SlotReturn = "return"

// Callable is the per-function metadata a normalization pass consumes:
// the raw annotations by slot, the declaring scope's name and namespaces,
// and enough shape information to special-case generators.
//
// Annotations is mutated in place by coercions that survive the pass, so
// later passes over the same callable see the already-normalized form.
type Callable struct {
	Name      string
	ScopeName string

	Annotations map[string]hint.Hint
	ArgKinds    map[string]ArgKind

	IsGenerator bool

	// ClsStack is the lexical chain of enclosing classes, innermost last
	ClsStack []*hint.Type

	Locals  map[string]any
	Globals map[string]any
}

// Label renders the human-readable site prefix for diagnostics about slot,
// e.g. `function "mod.f" parameter "x"`.
func (c *Callable) Label(slot string) string {
	qualified := c.Name
	if c.ScopeName != "" {
		qualified = c.ScopeName + "." + c.Name
	}
	if slot == SlotReturn {
		return fmt.Sprintf("function %q return", qualified)
	}
	name := slot
	switch c.ArgKinds[slot] {
	case ArgVariadicPositional:
		name = "*" + slot
	case ArgVariadicKeyword:
		name = "**" + slot
	}
	return fmt.Sprintf("function %q parameter %q", qualified, name)
}

// Namespace merges the callable's globals and locals into the single map
// the evaluation environment is seeded with, locals shadowing globals.
func (c *Callable) Namespace() map[string]any {
	ns := make(map[string]any, len(c.Globals)+len(c.Locals))
	for k, v := range c.Globals {
		ns[k] = v
	}
	for k, v := range c.Locals {
		ns[k] = v
	}
	return ns
}

// Config carries the cross-cutting settings threaded through a sanitizer
type Config struct {
	// BoundChecks enables eager parameter-bound validation during
	// template-argument resolution
	BoundChecks bool

	Logger *slog.Logger

	// Registry owns forward-reference proxies for this configuration;
	// nil selects the process-wide default
	Registry *forward.Registry
}

func DefaultConfig() Config {
	return Config{
		BoundChecks: true,
		Logger:      slog.New(log.DefaultLogger.Handler()),
		Registry:    forward.Default(),
	}
}
