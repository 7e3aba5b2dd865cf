package cmd

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/herr"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/internal/log"
	"github.com/cottand/sanehint/meta"
	"github.com/cottand/sanehint/sanify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var SanifyCmd = &cobra.Command{
	Use:          "sanify \"hint expression\"",
	Short:        "Normalize a type hint expression into its sane model",
	RunE:         runSanify,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	sanifyBinds   *[]string
	sanifyScope   *string
	noBoundChecks *bool
	logLevel      *int
)

func init() {
	sanifyBinds = SanifyCmd.Flags().StringArrayP("bind", "b", nil, "extra scope binding, name=expression (repeatable)")
	sanifyScope = SanifyCmd.Flags().StringP("scope", "s", "main", "scope name to resolve against")
	noBoundChecks = SanifyCmd.Flags().Bool("no-bound-checks", false, "skip type parameter bound validation")
	logLevel = SanifyCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runSanify(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	bindings, err := parseBindings(*sanifyBinds)
	if err != nil {
		return err
	}

	cfg := meta.DefaultConfig()
	cfg.BoundChecks = !*noBoundChecks
	s := sanify.New(cfg)

	model, err := s.RootForValue(hint.Ref(args[0]), *sanifyScope, bindings)
	if err != nil {
		return renderErr(err)
	}

	fmt.Println(model.Hint.String())
	if !model.Table.IsZero() {
		fmt.Printf("table: %s\n", model.Table)
	}
	printScope(model.ScopeMin)
	return nil
}

// parseBindings resolves each name=expression pair against the builtin
// universe, so bindings may reference builtins and each other's names
// symbolically.
func parseBindings(binds []string) (map[string]any, error) {
	if len(binds) == 0 {
		return nil, nil
	}
	scope, err := forward.NewScope("bind", nil, forward.Default())
	if err != nil {
		return nil, err
	}
	bindings := make(map[string]any, len(binds))
	for _, b := range binds {
		name, expr, found := strings.Cut(b, "=")
		if !found {
			return nil, errors.Errorf("binding %q is not of the form name=expression", b)
		}
		h, err := forward.Resolve(expr, scope)
		if err != nil {
			return nil, errors.Wrapf(renderErr(err), "bad binding %q", b)
		}
		bindings[name] = h
	}
	return bindings, nil
}

func printScope(minified map[string]any) {
	if len(minified) == 0 {
		return
	}
	names := make([]string, 0, len(minified))
	for name := range minified {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("scope: %s = %v\n", name, minified[name])
	}
}

// renderErr formats this module's error kinds with their code; anything
// else passes through untouched
func renderErr(err error) error {
	if e, ok := err.(herr.Error); ok {
		return errors.New(herr.FormatWithCode(e))
	}
	return err
}
