package cmd

import (
	"fmt"
	"log/slog"

	"github.com/cottand/sanehint/forward"
	"github.com/cottand/sanehint/hint"
	"github.com/cottand/sanehint/internal/log"
	"github.com/cottand/sanehint/meta"
	"github.com/cottand/sanehint/sanify"
	"github.com/spf13/cobra"
)

var ScopeCmd = &cobra.Command{
	Use:          "scope \"hint expression\"",
	Short:        "Show the minified scope and fabricated proxies for an expression",
	RunE:         runScope,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var scopeName *string

func init() {
	scopeName = ScopeCmd.Flags().StringP("scope", "s", "main", "scope name to resolve against")
}

func runScope(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.LevelError)

	registry := forward.NewRegistry(nil)
	cfg := meta.DefaultConfig()
	cfg.Registry = registry
	s := sanify.New(cfg)

	model, err := s.RootForValue(hint.Ref(args[0]), *scopeName, nil)
	if err != nil {
		return renderErr(err)
	}

	printScope(model.ScopeMin)
	for _, p := range registry.All() {
		fmt.Printf("proxy: %s (%s)\n", p, p.Kind())
	}
	return nil
}
