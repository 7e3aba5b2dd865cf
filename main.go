package main

import (
	"github.com/cottand/sanehint/cmd"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "sanehint [subcommand]",
	Short:        "sanehint\n normalize raw type hint expressions into sane checkable models",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.SanifyCmd)
	rootCmd.AddCommand(cmd.ScopeCmd)
}
