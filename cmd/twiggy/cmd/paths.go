package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var pathsOpts = options.NewPaths()

var pathsCmd = &cobra.Command{
	Use:   "paths <binary> [function...]",
	Short: "Find the paths that keep an item in the binary",
	Long: `Find the retaining paths of items: the chains of references that
keep them in the binary. By default paths are traced backwards from each
item toward the graph's roots; with --descending they are traced forwards
from the roots.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pathsOpts.Functions = args[1:]
		return runAnalysis(cmd.Context(), "paths", args[0], func(g *ir.Graph) (analyze.Emit, error) {
			return analyze.Paths(g, pathsOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)

	pathsCmd.Flags().Uint32VarP(&pathsOpts.MaxDepth, "max-depth", "d", pathsOpts.MaxDepth,
		"Maximum depth of retaining paths")
	pathsCmd.Flags().Uint32VarP(&pathsOpts.MaxPaths, "max-paths", "r", pathsOpts.MaxPaths,
		"Maximum number of paths to explore at any level")
	pathsCmd.Flags().BoolVar(&pathsOpts.Descending, "descending", false,
		"Trace paths from the roots toward the items")
	pathsCmd.Flags().BoolVar(&pathsOpts.UsingRegexps, "regex", false,
		"Treat function names as regular expressions")
}
