package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var dominatorsOpts = options.NewDominators()

var dominatorsCmd = &cobra.Command{
	Use:   "dominators <binary> [item...]",
	Short: "Display the dominator tree of the binary's item graph",
	Long: `Display the dominator tree of the binary's item graph.

An item's retained size is its own size plus the size of everything only it
keeps alive. Without arguments the whole tree is shown from the synthetic
root; with item names, the subtrees under those items.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dominatorsOpts.Items = args[1:]
		return runAnalysis(cmd.Context(), "dominators", args[0], func(g *ir.Graph) (analyze.Emit, error) {
			return analyze.Dominators(g, dominatorsOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(dominatorsCmd)

	dominatorsCmd.Flags().Uint32VarP(&dominatorsOpts.MaxDepth, "max-depth", "d", dominatorsOpts.MaxDepth,
		"Maximum depth to print the dominator tree")
	dominatorsCmd.Flags().Uint32VarP(&dominatorsOpts.MaxRows, "max-rows", "r", dominatorsOpts.MaxRows,
		"Maximum number of rows to print")
	dominatorsCmd.Flags().BoolVar(&dominatorsOpts.UsingRegexps, "regex", false,
		"Treat item names as regular expressions")
}
