package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var topOpts = options.NewTop()

var topCmd = &cobra.Command{
	Use:   "top <binary>",
	Short: "List the biggest items in the binary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context(), "top", args[0], func(g *ir.Graph) (analyze.Emit, error) {
			return analyze.Top(g, topOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(topCmd)

	topCmd.Flags().Uint32VarP(&topOpts.MaxItems, "max-items", "n", topOpts.MaxItems,
		"Maximum number of items to display")
	topCmd.Flags().BoolVar(&topOpts.Retained, "retained", false,
		"Sort items by retained size instead of shallow size")
	topCmd.Flags().BoolVar(&topOpts.RetainingPaths, "retaining-paths", false,
		"Display retaining paths for each item (reserved)")
}
