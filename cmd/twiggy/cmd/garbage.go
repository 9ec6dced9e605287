package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var garbageOpts = options.NewGarbage()

var garbageCmd = &cobra.Command{
	Use:   "garbage <binary>",
	Short: "Find code and data that nothing references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context(), "garbage", args[0], func(g *ir.Graph) (analyze.Emit, error) {
			return analyze.Garbage(g, garbageOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(garbageCmd)

	garbageCmd.Flags().Uint32VarP(&garbageOpts.MaxItems, "max-items", "n", garbageOpts.MaxItems,
		"Maximum number of garbage items to display")
	garbageCmd.Flags().BoolVarP(&garbageOpts.AllItems, "all", "a", false,
		"Display all garbage items")
	garbageCmd.Flags().BoolVar(&garbageOpts.ShowDataSegments, "show-data-segments", false,
		"List each unreachable data segment instead of summarizing them")
}
