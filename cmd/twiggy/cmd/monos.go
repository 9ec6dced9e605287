package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var monosOpts = options.NewMonos()

var monosCmd = &cobra.Command{
	Use:   "monos <binary> [generic...]",
	Short: "Estimate the bloat cost of monomorphized generic functions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		monosOpts.Functions = args[1:]
		return runAnalysis(cmd.Context(), "monos", args[0], func(g *ir.Graph) (analyze.Emit, error) {
			return analyze.Monos(g, monosOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(monosCmd)

	monosCmd.Flags().BoolVar(&monosOpts.OnlyGenerics, "only-generics", false,
		"Hide the individual monomorphizations and only show the generics")
	monosCmd.Flags().Uint32VarP(&monosOpts.MaxGenerics, "max-generics", "m", monosOpts.MaxGenerics,
		"Maximum number of generics to display")
	monosCmd.Flags().Uint32Var(&monosOpts.MaxMonos, "max-monos", monosOpts.MaxMonos,
		"Maximum number of monomorphizations to display per generic")
	monosCmd.Flags().BoolVar(&monosOpts.AllGenerics, "all-generics", false,
		"Display all generics")
	monosCmd.Flags().BoolVar(&monosOpts.AllMonos, "all-monos", false,
		"Display all monomorphizations of every displayed generic")
	monosCmd.Flags().BoolVarP(&monosOpts.AllGenericsAndMonos, "all", "a", false,
		"Display all generics and all of their monomorphizations")
	monosCmd.Flags().BoolVar(&monosOpts.UsingRegexps, "regex", false,
		"Treat generic names as regular expressions")
}
