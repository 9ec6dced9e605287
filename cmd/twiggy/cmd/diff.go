package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

var diffOpts = options.NewDiff()

var diffCmd = &cobra.Command{
	Use:   "diff <old-binary> <new-binary> [item...]",
	Short: "Compare the item sizes of two builds",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		started := time.Now()
		diffOpts.Items = args[2:]

		oldGraph, err := loadGraph(ctx, args[0])
		if err != nil {
			return err
		}
		newGraph, err := loadGraph(ctx, args[1])
		if err != nil {
			return err
		}

		ctx, span := telemetryStart(ctx, "diff")
		result, err := analyze.Diff(oldGraph, newGraph, diffOpts)
		span.End()
		if err != nil {
			return err
		}

		return emitResult(ctx, "diff", args[1], newGraph, result, started)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().Uint32VarP(&diffOpts.MaxItems, "max-items", "n", diffOpts.MaxItems,
		"Maximum number of changed items to display")
	diffCmd.Flags().BoolVarP(&diffOpts.AllItems, "all", "a", false,
		"Display all changed items")
	diffCmd.Flags().BoolVar(&diffOpts.UsingRegexps, "regex", false,
		"Treat item names as regular expressions")
}
