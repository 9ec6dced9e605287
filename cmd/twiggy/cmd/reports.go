package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/repository"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports [binary]",
	Short: "List persisted analysis reports",
	Long: `List analysis reports persisted to the configured database.
Reports are stored when report persistence is enabled in the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		binary := ""
		if len(args) > 0 {
			binary = args[0]
		}

		repo, err := repository.NewRepository(&cfg.Database)
		if err != nil {
			return err
		}
		if err := repo.Migrate(cmd.Context()); err != nil {
			return err
		}

		reports, err := repo.ListReports(cmd.Context(), binary, reportsLimit)
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stdout, "no reports stored")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(os.Stdout, "%s  %-10s  %-4s  %8d bytes  %5d items  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Analysis, r.Format, r.GraphSize, r.ItemCount, r.BinaryPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum number of reports to list")
}
