package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/internal/webui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve <binary>",
	Short: "Serve the binary's analyses as JSON over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		server := webui.NewServer(g, args[0], GetLogger())
		return server.ListenAndServe(fmt.Sprintf(":%d", servePort))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
}
