// Package cmd implements the twiggy command tree.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustwasm/twiggy-sub000/pkg/config"
	"github.com/rustwasm/twiggy-sub000/pkg/telemetry"
	"github.com/rustwasm/twiggy-sub000/pkg/utils"
)

var (
	// Global flags.
	verbose    bool
	formatName string
	outputPath string
	configPath string
	saveReport bool

	logger            utils.Logger
	cfg               *config.Config
	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "twiggy",
	Short: "A code size profiler for binaries",
	Long: `twiggy is a code size profiler for WebAssembly and ELF binaries.

It builds a call and reference graph of every addressable entity in the
binary and answers questions like: why is this function in the binary at
all, what is the retained size of this item, and how much bloat do
monomorphizations of generic functions cost.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stderr)
		utils.SetGlobalLogger(logger)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if !verbose {
			logger.(*utils.DefaultLogger).SetLevel(utils.ParseLogLevel(cfg.Log.Level))
		}

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("telemetry init failed: %v", err)
			shutdown = func(context.Context) error { return nil }
		}
		telemetryShutdown = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(cmd.Context())
		}
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// BinName returns the binary name the tool was invoked as.
func BinName() string {
	return filepath.Base(os.Args[0])
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	if logger == nil {
		return utils.GetGlobalLogger()
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&formatName, "format", "f", "text", "Output format: text, json, or csv")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "-", "Output destination, - for stdout")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&saveReport, "save-report", false, "Write a machine-readable report next to the input")

	binName := BinName()
	rootCmd.Example = `  # What are the biggest items in the binary?
  ` + binName + ` top -n 20 ./app.wasm

  # Why is this function in the binary at all?
  ` + binName + ` paths ./app.wasm 'alloc::vec::Vec<T>::push'

  # What would removing this item save?
  ` + binName + ` dominators ./app.wasm

  # Compare two builds
  ` + binName + ` diff ./app.old.wasm ./app.new.wasm`
}
