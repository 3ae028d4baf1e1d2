// mlcanvas runs tabular ML pipelines described in YAML.
//
// Usage:
//
//	mlcanvas run --pipeline=<file.yaml> [--data=<file.csv>] [--markdown] [--graph]
//	mlcanvas nodes [subtype]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avi3tal/mlcanvas/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
	markdown  bool
}

var rootCmd = &cobra.Command{
	Use:   "mlcanvas",
	Short: "Run reactive tabular ML pipelines",
	Long: "mlcanvas loads a pipeline of sources, preprocessors, models and sinks,\n" +
		"feeds it a CSV file and replays the apply, train and predict steps it lists.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		return logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	f.BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
