package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "filepipe",
	Short: "A batch file-transformation pipeline tool",
	Long: `filepipe runs a pipeline of file operations (filter, rename, move, delete)
over the entries of a directory. Pipelines are defined in a YAML or TOML file,
can be previewed without touching the filesystem, and report per-step results.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newValidateCommand())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("filepipe version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
