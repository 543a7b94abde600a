package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput is the persistent --json flag, available to all subcommands
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fakerest",
	Short: "fakerest is a declarative HTTP mock server",
	Long: `fakerest serves canned HTTP responses from a declarative route table.
It speaks HTTP/1.1 over raw TCP and matches request paths byte for byte,
so what you declare is exactly what is served.

Configuration can be provided via flags, environment variables, or a
configuration file. By default, fakerest looks for fakerest.yaml in the
current directory and fakerest/config.yaml in your user config directory
(~/.config on Linux) for CLI defaults.`,
	// No Run function here means 'fakerest' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
