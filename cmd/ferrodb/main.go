// Command ferrodb is the entry point for FerroDB: a serve subcommand that
// opens (or creates) a database directory and drops into an interactive
// SQL REPL, and a version subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ferrodb",
	Short: "FerroDB - a single-node, disk-backed relational storage engine",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the FerroDB version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("ferrodb", Version)
		return nil
	},
}
