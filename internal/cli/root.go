// Package cli wires the librarium command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "librarium",
	Short: "Trust-gated document gateway for MCP clients",
	Long: "Librarium serves curated document corpora to MCP clients. Every read " +
		"passes a trust-based access policy and leaves an append-only audit record.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the librarium version",
	Run: func(*cobra.Command, []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(v string) {
	version = v
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
