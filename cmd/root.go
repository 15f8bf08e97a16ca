// Package cmd implements the CLI commands for FlareConv using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flareconv",
	Short: "FlareConv converts Flare HTML exports into documentation markup",
	Long: `FlareConv converts legacy Flare HTML exports (snippets, variables,
conditions, cross-references) into AsciiDoc, Markdown, or help-desk HTML,
and lints the emitted text for structural defects.

Usage:
  flareconv convert <path> [flags]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
