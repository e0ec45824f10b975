// ABOUTME: Root Cobra command wiring all subcommands and persistent flags
// ABOUTME: Execute is the single entry point called from main
package commands

import (
	"github.com/spf13/cobra"
)

var (
	quiet        bool
	outputFormat string
	verbose      bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finrag",
		Short: "Financial Q&A over SEC annual-report filings",
		Long: `finrag answers natural-language financial questions by searching a
semantic index of SEC 10-K filings and synthesizing answers with
cited sources.

Typical workflow:
  finrag fetch       # download filing sections via SEC-API.io
  finrag index       # build the embedding index (cached afterwards)
  finrag query "What was Microsoft's total revenue in 2023?"`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "Output format: json or text")

	cmd.AddCommand(
		NewQueryCmd(),
		NewIndexCmd(),
		NewFetchCmd(),
		NewProcessCmd(),
		NewStatsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
