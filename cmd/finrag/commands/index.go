// ABOUTME: Index command builds the embedding index over processed filings
// ABOUTME: Reuses the cached snapshot unless --rebuild forces re-encoding
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildIndex bool

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the embedding index over the filing corpus",
		Long: `Encode every filing chunk with the configured embedding provider and
store the vectors in a cache snapshot. Later commands load the snapshot
instead of re-encoding, as long as the embedding model is unchanged.`,
		RunE: runIndex,
		Example: `  # Build (or load) the index
  finrag index

  # Discard the cache and re-encode everything
  finrag index --rebuild`,
	}

	cmd.Flags().BoolVar(&rebuildIndex, "rebuild", false, "Re-encode all chunks even if a valid cache exists")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing data directories: %w", err)
	}

	ix, err := buildIndex(cmd.Context(), cfg, log, rebuildIndex)
	if err != nil {
		return err
	}

	if ix.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No filing data found. Run 'finrag fetch' first.")
		return nil
	}

	stats := ix.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks across %d companies (%s)\n",
		stats.TotalChunks, len(stats.Companies), stats.EmbeddingModel)
	return nil
}
