// ABOUTME: Stats command reports corpus and index composition
// ABOUTME: Shows chunk counts, companies, years, sections, and cache state
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and index statistics",
		Long: `Display what the embedding index currently covers: number of chunks,
companies, filing years, section names, the embedding model in use,
and whether a cache snapshot exists on disk.`,
		RunE: runStats,
	}
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ix, err := buildIndex(cmd.Context(), cfg, log, false)
	if err != nil {
		return err
	}

	stats := ix.Stats()

	if outputFormat == "text" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Chunks:    %d\n", stats.TotalChunks)
		fmt.Fprintf(out, "Companies: %s\n", strings.Join(stats.Companies, ", "))
		fmt.Fprintf(out, "Years:     %s\n", joinInts(stats.Years))
		fmt.Fprintf(out, "Sections:  %s\n", strings.Join(stats.Sections, ", "))
		fmt.Fprintf(out, "Model:     %s\n", stats.EmbeddingModel)
		fmt.Fprintf(out, "Cached:    %v\n", stats.CacheExists)
		return nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
