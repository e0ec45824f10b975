// ABOUTME: Process command converts raw HTML filings into chunked documents
// ABOUTME: Extracts named sections and writes processed_documents.json
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finrag/finrag/internal/corpus"
	"github.com/finrag/finrag/internal/sec"
)

// NewProcessCmd creates the process command
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process downloaded HTML filings into chunked documents",
		Long: `Read raw HTML filings from <data-dir>/raw_filings, strip the markup,
locate the standard 10-K sections, and split the text into overlapping
word-window chunks ready for indexing.

Filenames must follow the COMPANY_YEAR pattern (e.g. MSFT_2023.html).
Filings fetched through 'finrag fetch' skip this step; the index reads
their extracted sections directly.`,
		RunE: runProcess,
	}
	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing data directories: %w", err)
	}

	docs, err := sec.NewProcessor(cfg, log).ProcessAll()
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No HTML filings found to process.")
		return nil
	}

	total := 0
	for _, doc := range docs {
		total += doc.TotalChunks
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d documents into %d chunks (%s)\n",
		len(docs), total, filepath.Join(cfg.ProcessedDir(), corpus.ProcessedFile))
	return nil
}
