// ABOUTME: Fetch command downloads 10-K filing sections via SEC-API.io
// ABOUTME: Saves the extracted sections as JSON for processing and indexing
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finrag/finrag/internal/corpus"
	"github.com/finrag/finrag/internal/sec"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download filing sections from SEC-API.io",
		Long: `Download 10-K filing sections for every configured company and year
using the SEC-API.io query and extractor endpoints.

Requires SEC_API_KEY in the environment or a .env file. Results are
written to <data-dir>/raw_filings/` + corpus.APIDataFile + `.`,
		RunE: runFetch,
		Example: `  # Download filings for all configured companies and years
  finrag fetch`,
	}
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing data directories: %w", err)
	}

	client, err := sec.NewClient(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := client.VerifyAccess(ctx); err != nil {
		return fmt.Errorf("verifying SEC-API access: %w", err)
	}

	filings, err := client.DownloadAll(ctx)
	if err != nil {
		return err
	}
	if len(filings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No filings downloaded.")
		return nil
	}

	path := filepath.Join(cfg.RawFilingsDir(), corpus.APIDataFile)
	if err := corpus.SaveJSON(path, filings); err != nil {
		return fmt.Errorf("saving filing data: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d filings to %s\n", len(filings), path)
	return nil
}
