// ABOUTME: CLI command to answer a financial question over the filing corpus
// ABOUTME: Prints the structured response record; failures still yield a record
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/finrag/finrag/internal/models"
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a financial question",
		Long: `Answer a natural-language financial question using semantic search
over the indexed SEC filings.

Comparative and multi-year questions are decomposed into sub-queries
automatically and the answers synthesized with cited sources.

Examples:
  finrag query "What was Microsoft's total revenue in 2023?"
  finrag query "Which company had the highest operating margin in 2023?"
  finrag query "How did NVIDIA's revenue grow from 2022 to 2023?"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}
	cmd.Flags().IntVar(&queryTopK, "top-k", 0, "Override the number of chunks retrieved per sub-query")
	return cmd
}

var queryTopK int

func runQuery(cmd *cobra.Command, args []string) error {
	query := args[0]
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if queryTopK != 0 {
		if err := validatePositiveInt(queryTopK, "top-k"); err != nil {
			return err
		}
		cfg.RetrievalTopK = queryTopK
	}

	response := func() *models.Response {
		qa, _, err := buildAgent(cmd.Context(), cfg, log)
		if err != nil {
			// The query boundary always produces a response record, even
			// when the pipeline could not be assembled.
			log.Error("pipeline setup failed", "error", err)
			return &models.Response{
				Query:      query,
				Answer:     "An error occurred while processing the query.",
				Reasoning:  fmt.Sprintf("System error: %v", err),
				SubQueries: []string{query},
				Sources:    []models.SourceReference{},
				Timestamp:  time.Now(),
				Error:      err.Error(),
			}
		}
		return qa.AnswerQuery(cmd.Context(), query)
	}()

	if outputFormat == "text" {
		printResponseText(cmd, response)
		return nil
	}

	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

func printResponseText(cmd *cobra.Command, r *models.Response) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Query: %s\n\n", r.Query)
	fmt.Fprintf(out, "Answer:\n%s\n", r.Answer)
	if len(r.Sources) > 0 {
		fmt.Fprintf(out, "\nSources:\n")
		for _, s := range r.Sources {
			fmt.Fprintf(out, "  - %s %d (%s): %s\n", s.Company, s.Year, s.Section, truncate(s.Excerpt, 80))
		}
	}
	if !quiet {
		fmt.Fprintf(out, "\n%s\n", r.Reasoning)
	}
	if r.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", r.Error)
	}
}
