// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search arXiv for candidate papers",
	Long: `Search queries the arXiv API for papers matching free text, optionally
restricted to a range of submission years, and prints the results as a table,
JSON, or YAML. Result IDs can be passed straight to acquire or summarize.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text query (or pass it as arguments)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default 10)")
	searchCmd.Flags().String("sort-by", search.SortRelevance, "relevance, lastUpdatedDate, or submittedDate")
	searchCmd.Flags().String("sort-order", search.OrderDescending, "ascending or descending")
	searchCmd.Flags().Int("year-from", 0, "earliest submission year")
	searchCmd.Flags().Int("year-to", 0, "latest submission year")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("yaml", false, "output results as YAML")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("query")
	if text == "" {
		text = strings.Join(args, " ")
	}
	q := search.Query{Text: text}
	q.MaxResults, _ = cmd.Flags().GetInt("max-results")
	q.SortBy, _ = cmd.Flags().GetString("sort-by")
	q.SortOrder, _ = cmd.Flags().GetString("sort-order")
	q.YearFrom, _ = cmd.Flags().GetInt("year-from")
	q.YearTo, _ = cmd.Flags().GetInt("year-to")
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	if q.IsEmpty() {
		return fmt.Errorf("provide a query with --query or as arguments")
	}
	if q.YearFrom > 0 && q.YearTo > 0 && q.YearFrom > q.YearTo {
		return fmt.Errorf("--year-from %d is after --year-to %d", q.YearFrom, q.YearTo)
	}

	results, err := search.NewClient(nil, cfg.Search).Search(cmd.Context(), q)
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		return search.FormatJSON(results, os.Stdout)
	case asYAML:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		search.FormatTable(results, os.Stdout)
		return nil
	}
}
