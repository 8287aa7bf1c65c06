// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect tasks and summaries in the configured store",
	Long: `Show reads tasks and summaries from the configured task store. It is
useful with the sqlite or redis backends, which outlive a single process.`,
}

var showTaskCmd = &cobra.Command{
	Use:   "task [id]",
	Short: "Print a task's status and stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closeStores, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStores()

		task, err := st.GetTask(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("task %s: %w", args[0], err)
		}
		return printRecord(cmd, task)
	},
}

var showSummaryCmd = &cobra.Command{
	Use:   "summary [id]",
	Short: "Print a finished summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closeStores, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStores()

		summary, err := st.GetSummary(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("summary %s: %w", args[0], err)
		}
		if asText, _ := cmd.Flags().GetBool("text"); asText {
			writeSummaryText(os.Stdout, summary)
			return nil
		}
		return printRecord(cmd, summary)
	},
}

func init() {
	showCmd.PersistentFlags().Bool("json", false, "output as JSON instead of YAML")
	showSummaryCmd.Flags().Bool("text", false, "output as readable text")

	showCmd.AddCommand(showTaskCmd, showSummaryCmd)
	rootCmd.AddCommand(showCmd)
}

func printRecord(cmd *cobra.Command, v any) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
