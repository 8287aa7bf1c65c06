// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/acquire"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [identifiers...]",
	Short: "Download papers from URLs, DOIs, or arXiv IDs",
	Long: `Acquire resolves paper identifiers (arXiv IDs, DOIs, direct PDF URLs)
to PDF files, downloads them, and creates metadata records. DOIs are resolved
through OpenAlex and CrossRef; publisher landing pages are followed through
their citation_pdf_url tag. Existing papers are skipped.`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	acquireCmd.Flags().String("papers-dir", "", "base directory for papers (default uploads)")
	_ = viper.BindPFlag("acquisition.timeout", acquireCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more paper identifiers (arXiv IDs, DOIs, or URLs)")
	}

	if cmd.Flags().Changed("papers-dir") {
		cfg.Acquisition.PapersDir, _ = cmd.Flags().GetString("papers-dir")
	}
	a := acquire.New(nil, cfg.Acquisition, logger)
	result := a.AcquireBatch(cmd.Context(), args, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed acquisition", result.Failed)
	}
	return nil
}
