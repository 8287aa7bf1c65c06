// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [papers...]",
	Short: "Extract plain text from PDF files",
	Long: `Convert extracts the text of each PDF into <papers-dir>/text/<name>.txt.
The native backend parses PDFs in process; pdftotext runs poppler's binary;
markitdown runs the markitdown container image through docker or podman.
Papers that already have text output are skipped.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: native, pdftotext, or markitdown")
	convertCmd.Flags().String("papers-dir", "", "base directory for papers (default uploads)")
	convertCmd.Flags().Bool("batch", false, "convert every PDF under <papers-dir>/raw")
	_ = viper.BindPFlag("conversion.backend", convertCmd.Flags().Lookup("backend"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("papers-dir") {
		cfg.Acquisition.PapersDir, _ = cmd.Flags().GetString("papers-dir")
	}
	batch, _ := cmd.Flags().GetBool("batch")
	papersDir := cfg.Acquisition.PapersDir

	paths := args
	if batch {
		found, err := filepath.Glob(filepath.Join(papersDir, acquire.RawDir, "*.pdf"))
		if err != nil {
			return err
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("provide one or more PDF files, or use --batch")
	}

	x, err := convert.New(cfg.Conversion)
	if err != nil {
		return err
	}
	result := convert.ConvertPaths(cmd.Context(), x, paths, papersDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed conversion", result.Failed)
	}
	return nil
}
