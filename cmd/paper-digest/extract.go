// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract structured fields from narrative summaries",
	Long: `Extract runs the structured-field extractor over text files, such as a
saved draft summary, and prints the key findings, methodology, implications,
and quoted citations it finds. No language model is called.

The sectioned policy reads labelled sections and bullet lists; the indicator
policy picks sentences containing indicator words.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("policy", "", "extraction policy: sectioned or indicator")
	extractCmd.Flags().Bool("json", false, "output as JSON instead of YAML")
	_ = viper.BindPFlag("summarize.policy", extractCmd.Flags().Lookup("policy"))

	rootCmd.AddCommand(extractCmd)
}

// extraction pairs an input file with its extracted fields.
type extraction struct {
	File   string                  `json:"file" yaml:"file"`
	Fields types.StructuredSummary `json:"fields" yaml:"fields"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more text files")
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	fields, err := fieldsFunc(cfg.Summarize.Policy)
	if err != nil {
		return err
	}

	out := make([]extraction, 0, len(args))
	for _, path := range args {
		text, err := readText(path)
		if err != nil {
			return err
		}
		out = append(out, extraction{File: filepath.Base(path), Fields: fields(text)})
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// fieldsFunc returns the extraction function for the named policy. The
// default policy runs extract.Fields.
func fieldsFunc(policy string) (func(string) types.StructuredSummary, error) {
	p, err := extract.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	if p == extract.DefaultPolicy {
		return extract.Fields, nil
	}
	x, err := extract.New(p)
	if err != nil {
		return nil, err
	}
	return x.Extract, nil
}

// readText returns the trimmed contents of a text file.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
