// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

//go:generate go run gen-docs.go gen-docs --path ../../docs/cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	horizoncmd "github.com/telekom/horizon/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generates docs for horizon",
	}
	rootCmd.AddCommand(NewCmdGenDocs())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewCmdGenDocs creates a new gen-docs command
func NewCmdGenDocs() *cobra.Command {
	var docPath string

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generate markdown documentation",
		Long:  `Generate the markdown documentation of the horizon commands and their flags`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return genDocs(docPath)
		},
	}

	cmd.Flags().StringVar(&docPath, "path", "docs/cli", "directory path where the markdown files will be created")

	return cmd
}

// genDocs writes one markdown file per horizon command into path.
func genDocs(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	c := horizoncmd.BuildCmd("")
	c.DisableAutoGenTag = true
	if err := doc.GenMarkdownTree(c, path); err != nil {
		return fmt.Errorf("failed to generate docs: %w", err)
	}
	return nil
}
