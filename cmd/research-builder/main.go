// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-builder CLI.
// It generates research documents with a language model, typesets them
// with pdflatex/bibtex, and archives the PDFs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-builder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-builder CLI.
var rootCmd = &cobra.Command{
	Use:   "research-builder",
	Short: "Generate, typeset, and archive research documents",
	Long: `research-builder turns a catalog of subjects and topics into compiled
research documents. For each topic it asks a language model for a LaTeX body
and BibTeX references, fills the document templates, compiles the result with
pdflatex and bibtex, and copies the PDF into the archive directory.

Topics whose PDF is already archived are skipped, so an interrupted run can
simply be started again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-builder.yaml or ~/.config/research-builder/config.yaml)")
	pf.String("catalog", "", "catalog file listing subjects and topics")
	pf.String("archive-dir", "", "directory collecting the final PDFs")
	pf.String("history-db", "", "SQLite file recording topic attempts (empty string disables)")

	bindFlags(pf, map[string]string{
		"catalog":     "catalog",
		"archive_dir": "archive-dir",
		"history_db":  "history-db",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-builder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-builder"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_BUILDER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
