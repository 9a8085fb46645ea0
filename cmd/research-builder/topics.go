// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-builder/internal/archive"
	"github.com/pdiddy/research-builder/internal/assemble"
	"github.com/pdiddy/research-builder/pkg/types"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List catalog topics with their identifiers and archive status",
	Long: `Topics prints every topic in the catalog with its identifier, the cleaned
title used on the cover page, and whether its PDF is already archived.
Nothing is generated or compiled.`,
	RunE: runTopics,
}

func init() {
	topicsCmd.Flags().StringSlice("subject", nil, "only list these subject prefixes")
	topicsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(topicsCmd)
}

// topicRow is one line of the topics listing.
type topicRow struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Title    string `json:"title"`
	Archived bool   `json:"archived"`
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return err
	}
	if subjects, _ := cmd.Flags().GetStringSlice("subject"); len(subjects) > 0 {
		cfg.Subjects = subjects
	}

	entries, err := loadEntries(cfg)
	if err != nil {
		return err
	}

	arc := &archive.Archive{Dir: cfg.ArchiveDir}
	archived, err := arc.List()
	if err != nil {
		return err
	}
	rows := topicRows(entries, archived)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatTopics(cmd.OutOrStdout(), rows, jsonOutput)
}

// topicRows pairs catalog entries with the identifiers found in the archive.
func topicRows(entries []types.Entry, archived []string) []topicRow {
	done := make(map[string]bool, len(archived))
	for _, id := range archived {
		done[id] = true
	}
	rows := make([]topicRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, topicRow{
			ID:       e.ID,
			Subject:  e.Subject,
			Title:    assemble.CleanTitle(e.Topic),
			Archived: done[e.ID],
		})
	}
	return rows
}

func formatTopics(w io.Writer, rows []topicRow, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No topics in catalog.")
		return nil
	}

	fmt.Fprintf(w, "%-14s  %-8s  %-24s  %s\n", "ID", "Status", "Subject", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	done := 0
	for _, r := range rows {
		status := "pending"
		if r.Archived {
			status = "done"
			done++
		}
		fmt.Fprintf(w, "%-14s  %-8s  %-24s  %s\n", r.ID, status, truncate(r.Subject, 24), r.Title)
	}
	fmt.Fprintf(w, "\n%d of %d topic(s) archived\n", done, len(rows))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
