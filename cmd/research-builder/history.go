// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-builder/internal/history"
	"github.com/pdiddy/research-builder/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [topic-id]",
	Short: "Show recorded topic attempts",
	Long: `History reads the attempt database written by build. Without arguments it
shows the latest attempt of every topic together with how many attempts and
failures it has accumulated; topics that fail on every run stand out here.
With a topic identifier it lists every attempt for that topic.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled: history_db is empty")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 1 {
		attempts, err := store.ForTopic(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(w, attempts)
		}
		formatAttempts(w, args[0], attempts)
		return nil
	}

	summaries, err := store.Latest(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(w, summaries)
	}
	formatLatest(w, summaries)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatLatest(w io.Writer, summaries []history.TopicSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No attempts recorded.")
		return
	}
	fmt.Fprintf(w, "%-14s  %-18s  %-8s  %-8s  %s\n", "ID", "Last status", "Attempts", "Failures", "Last run")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, s := range summaries {
		fmt.Fprintf(w, "%-14s  %-18s  %-8d  %-8d  %s\n",
			s.Latest.TopicID, s.Latest.Status, s.Attempts, s.Failures,
			s.Latest.FinishedAt.Local().Format(time.DateTime))
	}
}

func formatAttempts(w io.Writer, topicID string, attempts []types.Attempt) {
	if len(attempts) == 0 {
		fmt.Fprintf(w, "No attempts recorded for %s.\n", topicID)
		return
	}
	failed := 0
	for _, a := range attempts {
		fmt.Fprintf(w, "%s  %-18s  %s  (%s)\n",
			a.StartedAt.Local().Format(time.DateTime), a.Status, a.RunID,
			a.FinishedAt.Sub(a.StartedAt).Round(time.Second))
		if a.Detail != "" {
			fmt.Fprintf(w, "    %s\n", firstLine(a.Detail))
		}
		if a.Failed() {
			failed++
		}
	}
	fmt.Fprintf(w, "\n%d attempt(s), %d failed\n", len(attempts), failed)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
