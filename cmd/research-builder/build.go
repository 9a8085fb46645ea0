// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-builder/internal/archive"
	"github.com/pdiddy/research-builder/internal/assemble"
	"github.com/pdiddy/research-builder/internal/catalog"
	"github.com/pdiddy/research-builder/internal/generate"
	"github.com/pdiddy/research-builder/internal/history"
	"github.com/pdiddy/research-builder/internal/logging"
	"github.com/pdiddy/research-builder/internal/pipeline"
	"github.com/pdiddy/research-builder/internal/secrets"
	"github.com/pdiddy/research-builder/internal/texbuild"
	"github.com/pdiddy/research-builder/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate, compile, and archive every pending topic",
	Long: `Build walks the catalog one topic at a time. Topics already present in the
archive directory are skipped. For the others it generates content with the
language model, writes the workspace under the work directory, runs
pdflatex, bibtex, pdflatex, pdflatex, and copies main.pdf into the archive
as <PREFIX>_Tema_<N>.pdf.

A failing topic is reported and left for the next run; only a missing API
key, catalog, or template stops the whole run.`,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.String("templates-dir", "", "directory containing main.tex and portada.tex")
	f.String("images-dir", "", "shared images copied into every workspace")
	f.String("work-dir", "", "root directory for per-topic workspaces")
	f.StringSlice("subject", nil, "only process these subject prefixes (repeatable)")
	f.String("model", "", "chat model identifier")
	f.String("base-url", "", "override the model API endpoint")
	f.String("engine", "", "LaTeX compiler binary")
	f.String("bibliography", "", "bibliography processor binary")
	f.String("log-level", "", "log level: debug, info, warn, error")

	bindFlags(f, map[string]string{
		"templates_dir":        "templates-dir",
		"images_dir":           "images-dir",
		"work_dir":             "work-dir",
		"subjects":             "subject",
		"generation.model":     "model",
		"generation.base_url":  "base-url",
		"compile.engine":       "engine",
		"compile.bibliography": "bibliography",
		"log.level":            "log-level",
	})

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()

	cfg.Generation.APIKey, err = secrets.APIKey(os.Getenv, loadedSecrets)
	if err != nil {
		fmt.Fprintf(out, "❌ CRITICAL ERROR: %v\n", err)
		return err
	}

	entries, err := loadEntries(cfg)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}

	tmpl, err := assemble.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		fmt.Fprintf(out, "❌ Templates are missing in %s/.\n", cfg.TemplatesDir)
		return err
	}

	imagesDir := resolveImagesDir(cfg.ImagesDir, out)

	archiveDir, err := filepath.Abs(cfg.ArchiveDir)
	if err != nil {
		return err
	}
	arc, err := archive.New(archiveDir)
	if err != nil {
		return err
	}

	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return err
	}

	backend, err := generate.NewOpenAIBackend(cfg.Generation)
	if err != nil {
		return err
	}

	var recorder pipeline.Recorder
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			logger.Warn("history disabled", zap.String("path", cfg.HistoryDB), zap.Error(err))
		} else {
			defer store.Close()
			recorder = store
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(pipeline.Options{
		Entries:   entries,
		Templates: tmpl,
		Generator: generate.New(backend),
		Compiler:  texbuild.NewDriver(texbuild.ExecRunner{}, cfg.Compile, logger),
		Archive:   arc,
		Recorder:  recorder,
		WorkDir:   workDir,
		ImagesDir: imagesDir,
		Out:       out,
		Logger:    logger,
	})

	logger.Info("run started",
		zap.String("run_id", p.RunID()),
		zap.Int("topics", len(entries)),
		zap.String("model", backend.Model()))

	summary, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d topic(s)", summary.Total())
		}
		return err
	}
	return nil
}

// loadEntries reads the catalog and applies the subject filter.
func loadEntries(cfg types.BuildConfig) ([]types.Entry, error) {
	c, err := catalog.Load(cfg.Catalog)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog file %s not found", cfg.Catalog)
		}
		return nil, err
	}
	c, err = catalog.Filter(c, cfg.Subjects)
	if err != nil {
		return nil, err
	}
	return catalog.Entries(c), nil
}

// resolveImagesDir returns the absolute images directory, or "" with a
// warning when it does not exist. Documents still compile without it, but
// their logos will be missing.
func resolveImagesDir(dir string, w io.Writer) string {
	if dir == "" {
		return ""
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(w, "⚠️  WARNING: images directory %s not found. Logos will fail.\n", abs)
		return ""
	}
	return abs
}
