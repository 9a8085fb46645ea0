// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texbuild compiles a LaTeX workspace into a PDF.
// It runs a fixed four-pass sequence (compiler, bibliography, compiler,
// compiler) and tolerates the non-zero exits these tools produce for
// non-blocking problems. Classify holds the whole tolerance policy.
package texbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-builder/pkg/types"
)

const (
	// DocumentName is the base name of the top-level document.
	DocumentName = "main"
	// ArtifactFile is the compiled output the driver looks for.
	ArtifactFile = DocumentName + ".pdf"
	// CompilerLog and BibliographyLog are the tools' own log files.
	CompilerLog     = DocumentName + ".log"
	BibliographyLog = DocumentName + ".blg"

	defaultEngine       = "pdflatex"
	defaultBibliography = "bibtex"
)

// CompileError is a fatal step failure. It carries the captured standard
// error and a trailing slice of standard output.
type CompileError struct {
	Step       Step
	ExitCode   int
	Stderr     string
	StdoutTail string
	StartErr   error
}

func (e *CompileError) Error() string {
	if e.StartErr != nil {
		return fmt.Sprintf("error in %s: starting %s: %v", e.Step.Name, e.Step.Bin, e.StartErr)
	}
	return fmt.Sprintf("error in %s (exit code %d).\nSTDERR: %s\nSTDOUT (tail): %s",
		e.Step.Name, e.ExitCode, e.Stderr, e.StdoutTail)
}

func (e *CompileError) Unwrap() error { return e.StartErr }

// Steps returns the compile sequence for the configured tools.
func Steps(cfg types.CompileConfig) []Step {
	engine := cfg.Engine
	if engine == "" {
		engine = defaultEngine
	}
	bib := cfg.Bibliography
	if bib == "" {
		bib = defaultBibliography
	}
	compile := func(name string) Step {
		return Step{
			Name: name,
			Kind: StepCompiler,
			Bin:  engine,
			Args: []string{"-interaction=nonstopmode", DocumentName + ".tex"},
		}
	}
	return []Step{
		compile("PDFLaTeX 1"),
		{Name: "BibTeX", Kind: StepBibliography, Bin: bib, Args: []string{DocumentName}},
		compile("PDFLaTeX 2"),
		compile("PDFLaTeX Final"),
	}
}

// Driver runs the compile sequence through a Runner.
type Driver struct {
	runner Runner
	steps  []Step
	logger *zap.Logger
}

// NewDriver creates a Driver for the configured tools.
func NewDriver(runner Runner, cfg types.CompileConfig, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{runner: runner, steps: Steps(cfg), logger: logger}
}

// Compile runs every step in dir, which is also each tool's working
// directory. Tolerated failures are narrated to w and the sequence goes on;
// the first fatal failure stops it and is returned as a *CompileError.
// On success Compile returns the path of the produced PDF.
//
// A main.pdf left in dir by an earlier run is removed first: its presence is
// what turns a failing pass into a tolerated one.
func (d *Driver) Compile(ctx context.Context, dir string, w io.Writer) (string, error) {
	artifact := filepath.Join(dir, ArtifactFile)
	if err := os.Remove(artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("removing previous %s: %w", ArtifactFile, err)
	}

	for _, step := range d.steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		res := d.runner.Run(ctx, dir, step.Bin, step.Args...)
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out := Classify(step, res, fileExists(artifact))
		switch out.Verdict {
		case Success:
			d.logger.Debug("step completed", zap.String("step", step.Name), zap.String("dir", dir))
		case Tolerated:
			fmt.Fprintf(w, "      ⚠️  Warning in %s: %s\n", step.Name, out.Reason)
			d.logger.Warn("tolerated step failure",
				zap.String("step", step.Name),
				zap.String("kind", step.Kind.String()),
				zap.Int("exit_code", res.ExitCode),
				zap.String("dir", dir))
		case Fatal:
			d.logger.Error("step failed",
				zap.String("step", step.Name),
				zap.Int("exit_code", res.ExitCode),
				zap.String("dir", dir),
				zap.Error(out.Err))
			return "", out.Err
		}
	}

	if !fileExists(artifact) {
		return "", fmt.Errorf("compile sequence finished without %s", ArtifactFile)
	}
	return artifact, nil
}

// Diagnose prints the tail of the compiler log for a failed compile, and of
// the bibliography log when the failure involves the bibliography tool.
// Read problems are reported as a notice and never returned.
func (d *Driver) Diagnose(w io.Writer, dir string, err error) {
	writeLogTail(w, filepath.Join(dir, CompilerLog), diagnosticLines)
	if d.involvesBibliography(err) {
		writeLogTail(w, filepath.Join(dir, BibliographyLog), diagnosticLines)
	}
}

func (d *Driver) involvesBibliography(err error) bool {
	if err == nil {
		return false
	}
	var ce *CompileError
	if errors.As(err, &ce) && ce.Step.Kind == StepBibliography {
		return true
	}
	msg := err.Error()
	for _, s := range d.steps {
		if s.Kind == StepBibliography && strings.Contains(msg, s.Bin) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
