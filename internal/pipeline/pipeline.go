// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the per-topic build: generate content, assemble
// the workspace, compile, and archive. Topics run one after another and a
// failure never leaves the topic it happened in; the archive decides which
// topics are already done.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-builder/internal/archive"
	"github.com/pdiddy/research-builder/internal/assemble"
	"github.com/pdiddy/research-builder/internal/citations"
	"github.com/pdiddy/research-builder/pkg/types"
)

// topicPreviewRunes bounds how much of a topic is echoed in progress lines.
const topicPreviewRunes = 30

// ContentGenerator produces document content for a topic.
type ContentGenerator interface {
	Generate(ctx context.Context, subject, topic string) (types.Content, error)
}

// Compiler turns an assembled workspace into a PDF and explains failures.
type Compiler interface {
	Compile(ctx context.Context, dir string, w io.Writer) (string, error)
	Diagnose(w io.Writer, dir string, err error)
}

// Recorder stores the outcome of each topic attempt.
type Recorder interface {
	Record(ctx context.Context, a types.Attempt) error
}

// Options wires a Pipeline. Recorder and Logger are optional; ImagesDir may
// be empty to skip asset staging.
type Options struct {
	Entries   []types.Entry
	Templates *assemble.Templates
	Generator ContentGenerator
	Compiler  Compiler
	Archive   *archive.Archive
	Recorder  Recorder

	WorkDir   string
	ImagesDir string

	Out    io.Writer
	Logger *zap.Logger
}

// Pipeline runs the build for every catalog entry.
type Pipeline struct {
	opts  Options
	runID string
	log   *zap.Logger
	now   func() time.Time
}

// New creates a Pipeline with a fresh run identifier.
func New(opts Options) *Pipeline {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Pipeline{
		opts:  opts,
		runID: runID,
		log:   log.With(zap.String("run_id", runID)),
		now:   time.Now,
	}
}

// RunID identifies this run in the attempt history.
func (p *Pipeline) RunID() string { return p.runID }

// Summary counts topic outcomes for one run.
type Summary struct {
	Archived int
	Skipped  int
	Failed   int
}

// Total returns the number of topics processed.
func (s Summary) Total() int {
	return s.Archived + s.Skipped + s.Failed
}

// HasFailures reports whether any topic failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes every entry in order. Topic failures are counted, never
// returned; the only error is the context's, when the run is interrupted.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	w := p.opts.Out

	for _, e := range p.opts.Entries {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "\n⛔ Run interrupted before %s.\n", e.ID)
			p.printSummary(summary)
			return summary, err
		}

		started := p.now()
		status, detail := p.processEntry(ctx, e)
		switch status {
		case types.AttemptArchived:
			summary.Archived++
		case types.AttemptSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}

		p.record(ctx, types.Attempt{
			RunID:      p.runID,
			TopicID:    e.ID,
			Subject:    e.Subject,
			Topic:      e.Topic,
			Status:     status,
			Detail:     detail,
			StartedAt:  started,
			FinishedAt: p.now(),
		})
	}

	p.printSummary(summary)
	return summary, nil
}

// processEntry runs one topic through the whole build and reports how it
// ended. detail is the failure message, if any.
func (p *Pipeline) processEntry(ctx context.Context, e types.Entry) (types.AttemptStatus, string) {
	w := p.opts.Out
	log := p.log.With(zap.String("topic_id", e.ID))

	fmt.Fprintf(w, "\n🚀 Processing: %s | Topic: %s...\n", e.ID, preview(e.Topic, topicPreviewRunes))

	if p.opts.Archive.Exists(e.ID) {
		fmt.Fprintf(w, "   ⏭️  Skipping %s: the PDF already exists.\n", e.ID)
		log.Debug("topic already archived", zap.String("path", p.opts.Archive.Path(e.ID)))
		return types.AttemptSkipped, ""
	}

	dir := filepath.Join(p.opts.WorkDir, e.ID)
	if err := p.prepareWorkspace(dir); err != nil {
		fmt.Fprintf(w, "   ❌ Could not prepare workspace: %v\n", err)
		log.Error("workspace preparation failed", zap.Error(err))
		return types.AttemptAssemblyFailed, err.Error()
	}

	title := assemble.CleanTitle(e.Topic)

	// The raw topic goes to the model for context; the cleaned title goes
	// on the cover.
	content, err := p.opts.Generator.Generate(ctx, e.Subject, e.Topic)
	if err != nil {
		fmt.Fprintf(w, "   ⚠️  Error generating content for %s: %v\n", e.Topic, err)
		log.Warn("content generation failed", zap.String("topic", e.Topic), zap.Error(err))
		return types.AttemptGenerationFailed, err.Error()
	}

	if err := assemble.Write(dir, p.opts.Templates, e.Subject, title, content); err != nil {
		fmt.Fprintf(w, "   ❌ Could not write document files: %v\n", err)
		log.Error("writing workspace failed", zap.Error(err))
		return types.AttemptAssemblyFailed, err.Error()
	}

	p.reportCitations(w, log, content)

	fmt.Fprintln(w, "   ⚙️  Compiling PDF...")
	pdf, err := p.opts.Compiler.Compile(ctx, dir, w)
	if err != nil {
		fmt.Fprintf(w, "   ❌ Compilation error: %v\n", err)
		p.opts.Compiler.Diagnose(w, dir, err)
		return types.AttemptCompileFailed, err.Error()
	}
	fmt.Fprintf(w, "   ✅ Success! Generated: %s\n", pdf)

	dst, err := p.opts.Archive.Store(e.ID, pdf)
	if err != nil {
		fmt.Fprintf(w, "   ❌ Could not archive PDF: %v\n", err)
		log.Error("archiving failed", zap.Error(err))
		return types.AttemptArchiveFailed, err.Error()
	}
	fmt.Fprintf(w, "   📦 PDF copied to: %s\n", dst)
	log.Info("topic archived", zap.String("path", dst))

	return types.AttemptArchived, ""
}

// prepareWorkspace creates the topic's tree and stages a fresh copy of the
// shared images.
func (p *Pipeline) prepareWorkspace(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, assemble.StructureDir), 0o755); err != nil {
		return fmt.Errorf("creating workspace %s: %w", dir, err)
	}
	if p.opts.ImagesDir == "" {
		return nil
	}
	return assemble.StageAssets(p.opts.ImagesDir, filepath.Join(dir, assemble.ImagesDir))
}

// reportCitations warns about citation keys that do not line up between
// body and bibliography. Compilation proceeds either way.
func (p *Pipeline) reportCitations(w io.Writer, log *zap.Logger, c types.Content) {
	r := citations.Check(c.Body, c.Bibliography)
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "   ⚠️  Cited without a bibliography entry: %v\n", r.Missing)
	}
	if len(r.Unused) > 0 {
		fmt.Fprintf(w, "   ⚠️  Bibliography entries never cited: %v\n", r.Unused)
	}
	if !r.OK() {
		log.Warn("citation keys mismatch",
			zap.Strings("missing", r.Missing),
			zap.Strings("unused", r.Unused),
			zap.Int("cited", r.Cited),
			zap.Int("entries", r.Entries))
	}
}

// record stores the attempt. The history is advisory, so failures are
// logged and dropped, and an interrupted run still records its last topic.
func (p *Pipeline) record(ctx context.Context, a types.Attempt) {
	if p.opts.Recorder == nil {
		return
	}
	if err := p.opts.Recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		p.log.Warn("recording attempt failed", zap.String("topic_id", a.TopicID), zap.Error(err))
	}
}

func (p *Pipeline) printSummary(s Summary) {
	fmt.Fprintf(p.opts.Out, "\nBatch summary: %d archived, %d skipped, %d failed (total: %d)\n",
		s.Archived, s.Skipped, s.Failed, s.Total())
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
