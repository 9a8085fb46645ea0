// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-builder/internal/archive"
	"github.com/pdiddy/research-builder/internal/assemble"
	"github.com/pdiddy/research-builder/internal/catalog"
	"github.com/pdiddy/research-builder/internal/texbuild"
	"github.com/pdiddy/research-builder/pkg/types"
)

// fakeGenerator returns canned content or an error and counts calls.
type fakeGenerator struct {
	content types.Content
	err     error
	calls   []string
}

func (f *fakeGenerator) Generate(_ context.Context, subject, topic string) (types.Content, error) {
	f.calls = append(f.calls, subject+"/"+topic)
	if f.err != nil {
		return types.Content{}, f.err
	}
	return f.content, nil
}

// stubRunner stands in for pdflatex and bibtex: it exits with the given
// code and, when writePDF is set, leaves main.pdf in the workspace.
type stubRunner struct {
	exitCode int
	writePDF bool
	calls    int
}

func (s *stubRunner) Run(_ context.Context, dir, name string, args ...string) texbuild.Result {
	s.calls++
	if s.writePDF {
		_ = os.WriteFile(filepath.Join(dir, texbuild.ArtifactFile), []byte("%PDF-1.5 "+dir), 0o644)
	}
	return texbuild.Result{ExitCode: s.exitCode}
}

// memRecorder keeps attempts in memory.
type memRecorder struct {
	attempts []types.Attempt
	err      error
}

func (m *memRecorder) Record(_ context.Context, a types.Attempt) error {
	m.attempts = append(m.attempts, a)
	return m.err
}

type fixture struct {
	root      string
	archive   *archive.Archive
	generator *fakeGenerator
	runner    *stubRunner
	recorder  *memRecorder
	out       *bytes.Buffer
}

const testCatalog = `{"materias": [{"nombre": "Matemáticas", "prefijo": "MAT", "temas": ["Álgebra Lineal"]}]}`

var validContent = types.Content{
	Body:         `\section{Intro} ... \cite{ref1}`,
	Bibliography: "@article{ref1, title={Uno}}",
}

func newFixture(t *testing.T, catalogJSON string) (*fixture, *Pipeline) {
	t.Helper()
	root := t.TempDir()

	images := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(images, "logo.png"), []byte("png"), 0o644))

	arc, err := archive.New(filepath.Join(root, "PDFs_Compilados"))
	require.NoError(t, err)

	c, err := catalog.Parse([]byte(catalogJSON))
	require.NoError(t, err)

	f := &fixture{
		root:      root,
		archive:   arc,
		generator: &fakeGenerator{content: validContent},
		runner:    &stubRunner{writePDF: true},
		recorder:  &memRecorder{},
		out:       &bytes.Buffer{},
	}
	p := New(Options{
		Entries: catalog.Entries(c),
		Templates: &assemble.Templates{
			Main:  `\documentclass{article}\begin{document}\input{doc_structure/Portada}\end{document}`,
			Cover: `[[ MATERIA ]] -- [[ TEMA ]]`,
		},
		Generator: f.generator,
		Compiler:  texbuild.NewDriver(f.runner, types.CompileConfig{}, zap.NewNop()),
		Archive:   arc,
		Recorder:  f.recorder,
		WorkDir:   filepath.Join(root, "Investigaciones_Finales"),
		ImagesDir: images,
		Out:       f.out,
		Logger:    zap.NewNop(),
	})
	return f, p
}

func TestRunArchivesSuccessfulTopic(t *testing.T) {
	f, p := newFixture(t, testCatalog)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Archived: 1}, summary)

	ids, err := f.archive.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"MAT_Tema_1"}, ids)
	assert.FileExists(t, filepath.Join(f.archive.Dir, "MAT_Tema_1.pdf"))

	assert.Contains(t, f.out.String(), "✅ Success!")
	assert.Contains(t, f.out.String(), "📦 PDF copied to:")
	assert.Equal(t, 4, f.runner.calls)
	assert.Equal(t, []string{"Matemáticas/Álgebra Lineal"}, f.generator.calls)

	ws := filepath.Join(f.root, "Investigaciones_Finales", "MAT_Tema_1")
	cover, err := os.ReadFile(filepath.Join(ws, assemble.StructureDir, assemble.CoverFile))
	require.NoError(t, err)
	assert.Equal(t, "Matemáticas -- Álgebra Lineal", string(cover))
	assert.FileExists(t, filepath.Join(ws, assemble.ImagesDir, "logo.png"))
	assert.FileExists(t, filepath.Join(ws, assemble.BibliographyFile))

	require.Len(t, f.recorder.attempts, 1)
	a := f.recorder.attempts[0]
	assert.Equal(t, types.AttemptArchived, a.Status)
	assert.Equal(t, "MAT_Tema_1", a.TopicID)
	assert.Equal(t, p.RunID(), a.RunID)
	assert.False(t, a.FinishedAt.Before(a.StartedAt))
}

func TestRunGeneratorFailureSkipsTopic(t *testing.T) {
	catalogJSON := `{"materias": [{"nombre": "Matemáticas", "prefijo": "MAT", "temas": ["Álgebra Lineal", "Grafos"]}]}`
	f, p := newFixture(t, catalogJSON)
	f.generator.err = errors.New("rate limit exceeded")

	summary, err := p.Run(context.Background())
	require.NoError(t, err, "generator failures must not abort the run")
	assert.Equal(t, Summary{Failed: 2}, summary)
	assert.True(t, summary.HasFailures())

	ids, err := f.archive.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, f.runner.calls, "nothing is compiled without content")
	assert.Len(t, f.generator.calls, 2, "the loop continues to the next topic")
	assert.Contains(t, f.out.String(), "Error generating content for Álgebra Lineal")

	require.Len(t, f.recorder.attempts, 2)
	assert.Equal(t, types.AttemptGenerationFailed, f.recorder.attempts[0].Status)
	assert.Contains(t, f.recorder.attempts[0].Detail, "rate limit exceeded")
}

func TestRunSkipsArchivedTopics(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	existing := f.archive.Path("MAT_Tema_1")
	require.NoError(t, os.WriteFile(existing, []byte("original artifact"), 0o644))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 1}, summary)

	assert.Empty(t, f.generator.calls, "no generator call for archived topics")
	assert.Zero(t, f.runner.calls, "no compiler call for archived topics")
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original artifact", string(data))
	assert.NoDirExists(t, filepath.Join(f.root, "Investigaciones_Finales", "MAT_Tema_1"))
	assert.Contains(t, f.out.String(), "⏭️  Skipping MAT_Tema_1")
}

func TestRunCompileFailureContinues(t *testing.T) {
	catalogJSON := `{"materias": [
		{"nombre": "Redes", "prefijo": "RED", "temas": ["Modelo OSI"]},
		{"nombre": "Matemáticas", "prefijo": "MAT", "temas": ["Álgebra Lineal"]}
	]}`
	f, p := newFixture(t, catalogJSON)
	f.runner.exitCode = 1
	f.runner.writePDF = false

	// The compiler leaves a log behind for diagnostics.
	ws := filepath.Join(f.root, "Investigaciones_Finales", "RED_Tema_1")
	require.NoError(t, os.MkdirAll(ws, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, texbuild.CompilerLog), []byte("! Undefined control sequence.\n"), 0o644))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 2}, summary)
	assert.Equal(t, 2, f.runner.calls, "each topic stops after its first fatal pass")
	assert.Contains(t, f.out.String(), "❌ Compilation error")
	assert.Contains(t, f.out.String(), "! Undefined control sequence.")

	ids, err := f.archive.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, types.AttemptCompileFailed, f.recorder.attempts[0].Status)
}

func TestRunToleratedFailureStillArchives(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	f.runner.exitCode = 1 // every pass complains but main.pdf is written

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Archived: 1}, summary)
	assert.Equal(t, 4, f.runner.calls)
	assert.Equal(t, 4, strings.Count(f.out.String(), "Warning in"))
}

func TestRunDoesNotArchiveLeftoverPDF(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	f.runner.exitCode = 1
	f.runner.writePDF = false

	// A previous run compiled this topic, then its archived copy was deleted.
	ws := filepath.Join(f.root, "Investigaciones_Finales", "MAT_Tema_1")
	require.NoError(t, os.MkdirAll(ws, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, texbuild.ArtifactFile), []byte("%PDF-1.5 earlier run"), 0o644))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, summary)
	assert.Equal(t, 1, f.runner.calls)
	assert.False(t, f.archive.Exists("MAT_Tema_1"))
	assert.Equal(t, types.AttemptCompileFailed, f.recorder.attempts[0].Status)
}

func TestRunWarnsOnCitationMismatch(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	f.generator.content = types.Content{
		Body:         `\cite{ref1} \cite{ref7}`,
		Bibliography: "@article{ref1, t={a}}\n@book{ref2, t={b}}",
	}

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Archived, "citation mismatches never block")
	assert.Contains(t, f.out.String(), "Cited without a bibliography entry: [ref7]")
	assert.Contains(t, f.out.String(), "Bibliography entries never cited: [ref2]")
}

func TestRunInterrupted(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Total())
	assert.Empty(t, f.generator.calls)
}

func TestRunRecorderFailureIsIgnored(t *testing.T) {
	f, p := newFixture(t, testCatalog)
	f.recorder.err = errors.New("database is locked")

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Archived)
}

func TestRunWithoutImages(t *testing.T) {
	f, _ := newFixture(t, testCatalog)
	c, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	p := New(Options{
		Entries:   catalog.Entries(c),
		Templates: &assemble.Templates{Main: "m", Cover: "c"},
		Generator: f.generator,
		Compiler:  texbuild.NewDriver(f.runner, types.CompileConfig{}, nil),
		Archive:   f.archive,
		WorkDir:   filepath.Join(f.root, "work"),
	})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Archived)
	assert.NoDirExists(t, filepath.Join(f.root, "work", "MAT_Tema_1", assemble.ImagesDir))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 30))
	assert.Equal(t, "Álgebra", preview("Álgebra Lineal", 7))
}
