// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-builder/internal/archive"
	"github.com/pdiddy/research-builder/internal/history"
	"github.com/pdiddy/research-builder/pkg/types"
)

func TestLoadEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "investigaciones_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"materias": [
		{"nombre": "Matemáticas", "prefijo": "MAT", "temas": ["Álgebra Lineal"]},
		{"nombre": "Redes", "prefijo": "RED", "temas": ["OSI", "TCP"]}
	]}`), 0o644))

	entries, err := loadEntries(types.BuildConfig{Catalog: path})
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = loadEntries(types.BuildConfig{Catalog: path, Subjects: []string{"RED"}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "RED_Tema_2", entries[1].ID)

	_, err = loadEntries(types.BuildConfig{Catalog: filepath.Join(dir, "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestResolveImagesDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	assert.Equal(t, dir, resolveImagesDir(dir, &out))
	assert.Empty(t, out.String())

	assert.Empty(t, resolveImagesDir(filepath.Join(dir, "images"), &out))
	assert.Contains(t, out.String(), "WARNING")

	assert.Empty(t, resolveImagesDir("", &out))
}

func TestFormatTopics(t *testing.T) {
	arcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(arcDir, "MAT_Tema_1.pdf"), nil, 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(arcDir, "RED_Tema_9.pdf"), nil, 0o644))
	archived, err := (&archive.Archive{Dir: arcDir}).List()
	require.NoError(t, err)

	rows := topicRows([]types.Entry{
		{ID: "MAT_Tema_1", Subject: "Matemáticas", Topic: `"Álgebra" Lineal`},
		{ID: "MAT_Tema_2", Subject: "Matemáticas", Topic: "Grafos [cite: 1]"},
	}, archived)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].Archived)
	assert.Equal(t, "Álgebra Lineal", rows[0].Title)
	assert.False(t, rows[1].Archived)
	assert.Equal(t, "Grafos", rows[1].Title)

	var out bytes.Buffer
	require.NoError(t, formatTopics(&out, rows, false))
	assert.Contains(t, out.String(), "1 of 2 topic(s) archived")

	out.Reset()
	require.NoError(t, formatTopics(&out, rows, true))
	assert.Contains(t, out.String(), `"id": "MAT_Tema_2"`)
}

func TestFormatHistory(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	failed := types.Attempt{
		RunID: "r1", TopicID: "RED_Tema_1", Status: types.AttemptCompileFailed,
		Detail:    "error in PDFLaTeX 1 (exit code 1).\nSTDERR: ...",
		StartedAt: t0, FinishedAt: t0.Add(90 * time.Second),
	}

	var out bytes.Buffer
	formatAttempts(&out, "RED_Tema_1", []types.Attempt{failed})
	assert.Contains(t, out.String(), "compile_failed")
	assert.Contains(t, out.String(), "error in PDFLaTeX 1 (exit code 1).")
	assert.NotContains(t, out.String(), "STDERR")

	out.Reset()
	archived := failed
	archived.Status, archived.Detail = types.AttemptArchived, ""
	formatAttempts(&out, "RED_Tema_1", []types.Attempt{failed, archived})
	assert.Contains(t, out.String(), "2 attempt(s), 1 failed")

	out.Reset()
	formatLatest(&out, []history.TopicSummary{{Latest: failed, Attempts: 3, Failures: 3}})
	assert.Contains(t, out.String(), "RED_Tema_1")

	out.Reset()
	formatLatest(&out, nil)
	assert.Contains(t, out.String(), "No attempts recorded.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Redes", truncate("Redes", 24))
	assert.Equal(t, "Matemá...", truncate("Matemáticas Discretas", 9))
}

func TestWriteVersion(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-05-01T09:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}}

	var out bytes.Buffer
	writeVersion(&out, info)
	assert.Contains(t, out.String(), "research-builder "+version)
	assert.Contains(t, out.String(), "commit: 0123456789ab-dirty")
	assert.Contains(t, out.String(), "built:  2026-05-01T09:00:00Z")
	assert.Contains(t, out.String(), "go:     "+runtime.Version())

	out.Reset()
	writeVersion(&out, nil)
	assert.Contains(t, out.String(), "commit: unknown")
	assert.NotContains(t, out.String(), "built:")
}
