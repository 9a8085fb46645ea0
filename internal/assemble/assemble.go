// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble writes a topic's LaTeX sources into its workspace.
// It merges generated content with the cover and main templates and stages
// the shared image assets. Templates are not validated: a template without
// the expected placeholders is written unchanged.
package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/research-builder/pkg/types"
)

const (
	mainTemplateFile  = "main.tex"
	coverTemplateFile = "portada.tex"

	// SubjectPlaceholder and TitlePlaceholder are replaced in the cover template.
	SubjectPlaceholder = "[[ MATERIA ]]"
	TitlePlaceholder   = "[[ TEMA ]]"
)

// Workspace file layout, relative to the workspace root.
const (
	MainFile         = "main.tex"
	BibliographyFile = "referencias.bib"
	StructureDir     = "doc_structure"
	CoverFile        = "Portada.tex"
	BodyFile         = "Contenido.tex"
	ImagesDir        = "images"
)

// annotationPattern matches bracketed annotations such as "[cite: 4]"
// together with the whitespace before them.
var annotationPattern = regexp.MustCompile(`\s*\[.*?\]`)

// CleanTitle strips bracketed annotations and quote characters from a topic
// so it can be embedded in the cover page and used in file names.
// CleanTitle(CleanTitle(s)) == CleanTitle(s).
func CleanTitle(topic string) string {
	t := annotationPattern.ReplaceAllString(topic, "")
	t = strings.TrimSpace(t)
	t = strings.NewReplacer(`"`, "", `'`, "").Replace(t)
	return strings.TrimSpace(t)
}

// Templates holds the document templates loaded once per run.
type Templates struct {
	Main  string
	Cover string
}

// LoadTemplates reads main.tex and portada.tex from dir.
func LoadTemplates(dir string) (*Templates, error) {
	mainTex, err := os.ReadFile(filepath.Join(dir, mainTemplateFile))
	if err != nil {
		return nil, fmt.Errorf("reading main template: %w", err)
	}
	cover, err := os.ReadFile(filepath.Join(dir, coverTemplateFile))
	if err != nil {
		return nil, fmt.Errorf("reading cover template: %w", err)
	}
	return &Templates{Main: string(mainTex), Cover: string(cover)}, nil
}

// RenderCover substitutes the subject name and topic title into the cover template.
func (t *Templates) RenderCover(subject, title string) string {
	return strings.NewReplacer(
		SubjectPlaceholder, subject,
		TitlePlaceholder, title,
	).Replace(t.Cover)
}

// Write populates the workspace at dir: the rendered cover and the body
// under doc_structure/, the bibliography and the unmodified main template
// at the root. Existing files are overwritten.
func Write(dir string, tmpl *Templates, subject, title string, content types.Content) error {
	structDir := filepath.Join(dir, StructureDir)
	if err := os.MkdirAll(structDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", structDir, err)
	}

	files := []struct {
		path string
		data string
	}{
		{filepath.Join(structDir, CoverFile), tmpl.RenderCover(subject, title)},
		{filepath.Join(structDir, BodyFile), content.Body},
		{filepath.Join(dir, BibliographyFile), content.Bibliography},
		{filepath.Join(dir, MainFile), tmpl.Main},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.data), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", filepath.Base(f.path), err)
		}
	}
	return nil
}

// StageAssets replaces dst with a fresh recursive copy of src so assets from
// an earlier run never linger in the workspace.
func StageAssets(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing stale assets %s: %w", dst, err)
	}
	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		return fmt.Errorf("copying assets from %s: %w", src, err)
	}
	return nil
}
