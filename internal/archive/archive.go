// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps the final PDFs in one flat directory keyed by topic
// identifier. An entry's presence marks the topic as done.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const ext = ".pdf"

// Archive is a directory of completed artifacts.
type Archive struct {
	Dir string
}

// New returns an Archive rooted at dir, creating the directory if needed.
func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory %s: %w", dir, err)
	}
	return &Archive{Dir: dir}, nil
}

// Path returns the archive location for a topic identifier.
func (a *Archive) Path(id string) string {
	return filepath.Join(a.Dir, id+ext)
}

// Exists reports whether the topic has already been archived.
func (a *Archive) Exists(id string) bool {
	_, err := os.Stat(a.Path(id))
	return err == nil
}

// Store copies src into the archive under id. The copy goes to a temporary
// file in the archive directory first and is renamed into place, so an
// interrupted copy never leaves an entry that looks complete.
func (a *Archive) Store(id, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(a.Dir, "."+id+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	dst := a.Path(id)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("moving into archive: %w", err)
	}
	return dst, nil
}

// List returns the identifiers present in the archive, sorted by name.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive %s: %w", a.Dir, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext || name[0] == '.' {
			continue
		}
		ids = append(ids, name[:len(name)-len(ext)])
	}
	return ids, nil
}
