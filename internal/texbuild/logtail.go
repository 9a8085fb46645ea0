// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texbuild

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// diagnosticLines is how many trailing log lines Diagnose prints.
const diagnosticLines = 20

// LogTail returns the last n lines of a TeX tool log, trimmed of
// surrounding whitespace. TeX logs are not guaranteed to be UTF-8, so the
// file is decoded as Latin-1, which accepts any byte sequence.
func LogTail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ring := make([]string, 0, n)
	for sc.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ring, nil
}

// writeLogTail prints a log tail to w. A missing log is skipped silently;
// any other read problem is replaced by a short notice.
func writeLogTail(w io.Writer, path string, n int) {
	lines, err := LogTail(path, n)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		fmt.Fprintf(w, "   ⚠️  Could not read log file %s.\n", path)
		return
	}
	fmt.Fprintf(w, "   🔻 LAST %d LINES OF %s:\n", n, filepath.Base(path))
	for _, l := range lines {
		fmt.Fprintf(w, "      %s\n", l)
	}
}
