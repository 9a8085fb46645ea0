//go:build mage

// Package main contains Mage build targets for research-builder developer tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the directories the pipeline reads from or writes to.
var projectDirs = []string{
	"templates",
	"images",
	"Investigaciones_Finales",
	"PDFs_Compilados",
	".research-builder",
	".secrets",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "research-builder"
	cmdPkg  = "./cmd/research-builder"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// ldflags stamps the version, commit and build date into the binary.
// Outside a git checkout the version stays "dev" and the commit empty.
func ldflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if version == "" {
		version = "dev"
	}
	commit, _ := sh.Output("git", "rev-parse", "HEAD")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.buildDate=%s", version, commit, date)
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the built binary.
func Clean() error {
	return sh.Rm(binDir)
}

// Run builds the CLI and processes every pending topic.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "build")
}

// Topics builds the CLI and lists catalog topics with their archive status.
func Topics() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "topics")
}

// Stats prints project metrics: Go production/test LOC, LaTeX template lines
// and documentation word count.
func Stats() error {
	prodLines, err := countLines(".", func(p string) bool {
		return strings.HasSuffix(p, ".go") && !strings.HasSuffix(p, "_test.go")
	})
	if err != nil {
		return err
	}
	testLines, err := countLines(".", func(p string) bool { return strings.HasSuffix(p, "_test.go") })
	if err != nil {
		return err
	}
	texLines, err := countLines("templates", func(p string) bool { return filepath.Ext(p) == ".tex" })
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of templates (LaTeX):     %d\n", texLines)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

// skipDir reports whether a directory holds reference material, build output
// or generated documents rather than project sources.
func skipDir(name string) bool {
	if name == "." {
		return false
	}
	switch name {
	case binDir, "Investigaciones_Finales", "PDFs_Compilados":
		return true
	}
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// walkFiles calls fn for every regular file under root whose path matches keep.
// A missing root yields no files.
func walkFiles(root string, keep func(string) bool, fn func(path string, data []byte)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !keep(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fn(path, data)
		return nil
	})
	return err
}

// countLines counts non-blank lines in files matching keep.
func countLines(root string, keep func(string) bool) (int, error) {
	total := 0
	err := walkFiles(root, keep, func(_ string, data []byte) {
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
	})
	return total, err
}

// countDocWords counts words in Markdown and YAML files.
func countDocWords(root string) (int, error) {
	total := 0
	err := walkFiles(root, func(p string) bool {
		switch filepath.Ext(p) {
		case ".md", ".yaml", ".yml":
			return true
		}
		return false
	}, func(_ string, data []byte) {
		total += len(strings.Fields(string(data)))
	})
	return total, err
}
