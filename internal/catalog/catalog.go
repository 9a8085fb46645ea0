// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the subjects and topics that drive a pipeline run.
// The catalog file may be JSON or YAML; both decode through the YAML parser.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-builder/pkg/types"
)

// Load reads and decodes the catalog at path. A missing file yields an error
// that wraps fs.ErrNotExist so callers can report it distinctly.
func Load(path string) (*types.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog content. Only enough structure to iterate subjects
// and topics is required; unknown keys are ignored.
func Parse(data []byte) (*types.Catalog, error) {
	var c types.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &c, nil
}

// Entries flattens the catalog into ordered work entries, one per topic,
// in file order. Positions are 1-based within each subject.
func Entries(c *types.Catalog) []types.Entry {
	var entries []types.Entry
	for _, s := range c.Subjects {
		for i, topic := range s.Topics {
			entries = append(entries, types.Entry{
				ID:       types.TopicID(s.Prefix, i+1),
				Subject:  s.Name,
				Prefix:   s.Prefix,
				Position: i + 1,
				Topic:    topic,
			})
		}
	}
	return entries
}

// Filter returns a catalog containing only the subjects whose prefix is in
// prefixes, preserving catalog order. An empty prefixes list returns c
// unchanged. Prefixes that match no subject are an error.
func Filter(c *types.Catalog, prefixes []string) (*types.Catalog, error) {
	if len(prefixes) == 0 {
		return c, nil
	}

	known := make(map[string]bool, len(c.Subjects))
	for _, s := range c.Subjects {
		known[s.Prefix] = true
	}

	var unknown []string
	for _, p := range prefixes {
		if !known[p] {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown subject prefix(es): %s", strings.Join(unknown, ", "))
	}

	out := &types.Catalog{}
	for _, s := range c.Subjects {
		if slices.Contains(prefixes, s.Prefix) {
			out.Subjects = append(out.Subjects, s)
		}
	}
	return out, nil
}
