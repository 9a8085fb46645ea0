// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citations cross-checks the citation keys used in a LaTeX body
// against the entries of a BibTeX file. The result is advisory: mismatches
// are reported, never enforced.
package citations

import (
	"regexp"
	"sort"
	"strings"
)

// citePattern matches \cite{a,b}, \citep[p.~3]{a}, \citet*{a} and similar.
var citePattern = regexp.MustCompile(`\\[a-zA-Z]*cite[a-zA-Z]*\*?(?:\[[^\]]*\])*\{([^}]*)\}`)

// entryPattern matches the key of a BibTeX entry: @article{key, ...
var entryPattern = regexp.MustCompile(`@([a-zA-Z]+)\s*\{\s*([^,\s]+)\s*,`)

// nonEntryTypes are BibTeX directives that carry no citation key.
var nonEntryTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// Report lists the keys that do not line up between body and bibliography.
type Report struct {
	// Missing are keys cited in the body with no bibliography entry.
	Missing []string
	// Unused are bibliography entries the body never cites.
	Unused []string
	// Cited is the number of distinct keys cited in the body.
	Cited int
	// Entries is the number of distinct entries in the bibliography.
	Entries int
}

// OK reports whether every cited key has an entry and every entry is cited.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Unused) == 0
}

// Check compares the keys cited in body with the entries in bib.
func Check(body, bib string) Report {
	cited := CitedKeys(body)
	entries := EntryKeys(bib)

	citedSet := make(map[string]bool, len(cited))
	for _, k := range cited {
		citedSet[k] = true
	}
	entrySet := make(map[string]bool, len(entries))
	for _, k := range entries {
		entrySet[k] = true
	}

	r := Report{Cited: len(cited), Entries: len(entries)}
	for _, k := range cited {
		if !entrySet[k] {
			r.Missing = append(r.Missing, k)
		}
	}
	for _, k := range entries {
		if !citedSet[k] {
			r.Unused = append(r.Unused, k)
		}
	}
	return r
}

// CitedKeys returns the distinct citation keys used in a LaTeX body, sorted.
func CitedKeys(body string) []string {
	seen := make(map[string]bool)
	for _, m := range citePattern.FindAllStringSubmatch(body, -1) {
		for _, part := range strings.Split(m[1], ",") {
			if key := strings.TrimSpace(part); key != "" {
				seen[key] = true
			}
		}
	}
	return sortedKeys(seen)
}

// EntryKeys returns the distinct entry keys in a BibTeX source, sorted.
func EntryKeys(bib string) []string {
	seen := make(map[string]bool)
	for _, m := range entryPattern.FindAllStringSubmatch(bib, -1) {
		if nonEntryTypes[strings.ToLower(m[1])] {
			continue
		}
		seen[m[2]] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
