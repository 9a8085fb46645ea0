// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Content is the structured document content returned by the language model
// for one topic. Field names match the JSON keys the prompt requests.
type Content struct {
	// Body is the LaTeX document body, starting at the first \section.
	Body string `json:"latex_body" yaml:"latex_body"`

	// Bibliography holds the BibTeX entries cited by Body.
	Bibliography string `json:"bibtex_entries" yaml:"bibtex_entries"`
}
