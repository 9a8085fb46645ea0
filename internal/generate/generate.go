// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate requests structured research content from a language model.
// The model is asked for a JSON object with a LaTeX body and BibTeX entries;
// the markup itself is not validated here.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/research-builder/pkg/types"
)

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("model returned empty content")

// Backend abstracts the chat model so tests can supply a double. The
// response is expected to be a single JSON object.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator turns a topic into document content through a Backend.
type Generator struct {
	backend Backend
}

// New creates a Generator bound to the given backend.
func New(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Generate asks the model for the body and bibliography of a research
// document about topic within subject. Transport, rate-limit, and parse
// failures all surface as errors; there is no retry.
func (g *Generator) Generate(ctx context.Context, subject, topic string) (types.Content, error) {
	user, err := renderPrompt(subject, topic)
	if err != nil {
		return types.Content{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := g.backend.Complete(ctx, systemPrompt, user)
	if err != nil {
		return types.Content{}, fmt.Errorf("calling model: %w", err)
	}

	return ParseContent(raw)
}

// ParseContent decodes the model's JSON answer. Missing fields decode as
// empty strings.
func ParseContent(raw string) (types.Content, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Content{}, ErrEmptyResponse
	}

	var c types.Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return types.Content{}, fmt.Errorf("parsing model JSON: %w", err)
	}
	return c, nil
}
