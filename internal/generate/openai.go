// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/research-builder/pkg/types"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gpt-4o"

// OpenAIBackend calls the chat completions API in JSON-object mode.
// The SDK's built-in retries are disabled: a failed call is reported once
// and the caller decides what to skip.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from the generation settings. Extra
// request options (e.g. a custom HTTP client) are appended last.
func NewOpenAIBackend(cfg types.GenerationConfig, extra ...option.RequestOption) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIBackend{client: openai.NewClient(opts...), model: model}, nil
}

// Model returns the model identifier requests are sent to.
func (o *OpenAIBackend) Model() string { return o.model }

// Complete sends the system and user messages and returns the first
// choice's content.
func (o *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
