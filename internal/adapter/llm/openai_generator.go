// Package llm adapts the OpenAI chat completions API to the domain's
// LLMClient contract.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"scroll-orchestrator/internal/domain"
)

const generationTemperature = 0.8

// itemsSchema is the structured-output contract: discrete items with prose
// separated from attribution. Kept strict so the model cannot smuggle
// formatting into extra fields.
var itemsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"items": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"content":      map[string]interface{}{"type": "string"},
					"source_title": map[string]interface{}{"type": []string{"string", "null"}},
					"source_url":   map[string]interface{}{"type": []string{"string", "null"}},
				},
				"required":             []string{"content", "source_title", "source_url"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"items"},
	"additionalProperties": false,
}

// OpenAIGenerator calls the OpenAI chat completions endpoint.
type OpenAIGenerator struct {
	model  string
	opts   []option.RequestOption
	logger *slog.Logger
}

// NewOpenAIGenerator constructs a generator for the given model. baseURL is
// optional and supports OpenAI-compatible endpoints.
func NewOpenAIGenerator(apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIGenerator{model: model, opts: opts, logger: logger}
}

type itemsEnvelope struct {
	Items []struct {
		Content     string  `json:"content"`
		SourceTitle *string `json:"source_title"`
		SourceURL   *string `json:"source_url"`
	} `json:"items"`
}

func (g *OpenAIGenerator) GenerateItems(ctx context.Context, system, user string, maxTokens int) ([]domain.GeneratedItem, error) {
	client := openai.NewClient(g.opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(generationTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "feed_items",
					Schema: itemsSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call completion endpoint: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	items, err := ParseItemsResponse(content)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ParseItemsResponse decodes the structured envelope. When the model ignored
// the schema and answered free-form, it falls back to the legacy
// numbered-list parser before giving up.
func ParseItemsResponse(content string) ([]domain.GeneratedItem, error) {
	var envelope itemsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err == nil && len(envelope.Items) > 0 {
		items := make([]domain.GeneratedItem, 0, len(envelope.Items))
		for _, raw := range envelope.Items {
			item := domain.GeneratedItem{Content: raw.Content}
			if raw.SourceTitle != nil {
				item.SourceTitle = *raw.SourceTitle
			}
			if raw.SourceURL != nil {
				item.SourceURL = *raw.SourceURL
			}
			items = append(items, item)
		}
		return items, nil
	}

	parsed := domain.ParseNumberedList(content)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("unparseable completion response")
	}
	items := make([]domain.GeneratedItem, 0, len(parsed))
	for _, p := range parsed {
		item := domain.GeneratedItem{Content: p.Content}
		if len(p.Sources) > 0 {
			item.SourceTitle = p.Sources[0].Label
			item.SourceURL = p.Sources[0].URL
		}
		items = append(items, item)
	}
	return items, nil
}

func (g *OpenAIGenerator) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	client := openai.NewClient(g.opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(generationTemperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call completion endpoint: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Version returns the wrapped model name.
func (g *OpenAIGenerator) Version() string {
	return g.model
}

var _ domain.LLMClient = (*OpenAIGenerator)(nil)
