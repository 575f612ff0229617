package domain

import "context"

// GeneratedItem is one structured item returned by the generator.
// SourceTitle and SourceURL are empty when the item has no attribution.
type GeneratedItem struct {
	Content     string `json:"content"`
	SourceTitle string `json:"source_title"`
	SourceURL   string `json:"source_url"`
}

// LLMClient defines the capabilities the pipeline needs from a language
// model provider. Implementations may be slow and may fail; callers own
// the fallback policy.
type LLMClient interface {
	// GenerateItems sends a system/user prompt pair and returns a batch of
	// discrete feed items parsed from the model's structured output.
	GenerateItems(ctx context.Context, system, user string, maxTokens int) ([]GeneratedItem, error)

	// Complete sends a plain system/user prompt pair and returns raw text.
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)

	// Version identifies the backing model.
	Version() string
}
