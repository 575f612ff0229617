package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"scroll-orchestrator/internal/domain"
)

const (
	maxSuggestions       = 5
	suggestionMaxTokens  = 80
	maxSuggestionLength  = 50
	minQueryLengthForLLM = 2
)

// staticSuggestions backs short or failed queries.
var staticSuggestions = []string{
	"World wonders",
	"SAT vocabulary",
	"Coding challenges",
	"Historical facts",
	"Science trivia",
	"Movie quotes",
	"Philosophy quotes",
	"Math problems",
	"Language learning",
	"Fun facts",
}

// SuggestTopicsUsecase proposes scroller topics for a partial query.
type SuggestTopicsUsecase interface {
	Execute(ctx context.Context, query string) ([]string, error)
}

type suggestTopicsUsecase struct {
	llm    domain.LLMClient
	logger *slog.Logger

	// group collapses concurrent identical queries into one LLM call.
	group singleflight.Group
}

// NewSuggestTopicsUsecase wires topic suggestion.
func NewSuggestTopicsUsecase(llm domain.LLMClient, logger *slog.Logger) SuggestTopicsUsecase {
	return &suggestTopicsUsecase{llm: llm, logger: logger}
}

func (u *suggestTopicsUsecase) Execute(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLengthForLLM {
		return staticSuggestions[:maxSuggestions], nil
	}

	v, err, _ := u.group.Do(query, func() (interface{}, error) {
		return u.ask(ctx, query)
	})
	if err != nil || len(v.([]string)) == 0 {
		u.logger.Warn("suggestions_failed", slog.String("query", query), slog.Any("error", err))
		return derivedSuggestions(query), nil
	}
	return v.([]string), nil
}

func (u *suggestTopicsUsecase) ask(ctx context.Context, query string) ([]string, error) {
	system := "Generate 5 short, engaging infinite scroll topics based on the user's partial input. " +
		"Each topic should be 2-4 words maximum. Return ONLY a comma-separated list without any JSON formatting. " +
		"Focus on educational, entertaining, or useful content categories."
	user := fmt.Sprintf("Complete or suggest similar topics to: %q", query)

	response, err := u.llm.Complete(ctx, system, user, suggestionMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(response), nil
}

func parseSuggestions(response string) []string {
	var suggestions []string
	for _, part := range strings.FieldsFunc(response, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		s := strings.TrimSpace(part)
		s = strings.TrimLeft(s, "-*0123456789. ")
		s = strings.Trim(s, `"'`)
		if s != "" && len(s) < maxSuggestionLength {
			suggestions = append(suggestions, s)
		}
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

func derivedSuggestions(query string) []string {
	return []string{
		query + " facts",
		query + " trivia",
		query + " quotes",
		query + " tips",
		query + " history",
	}
}
