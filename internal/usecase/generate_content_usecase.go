package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"scroll-orchestrator/internal/domain"
)

// fallbackAttempts bounds how often a colliding fallback suffix is re-rolled
// before the item is given up on.
const fallbackAttempts = 100

// GenerateContentUsecase runs one generation round for a scroller: prompt
// the generator, dedupe and classify the result, persist the batch.
type GenerateContentUsecase interface {
	// Execute generates up to requested new items. existing is the
	// scroller's current history, chronological. Generator-side failures
	// are absorbed into a fallback batch; only storage errors propagate.
	Execute(ctx context.Context, scroller *domain.Scroller, existing []domain.ContentItem, requested int) ([]domain.ContentItem, error)
}

type generateContentUsecase struct {
	itemRepo      domain.ContentItemRepository
	llm           domain.LLMClient
	promptBuilder ItemPromptBuilder
	historyWindow int
	logger        *slog.Logger

	randInt func(n int) int
}

// NewGenerateContentUsecase wires the generation orchestrator.
// historyWindow bounds how many recent items are replayed into the prompt.
func NewGenerateContentUsecase(
	itemRepo domain.ContentItemRepository,
	llm domain.LLMClient,
	promptBuilder ItemPromptBuilder,
	historyWindow int,
	logger *slog.Logger,
) GenerateContentUsecase {
	return &generateContentUsecase{
		itemRepo:      itemRepo,
		llm:           llm,
		promptBuilder: promptBuilder,
		historyWindow: historyWindow,
		logger:        logger,
		randInt:       rand.Intn,
	}
}

func (u *generateContentUsecase) Execute(ctx context.Context, scroller *domain.Scroller, existing []domain.ContentItem, requested int) ([]domain.ContentItem, error) {
	detailed := domain.WantsDetailed(scroller.PromptTemplate)

	prompt := u.promptBuilder.Build(ItemPromptInput{
		PromptTemplate: scroller.PromptTemplate,
		History:        recentContents(existing, u.historyWindow),
		Count:          requested,
		Detailed:       detailed,
	})

	generated, err := u.llm.GenerateItems(ctx, prompt.System, prompt.User, prompt.MaxTokens)
	var batch []domain.ContentItem
	if err != nil || len(generated) == 0 {
		u.logger.Warn("generation_failed",
			slog.String("scroller", scroller.Slug),
			slog.Int("requested", requested),
			slog.Any("error", err))
		batch = u.fallbackBatch(scroller, existing, requested)
	} else {
		batch = assembleBatch(scroller, existing, generated)
	}

	if len(batch) == 0 {
		u.logger.Info("generation_all_duplicates", slog.String("scroller", scroller.Slug))
		return nil, nil
	}

	inserted, err := u.itemRepo.AppendItems(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to append generated items: %w", err)
	}

	u.logger.Info("generation_persisted",
		slog.String("scroller", scroller.Slug),
		slog.Int("accepted", len(inserted)),
		slog.String("model", u.llm.Version()))
	return inserted, nil
}

// assembleBatch trims, dedupes (exact string match against history and
// within the batch) and classifies the generator output. The size class is
// forced uniform across the batch so one generation round renders
// consistently.
func assembleBatch(scroller *domain.Scroller, existing []domain.ContentItem, generated []domain.GeneratedItem) []domain.ContentItem {
	seen := make(map[string]struct{}, len(existing)+len(generated))
	for _, item := range existing {
		seen[strings.TrimSpace(item.Content)] = struct{}{}
	}

	var batch []domain.ContentItem
	anyDetailed := false
	for _, g := range generated {
		content := strings.TrimSpace(g.Content)
		if content == "" {
			continue
		}
		if _, dup := seen[content]; dup {
			continue
		}
		seen[content] = struct{}{}

		item := domain.ContentItem{
			ScrollerID: scroller.ID,
			Content:    content,
			SizeClass:  domain.ClassifySize(content),
		}
		if g.SourceURL != "" {
			label := g.SourceTitle
			if label == "" {
				label = g.SourceURL
			}
			item.Sources = []domain.Source{{Label: label, URL: g.SourceURL}}
		}
		if item.SizeClass == domain.SizeDetailed {
			anyDetailed = true
		}
		batch = append(batch, item)
	}

	if anyDetailed {
		for i := range batch {
			batch[i].SizeClass = domain.SizeDetailed
		}
	}
	return batch
}

// fallbackBatch synthesizes placeholder items so the feed keeps moving when
// the generator is down. Suffixes are re-rolled on collision.
func (u *generateContentUsecase) fallbackBatch(scroller *domain.Scroller, existing []domain.ContentItem, requested int) []domain.ContentItem {
	seen := make(map[string]struct{}, len(existing)+requested)
	for _, item := range existing {
		seen[strings.TrimSpace(item.Content)] = struct{}{}
	}

	var batch []domain.ContentItem
	for i := 0; i < requested; i++ {
		var content string
		found := false
		for attempt := 0; attempt < fallbackAttempts; attempt++ {
			content = fmt.Sprintf("%s #%d", scroller.Title, u.randInt(100000))
			if _, dup := seen[content]; !dup {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		seen[content] = struct{}{}
		batch = append(batch, domain.ContentItem{
			ScrollerID: scroller.ID,
			Content:    content,
			SizeClass:  domain.SizeShort,
		})
	}
	return batch
}

func recentContents(items []domain.ContentItem, window int) []string {
	if len(items) > window {
		items = items[len(items)-window:]
	}
	contents := make([]string, 0, len(items))
	for _, item := range items {
		contents = append(contents, item.Content)
	}
	return contents
}
