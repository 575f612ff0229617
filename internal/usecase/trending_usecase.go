package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scroll-orchestrator/internal/domain"
)

// TrendingScroller is one entry of the trending listing.
type TrendingScroller struct {
	Slug           string
	Title          string
	PreviewContent string
	ContentCount   int
}

// TrendingUsecase lists the most recent scrollers with a feed preview.
type TrendingUsecase interface {
	Execute(ctx context.Context, limit int) ([]TrendingScroller, error)
}

type trendingUsecase struct {
	scrollerRepo domain.ScrollerRepository
	itemRepo     domain.ContentItemRepository
}

// NewTrendingUsecase wires the trending listing.
func NewTrendingUsecase(scrollerRepo domain.ScrollerRepository, itemRepo domain.ContentItemRepository) TrendingUsecase {
	return &trendingUsecase{scrollerRepo: scrollerRepo, itemRepo: itemRepo}
}

func (u *trendingUsecase) Execute(ctx context.Context, limit int) ([]TrendingScroller, error) {
	scrollers, err := u.scrollerRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrollers: %w", err)
	}

	results := make([]TrendingScroller, len(scrollers))
	g, gctx := errgroup.WithContext(ctx)
	for i, scroller := range scrollers {
		g.Go(func() error {
			items, err := u.itemRepo.ListByScroller(gctx, scroller.ID)
			if err != nil {
				return fmt.Errorf("failed to list items for %s: %w", scroller.Slug, err)
			}
			entry := TrendingScroller{
				Slug:           scroller.Slug,
				Title:          scroller.Title,
				PreviewContent: "No content yet...",
				ContentCount:   len(items),
			}
			if len(items) > 0 {
				entry.PreviewContent = items[0].Content
			}
			results[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
