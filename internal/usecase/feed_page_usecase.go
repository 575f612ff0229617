package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scroll-orchestrator/internal/coordination"
	"scroll-orchestrator/internal/domain"
)

// FeedConfig carries the paginator tunables. The zero value is not usable;
// load it from infra/config.
type FeedConfig struct {
	PageSize     int
	BatchSize    int
	LowWaterMark int
	// ConcurrentWait is how long a request that lost the generation lock
	// waits before re-reading.
	ConcurrentWait time.Duration
}

// FeedPageUsecase serves one read/advance operation of the feed.
type FeedPageUsecase interface {
	// Page returns the slice [offset, offset+pageSize) of the scroller's
	// chronological feed, generating more content first when the window
	// would otherwise run short.
	Page(ctx context.Context, slug string, offset int, loadMore bool) ([]domain.ContentItem, error)
}

type feedPageUsecase struct {
	scrollerRepo domain.ScrollerRepository
	itemRepo     domain.ContentItemRepository
	generate     GenerateContentUsecase
	guard        coordination.Coordinator
	cfg          FeedConfig
	logger       *slog.Logger

	sleep func(ctx context.Context, d time.Duration)
}

// NewFeedPageUsecase wires the feed paginator.
func NewFeedPageUsecase(
	scrollerRepo domain.ScrollerRepository,
	itemRepo domain.ContentItemRepository,
	generate GenerateContentUsecase,
	guard coordination.Coordinator,
	cfg FeedConfig,
	logger *slog.Logger,
) FeedPageUsecase {
	return &feedPageUsecase{
		scrollerRepo: scrollerRepo,
		itemRepo:     itemRepo,
		generate:     generate,
		guard:        guard,
		cfg:          cfg,
		logger:       logger,
		sleep:        sleepCtx,
	}
}

func (u *feedPageUsecase) Page(ctx context.Context, slug string, offset int, loadMore bool) ([]domain.ContentItem, error) {
	scroller, err := u.scrollerRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get scroller: %w", err)
	}
	if scroller == nil {
		return nil, domain.ErrScrollerNotFound
	}

	if err := u.guard.Allow(scroller.ID); err != nil {
		return nil, err
	}

	count, err := u.itemRepo.CountByScroller(ctx, scroller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	if u.needsGeneration(count, offset, loadMore) {
		if err := u.generateGuarded(ctx, scroller, offset, loadMore); err != nil {
			return nil, err
		}
	}

	items, err := u.itemRepo.ListByScroller(ctx, scroller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return pageSlice(items, offset, u.cfg.PageSize), nil
}

// needsGeneration keeps a forward buffer of one extra page beyond the
// requested window on load-more, and fills fresh scrollers up to the
// low-water mark on initial load.
func (u *feedPageUsecase) needsGeneration(count, offset int, loadMore bool) bool {
	if loadMore {
		return count < offset+2*u.cfg.PageSize
	}
	return offset == 0 && count < u.cfg.LowWaterMark
}

// generateGuarded runs at most one generation per scroller at a time. A
// caller that finds the lock held waits briefly and reads whatever the
// holder produced instead of generating twice.
func (u *feedPageUsecase) generateGuarded(ctx context.Context, scroller *domain.Scroller, offset int, loadMore bool) error {
	release, acquired := u.guard.AcquireGeneration(scroller.ID)
	if !acquired {
		u.logger.Info("generation_in_flight",
			slog.String("scroller", scroller.Slug),
			slog.Duration("wait", u.cfg.ConcurrentWait))
		u.sleep(ctx, u.cfg.ConcurrentWait)
		return nil
	}
	defer release()

	// Another request may have finished a round between our count check
	// and the lock acquisition.
	existing, err := u.itemRepo.ListByScroller(ctx, scroller.ID)
	if err != nil {
		return fmt.Errorf("failed to re-read items: %w", err)
	}
	if !u.needsGeneration(len(existing), offset, loadMore) {
		return nil
	}

	_, err = u.generate.Execute(ctx, scroller, existing, u.cfg.BatchSize)
	return err
}

func pageSlice(items []domain.ContentItem, offset, pageSize int) []domain.ContentItem {
	if offset >= len(items) {
		return []domain.ContentItem{}
	}
	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
