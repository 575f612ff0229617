package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scroll-orchestrator/internal/coordination"
	"scroll-orchestrator/internal/domain"
	"scroll-orchestrator/internal/usecase"
)

const (
	warmTimeout    = 60 * time.Second
	scanLimit      = 20
	initialBackoff = 1 * time.Second
	maxBackoff     = 5 * time.Minute
)

// FeedWarmer tops up under-filled scrollers in the background so the first
// page of a feed is warm before a reader asks for it. It shares the
// generation lock with the request path, so a warmer round never races a
// user-triggered round for the same scroller.
type FeedWarmer struct {
	scrollerRepo domain.ScrollerRepository
	itemRepo     domain.ContentItemRepository
	generate     usecase.GenerateContentUsecase
	guard        coordination.Coordinator
	interval     time.Duration
	lowWater     int
	batchSize    int
	logger       *slog.Logger
	stopChan     chan struct{}
	backoff      time.Duration
}

func NewFeedWarmer(
	scrollerRepo domain.ScrollerRepository,
	itemRepo domain.ContentItemRepository,
	generate usecase.GenerateContentUsecase,
	guard coordination.Coordinator,
	interval time.Duration,
	lowWater int,
	batchSize int,
	logger *slog.Logger,
) *FeedWarmer {
	return &FeedWarmer{
		scrollerRepo: scrollerRepo,
		itemRepo:     itemRepo,
		generate:     generate,
		guard:        guard,
		interval:     interval,
		lowWater:     lowWater,
		batchSize:    batchSize,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

func (w *FeedWarmer) Start() {
	w.logger.Info("Starting FeedWarmer", slog.Duration("interval", w.interval))
	go w.run()
}

func (w *FeedWarmer) Stop() {
	w.logger.Info("Stopping FeedWarmer")
	close(w.stopChan)
}

func (w *FeedWarmer) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.warmOnce()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.interval)
			}
		}
	}
}

func (w *FeedWarmer) warmOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	if err := w.scan(ctx); err != nil {
		w.backoff = nextBackoff(w.backoff)
		w.logger.Warn("Warmer backing off",
			slog.Duration("backoff", w.backoff), slog.Any("error", err))
		return
	}
	w.backoff = 0
}

func (w *FeedWarmer) scan(ctx context.Context) error {
	scrollers, err := w.scrollerRepo.ListRecent(ctx, scanLimit)
	if err != nil {
		return fmt.Errorf("failed to list scrollers: %w", err)
	}

	for _, scroller := range scrollers {
		if err := w.warmScroller(ctx, &scroller); err != nil {
			return err
		}
	}
	return nil
}

func (w *FeedWarmer) warmScroller(ctx context.Context, scroller *domain.Scroller) error {
	count, err := w.itemRepo.CountByScroller(ctx, scroller.ID)
	if err != nil {
		return fmt.Errorf("failed to count items for %s: %w", scroller.Slug, err)
	}
	if count >= w.lowWater {
		return nil
	}

	// A request-path round may be running; skip rather than wait.
	release, acquired := w.guard.AcquireGeneration(scroller.ID)
	if !acquired {
		return nil
	}
	defer release()

	existing, err := w.itemRepo.ListByScroller(ctx, scroller.ID)
	if err != nil {
		return fmt.Errorf("failed to list items for %s: %w", scroller.Slug, err)
	}
	if len(existing) >= w.lowWater {
		return nil
	}

	w.logger.Info("Warming scroller",
		slog.String("slug", scroller.Slug), slog.Int("count", len(existing)))
	if _, err := w.generate.Execute(ctx, scroller, existing, w.batchSize); err != nil {
		return fmt.Errorf("failed to warm %s: %w", scroller.Slug, err)
	}
	return nil
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
