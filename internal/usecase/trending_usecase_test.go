package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scroll-orchestrator/internal/domain"
	"scroll-orchestrator/internal/usecase"
)

func TestTrending(t *testing.T) {
	t.Run("previews the first item of each scroller", func(t *testing.T) {
		filled := domain.Scroller{ID: uuid.New(), Slug: "rome", Title: "Rome", CreatedAt: time.Now()}
		empty := domain.Scroller{ID: uuid.New(), Slug: "fresh", Title: "Fresh", CreatedAt: time.Now().Add(-time.Minute)}

		scrollerRepo := new(MockScrollerRepository)
		scrollerRepo.On("ListRecent", mock.Anything, 4).Return([]domain.Scroller{filled, empty}, nil)

		itemRepo := new(MockContentItemRepository)
		itemRepo.On("ListByScroller", mock.Anything, filled.ID).Return([]domain.ContentItem{
			{ID: uuid.New(), ScrollerID: filled.ID, Content: "Rome was founded in 753 BC."},
			{ID: uuid.New(), ScrollerID: filled.ID, Content: "The Colosseum held 50,000 spectators."},
		}, nil)
		itemRepo.On("ListByScroller", mock.Anything, empty.ID).Return([]domain.ContentItem{}, nil)

		uc := usecase.NewTrendingUsecase(scrollerRepo, itemRepo)

		results, err := uc.Execute(context.Background(), 4)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "rome", results[0].Slug)
		assert.Equal(t, "Rome was founded in 753 BC.", results[0].PreviewContent)
		assert.Equal(t, 2, results[0].ContentCount)

		assert.Equal(t, "fresh", results[1].Slug)
		assert.Equal(t, "No content yet...", results[1].PreviewContent)
		assert.Equal(t, 0, results[1].ContentCount)
	})

	t.Run("empty when no scrollers exist", func(t *testing.T) {
		scrollerRepo := new(MockScrollerRepository)
		scrollerRepo.On("ListRecent", mock.Anything, 4).Return([]domain.Scroller{}, nil)

		uc := usecase.NewTrendingUsecase(scrollerRepo, new(MockContentItemRepository))

		results, err := uc.Execute(context.Background(), 4)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("propagates item listing failure", func(t *testing.T) {
		scroller := domain.Scroller{ID: uuid.New(), Slug: "rome", Title: "Rome"}
		scrollerRepo := new(MockScrollerRepository)
		scrollerRepo.On("ListRecent", mock.Anything, 4).Return([]domain.Scroller{scroller}, nil)

		itemRepo := new(MockContentItemRepository)
		itemRepo.On("ListByScroller", mock.Anything, scroller.ID).Return(nil, assert.AnError)

		uc := usecase.NewTrendingUsecase(scrollerRepo, itemRepo)

		_, err := uc.Execute(context.Background(), 4)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
