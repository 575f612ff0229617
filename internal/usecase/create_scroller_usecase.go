package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scroll-orchestrator/internal/domain"
)

// CreateScrollerUsecase creates a scroller with a collision-free slug.
type CreateScrollerUsecase interface {
	Execute(ctx context.Context, title, promptTemplate string) (*domain.Scroller, error)
}

type createScrollerUsecase struct {
	scrollerRepo domain.ScrollerRepository
	txManager    domain.TransactionManager
	slugPolicy   domain.SlugPolicy
	logger       *slog.Logger
}

// NewCreateScrollerUsecase wires scroller creation.
func NewCreateScrollerUsecase(
	scrollerRepo domain.ScrollerRepository,
	txManager domain.TransactionManager,
	slugPolicy domain.SlugPolicy,
	logger *slog.Logger,
) CreateScrollerUsecase {
	return &createScrollerUsecase{
		scrollerRepo: scrollerRepo,
		txManager:    txManager,
		slugPolicy:   slugPolicy,
		logger:       logger,
	}
}

func (u *createScrollerUsecase) Execute(ctx context.Context, title, promptTemplate string) (*domain.Scroller, error) {
	title = strings.TrimSpace(title)
	promptTemplate = strings.TrimSpace(promptTemplate)
	if title == "" || promptTemplate == "" {
		return nil, fmt.Errorf("%w: title and prompt template are required", domain.ErrInvalidInput)
	}

	base := u.slugPolicy.Base(title)

	var scroller *domain.Scroller
	// The slug check and the insert share a transaction so two concurrent
	// creations with the same title cannot both claim the base slug.
	err := u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		slug, err := u.slugPolicy.Unique(ctx, base, u.scrollerRepo.IsSlugTaken)
		if err != nil {
			return err
		}

		scroller = &domain.Scroller{
			ID:             uuid.New(),
			Slug:           slug,
			Title:          title,
			PromptTemplate: promptTemplate,
			CreatedAt:      time.Now().UTC(),
		}
		if err := u.scrollerRepo.Create(ctx, scroller); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scroller: %w", err)
	}

	u.logger.Info("scroller_created",
		slog.String("slug", scroller.Slug),
		slog.String("title", scroller.Title))
	return scroller, nil
}
