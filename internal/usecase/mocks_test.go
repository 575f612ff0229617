package usecase_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scroll-orchestrator/internal/domain"
)

// --- Mocks ---

type MockScrollerRepository struct {
	mock.Mock
}

func (m *MockScrollerRepository) Create(ctx context.Context, scroller *domain.Scroller) error {
	args := m.Called(ctx, scroller)
	return args.Error(0)
}

func (m *MockScrollerRepository) GetBySlug(ctx context.Context, slug string) (*domain.Scroller, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scroller), args.Error(1)
}

func (m *MockScrollerRepository) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockScrollerRepository) ListRecent(ctx context.Context, limit int) ([]domain.Scroller, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Scroller), args.Error(1)
}

type MockContentItemRepository struct {
	mock.Mock
}

func (m *MockContentItemRepository) ListByScroller(ctx context.Context, scrollerID uuid.UUID) ([]domain.ContentItem, error) {
	args := m.Called(ctx, scrollerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentItem), args.Error(1)
}

func (m *MockContentItemRepository) CountByScroller(ctx context.Context, scrollerID uuid.UUID) (int, error) {
	args := m.Called(ctx, scrollerID)
	return args.Int(0), args.Error(1)
}

func (m *MockContentItemRepository) AppendItems(ctx context.Context, items []domain.ContentItem) ([]domain.ContentItem, error) {
	args := m.Called(ctx, items)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func([]domain.ContentItem) []domain.ContentItem:
		return v(items), args.Error(1)
	default:
		return v.([]domain.ContentItem), args.Error(1)
	}
}

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) GenerateItems(ctx context.Context, system, user string, maxTokens int) ([]domain.GeneratedItem, error) {
	args := m.Called(ctx, system, user, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeneratedItem), args.Error(1)
}

func (m *MockLLMClient) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	args := m.Called(ctx, system, user, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Version() string {
	return "mock-model"
}

type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Directly execute the function.
	return fn(ctx)
}

// appendEcho makes AppendItems return its input with storage identity
// assigned, mimicking the real repositories.
func appendEcho(items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].ID = uuid.New()
		out[i].Seq = int64(i + 1)
	}
	return out
}
