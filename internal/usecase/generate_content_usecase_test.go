package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scroll-orchestrator/internal/domain"
	"scroll-orchestrator/internal/usecase"
)

func testScroller(title, template string) *domain.Scroller {
	return &domain.Scroller{
		ID:             uuid.New(),
		Slug:           "test",
		Title:          title,
		PromptTemplate: template,
	}
}

func newGenerateUsecase(itemRepo *MockContentItemRepository, llm *MockLLMClient) usecase.GenerateContentUsecase {
	return usecase.NewGenerateContentUsecase(
		itemRepo, llm, usecase.NewFeedPromptBuilder(), 25, slog.New(slog.DiscardHandler))
}

func TestGenerateContent_PersistsFullBatch(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	generated := []domain.GeneratedItem{
		{Content: "Honey never spoils.", SourceTitle: "Smithsonian", SourceURL: "https://smithsonianmag.com"},
		{Content: "Octopuses have three hearts."},
	}
	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(generated, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(appendEcho, nil)

	inserted, err := uc.Execute(context.Background(), testScroller("Facts", "fun facts"), nil, 2)
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	assert.Equal(t, "Honey never spoils.", inserted[0].Content)
	require.Len(t, inserted[0].Sources, 1)
	assert.Equal(t, "Smithsonian", inserted[0].Sources[0].Label)
	assert.Empty(t, inserted[1].Sources)
	assert.Equal(t, domain.SizeShort, inserted[0].SizeClass)
}

func TestGenerateContent_DedupesAgainstHistoryAndBatch(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	scroller := testScroller("Facts", "fun facts")
	existing := []domain.ContentItem{{ScrollerID: scroller.ID, Content: "Known fact."}}

	generated := []domain.GeneratedItem{
		{Content: "  Known fact.  "}, // exact match after trim
		{Content: "Fresh fact."},
		{Content: "Fresh fact."}, // duplicate within the batch
	}
	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(generated, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.MatchedBy(func(items []domain.ContentItem) bool {
		return len(items) == 1 && items[0].Content == "Fresh fact."
	})).Return(appendEcho, nil)

	inserted, err := uc.Execute(context.Background(), scroller, existing, 3)
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	itemRepo.AssertExpectations(t)
}

func TestGenerateContent_AllDuplicatesAppendsNothing(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	scroller := testScroller("Facts", "fun facts")
	existing := []domain.ContentItem{{ScrollerID: scroller.ID, Content: "Known fact."}}

	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.GeneratedItem{{Content: "Known fact."}}, nil)

	inserted, err := uc.Execute(context.Background(), scroller, existing, 1)
	require.NoError(t, err)
	assert.Empty(t, inserted)
	itemRepo.AssertNotCalled(t, "AppendItems", mock.Anything, mock.Anything)
}

func TestGenerateContent_BatchSizeClassIsUniform(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	generated := []domain.GeneratedItem{
		{Content: "Short one."},
		{Content: "Code sample:\n```go\nfmt.Println(1)\n```"},
	}
	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(generated, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(appendEcho, nil)

	inserted, err := uc.Execute(context.Background(), testScroller("Go", "go snippets"), nil, 2)
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	for _, item := range inserted {
		assert.Equal(t, domain.SizeDetailed, item.SizeClass)
	}
}

func TestGenerateContent_FallbackOnGeneratorError(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(appendEcho, nil)

	inserted, err := uc.Execute(context.Background(), testScroller("GRE vocabulary", "gre words"), nil, 5)
	require.NoError(t, err, "generator failure must not surface")
	require.Len(t, inserted, 5)

	pattern := regexp.MustCompile(`^GRE vocabulary #\d+$`)
	seen := map[string]bool{}
	for _, item := range inserted {
		assert.Regexp(t, pattern, item.Content)
		assert.False(t, seen[item.Content], "fallback items must be unique")
		seen[item.Content] = true
	}
}

func TestGenerateContent_FallbackOnEmptyResponse(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.GeneratedItem{}, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(appendEcho, nil)

	inserted, err := uc.Execute(context.Background(), testScroller("Facts", "facts"), nil, 3)
	require.NoError(t, err)
	assert.Len(t, inserted, 3)
}

func TestGenerateContent_StorageFailurePropagates(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.GeneratedItem{{Content: "Something."}}, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := uc.Execute(context.Background(), testScroller("Facts", "facts"), nil, 1)
	assert.Error(t, err)
}

func TestGenerateContent_HistoryWindowBoundsPrompt(t *testing.T) {
	itemRepo := new(MockContentItemRepository)
	llm := new(MockLLMClient)
	uc := newGenerateUsecase(itemRepo, llm)

	var existing []domain.ContentItem
	for i := 0; i < 30; i++ {
		existing = append(existing, domain.ContentItem{Content: "hist-" + strings.Repeat("x", i+1)})
	}

	llm.On("GenerateItems", mock.Anything, mock.Anything, mock.MatchedBy(func(user string) bool {
		// Only the most recent 25 items may be replayed into the prompt.
		return !strings.Contains(user, "hist-xxxx<") && strings.Contains(user, existing[29].Content)
	}), mock.Anything).Return([]domain.GeneratedItem{{Content: "New."}}, nil)
	itemRepo.On("AppendItems", mock.Anything, mock.Anything).Return(appendEcho, nil)

	_, err := uc.Execute(context.Background(), testScroller("Facts", "facts"), existing, 1)
	require.NoError(t, err)
	llm.AssertExpectations(t)
}
