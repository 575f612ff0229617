package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scroll-orchestrator/internal/adapter/feed_http"
	"scroll-orchestrator/internal/adapter/filestore"
	"scroll-orchestrator/internal/adapter/llm"
	"scroll-orchestrator/internal/adapter/repository"
	"scroll-orchestrator/internal/coordination"
	"scroll-orchestrator/internal/domain"
	"scroll-orchestrator/internal/infra/config"
	"scroll-orchestrator/internal/infra/httpclient"
	"scroll-orchestrator/internal/usecase"
	"scroll-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	ScrollerRepo domain.ScrollerRepository
	ItemRepo     domain.ContentItemRepository
	Guard        coordination.Coordinator
	LLM          domain.LLMClient

	CreateUsecase   usecase.CreateScrollerUsecase
	GenerateUsecase usecase.GenerateContentUsecase
	PageUsecase     usecase.FeedPageUsecase
	TrendingUsecase usecase.TrendingUsecase
	SuggestUsecase  usecase.SuggestTopicsUsecase

	Warmer  *worker.FeedWarmer
	Handler *feed_http.Handler
}

// NewApplicationComponents wires all dependencies from config. pool may be
// nil when the file storage driver is selected.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	var (
		scrollerRepo domain.ScrollerRepository
		itemRepo     domain.ContentItemRepository
		txManager    domain.TransactionManager
	)
	switch cfg.StorageDriver {
	case "file":
		store := filestore.New(cfg.FileStorePath)
		scrollerRepo = store
		itemRepo = store
		txManager = store
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres storage driver requires a connection pool")
		}
		scrollerRepo = repository.NewScrollerRepository(pool)
		itemRepo = repository.NewContentItemRepository(pool)
		txManager = repository.NewPostgresTransactionManager(pool)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	guard, err := coordination.NewMemory(
		cfg.RateLimit,
		time.Duration(cfg.RateWindow)*time.Second,
		time.Duration(cfg.LockTimeout)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build coordinator: %w", err)
	}

	llmHTTP := httpclient.NewPooledClient(time.Duration(cfg.LLMTimeout) * time.Second)
	generator := llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, llmHTTP, log)

	promptBuilder := usecase.NewFeedPromptBuilder()
	generateUsecase := usecase.NewGenerateContentUsecase(itemRepo, generator, promptBuilder, cfg.HistoryWindow, log)
	pageUsecase := usecase.NewFeedPageUsecase(scrollerRepo, itemRepo, generateUsecase, guard,
		usecase.FeedConfig{
			PageSize:       cfg.PageSize,
			BatchSize:      cfg.BatchSize,
			LowWaterMark:   cfg.LowWaterMark,
			ConcurrentWait: time.Duration(cfg.ConcurrentWait) * time.Second,
		}, log)
	createUsecase := usecase.NewCreateScrollerUsecase(scrollerRepo, txManager, domain.NewSlugPolicy(), log)
	trendingUsecase := usecase.NewTrendingUsecase(scrollerRepo, itemRepo)
	suggestUsecase := usecase.NewSuggestTopicsUsecase(generator, log)

	var warmer *worker.FeedWarmer
	if cfg.WarmerInterval > 0 {
		warmer = worker.NewFeedWarmer(scrollerRepo, itemRepo, generateUsecase, guard,
			time.Duration(cfg.WarmerInterval)*time.Second, cfg.LowWaterMark, cfg.BatchSize, log)
	}

	handler := feed_http.NewHandler(
		createUsecase, pageUsecase, generateUsecase, trendingUsecase, suggestUsecase,
		scrollerRepo, itemRepo, cfg.BatchSize, cfg.TrendingLimit, log)

	return &ApplicationComponents{
		ScrollerRepo:    scrollerRepo,
		ItemRepo:        itemRepo,
		Guard:           guard,
		LLM:             generator,
		CreateUsecase:   createUsecase,
		GenerateUsecase: generateUsecase,
		PageUsecase:     pageUsecase,
		TrendingUsecase: trendingUsecase,
		SuggestUsecase:  suggestUsecase,
		Warmer:          warmer,
		Handler:         handler,
	}, nil
}
