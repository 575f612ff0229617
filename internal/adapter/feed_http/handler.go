package feed_http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"scroll-orchestrator/internal/domain"
	"scroll-orchestrator/internal/usecase"
)

// Handler serves the feed API.
type Handler struct {
	createUsecase   usecase.CreateScrollerUsecase
	pageUsecase     usecase.FeedPageUsecase
	generateUsecase usecase.GenerateContentUsecase
	trendingUsecase usecase.TrendingUsecase
	suggestUsecase  usecase.SuggestTopicsUsecase
	scrollerRepo    domain.ScrollerRepository
	itemRepo        domain.ContentItemRepository
	batchSize       int
	trendingLimit   int
	logger          *slog.Logger
}

func NewHandler(
	createUsecase usecase.CreateScrollerUsecase,
	pageUsecase usecase.FeedPageUsecase,
	generateUsecase usecase.GenerateContentUsecase,
	trendingUsecase usecase.TrendingUsecase,
	suggestUsecase usecase.SuggestTopicsUsecase,
	scrollerRepo domain.ScrollerRepository,
	itemRepo domain.ContentItemRepository,
	batchSize int,
	trendingLimit int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		createUsecase:   createUsecase,
		pageUsecase:     pageUsecase,
		generateUsecase: generateUsecase,
		trendingUsecase: trendingUsecase,
		suggestUsecase:  suggestUsecase,
		scrollerRepo:    scrollerRepo,
		itemRepo:        itemRepo,
		batchSize:       batchSize,
		trendingLimit:   trendingLimit,
		logger:          logger,
	}
}

// Register mounts all feed routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/topics", h.CreateTopic)
	e.GET("/topics/trending", h.Trending)
	e.GET("/topics/:slug/items", h.TopicItems)
	e.GET("/topics/:slug/stream", h.StreamTopic)
	e.POST("/suggestions", h.Suggest)
}

type createTopicRequest struct {
	Title          string `json:"title"`
	PromptTemplate string `json:"promptTemplate"`
}

type topicResponse struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	PromptTemplate string    `json:"promptTemplate"`
	CreatedAt      time.Time `json:"createdAt"`
}

type itemResponse struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Sources   []domain.Source `json:"sources,omitempty"`
	SizeClass string          `json:"sizeClass"`
	CreatedAt time.Time       `json:"createdAt"`
}

type trendingResponse struct {
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	PreviewContent string `json:"previewContent"`
	ContentCount   int    `json:"contentCount"`
}

// Create a scroller topic
// (POST /topics)
func (h *Handler) CreateTopic(ctx echo.Context) error {
	var req createTopicRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.PromptTemplate == "" {
		// A bare title is enough: it doubles as the generation prompt.
		req.PromptTemplate = req.Title
	}

	scroller, err := h.createUsecase.Execute(ctx.Request().Context(), req.Title, req.PromptTemplate)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		h.logger.Error("create_topic_failed", slog.Any("error", err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return ctx.JSON(http.StatusCreated, toTopicResponse(scroller))
}

// List one page of a topic's feed
// (GET /topics/:slug/items?offset=&loadMore=)
func (h *Handler) TopicItems(ctx echo.Context) error {
	slug := ctx.Param("slug")

	offset := 0
	if raw := ctx.QueryParam("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		}
		offset = parsed
	}
	loadMore := ctx.QueryParam("loadMore") == "true"

	items, err := h.pageUsecase.Page(ctx.Request().Context(), slug, offset, loadMore)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrScrollerNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "topic not found"})
		case errors.Is(err, domain.ErrRateLimited):
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		default:
			h.logger.Error("feed_page_failed", slog.String("slug", slug), slog.Any("error", err))
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	return ctx.JSON(http.StatusOK, toItemResponses(items))
}

// Stream one generation round as server-sent events
// (GET /topics/:slug/stream)
func (h *Handler) StreamTopic(ctx echo.Context) error {
	slug := ctx.Param("slug")
	reqCtx := ctx.Request().Context()

	scroller, err := h.scrollerRepo.GetBySlug(reqCtx, slug)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if scroller == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "topic not found"})
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	writeEvent(res, "status", map[string]string{"status": "generating"})

	existing, err := h.itemRepo.ListByScroller(reqCtx, scroller.ID)
	if err != nil {
		writeEvent(res, "error", map[string]string{"error": "internal error"})
		return nil
	}

	items, err := h.generateUsecase.Execute(reqCtx, scroller, existing, h.batchSize)
	if err != nil {
		h.logger.Error("stream_generation_failed", slog.String("slug", slug), slog.Any("error", err))
		writeEvent(res, "error", map[string]string{"error": "generation failed"})
		return nil
	}

	writeEvent(res, "complete", toItemResponses(items))
	return nil
}

// List recently created topics with a preview
// (GET /topics/trending)
func (h *Handler) Trending(ctx echo.Context) error {
	trending, err := h.trendingUsecase.Execute(ctx.Request().Context(), h.trendingLimit)
	if err != nil {
		h.logger.Error("trending_failed", slog.Any("error", err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	resp := make([]trendingResponse, 0, len(trending))
	for _, t := range trending {
		resp = append(resp, trendingResponse(t))
	}
	return ctx.JSON(http.StatusOK, resp)
}

// Suggest topics for a partial query
// (POST /suggestions)
func (h *Handler) Suggest(ctx echo.Context) error {
	var req struct {
		Query string `json:"query"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	suggestions, err := h.suggestUsecase.Execute(ctx.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("suggestions_failed", slog.Any("error", err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return ctx.JSON(http.StatusOK, map[string][]string{"suggestions": suggestions})
}

func writeEvent(res *echo.Response, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(res.Writer, "event: %s\ndata: %s\n\n", event, data)
	res.Flush()
}

func toTopicResponse(s *domain.Scroller) topicResponse {
	return topicResponse{
		ID:             s.ID.String(),
		Slug:           s.Slug,
		Title:          s.Title,
		PromptTemplate: s.PromptTemplate,
		CreatedAt:      s.CreatedAt,
	}
}

func toItemResponses(items []domain.ContentItem) []itemResponse {
	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemResponse{
			ID:        item.ID.String(),
			Content:   item.Content,
			Sources:   item.Sources,
			SizeClass: string(item.SizeClass),
			CreatedAt: item.CreatedAt,
		})
	}
	return resp
}
