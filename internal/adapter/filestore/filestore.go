// Package filestore is the local/dev storage fallback: one JSON document
// rewritten wholesale on every mutation. No partial-write durability is
// guaranteed; production deployments use the Postgres repositories.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scroll-orchestrator/internal/domain"
)

type document struct {
	Scrollers    []domain.Scroller    `json:"scrollers"`
	ContentItems []domain.ContentItem `json:"content_items"`
	NextSeq      int64                `json:"next_seq"`
}

// Store implements ScrollerRepository, ContentItemRepository and
// TransactionManager over a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store persisting to path. The file is created lazily on the
// first mutation.
func New(path string) *Store {
	return &Store{path: path}
}

type txMarker struct{}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txMarker{}).(bool)
	return held
}

// acquire takes the store lock unless the context is already inside
// RunInTx, which holds it for the whole transaction.
func (s *Store) acquire(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{NextSeq: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode store: %w", err)
	}
	if doc.NextSeq == 0 {
		doc.NextSeq = int64(len(doc.ContentItems)) + 1
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

// --- ScrollerRepository ---

func (s *Store) Create(ctx context.Context, scroller *domain.Scroller) error {
	defer s.acquire(ctx)()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Scrollers = append(doc.Scrollers, *scroller)
	return s.save(doc)
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*domain.Scroller, error) {
	defer s.acquire(ctx)()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Scrollers {
		if doc.Scrollers[i].Slug == slug {
			scroller := doc.Scrollers[i]
			return &scroller, nil
		}
	}
	return nil, nil
}

func (s *Store) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	scroller, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return scroller != nil, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.Scroller, error) {
	defer s.acquire(ctx)()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	scrollers := make([]domain.Scroller, len(doc.Scrollers))
	copy(scrollers, doc.Scrollers)
	sort.SliceStable(scrollers, func(i, j int) bool {
		return scrollers[i].CreatedAt.After(scrollers[j].CreatedAt)
	})
	if len(scrollers) > limit {
		scrollers = scrollers[:limit]
	}
	return scrollers, nil
}

// --- ContentItemRepository ---

func (s *Store) ListByScroller(ctx context.Context, scrollerID uuid.UUID) ([]domain.ContentItem, error) {
	defer s.acquire(ctx)()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	var items []domain.ContentItem
	for _, item := range doc.ContentItems {
		if item.ScrollerID == scrollerID {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].Seq < items[j].Seq
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CountByScroller(ctx context.Context, scrollerID uuid.UUID) (int, error) {
	items, err := s.ListByScroller(ctx, scrollerID)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Store) AppendItems(ctx context.Context, items []domain.ContentItem) ([]domain.ContentItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	defer s.acquire(ctx)()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inserted := make([]domain.ContentItem, len(items))
	for i, item := range items {
		inserted[i] = item
		inserted[i].ID = uuid.New()
		inserted[i].CreatedAt = now
		inserted[i].Seq = doc.NextSeq
		doc.NextSeq++
	}
	doc.ContentItems = append(doc.ContentItems, inserted...)

	if err := s.save(doc); err != nil {
		return nil, err
	}
	return inserted, nil
}

// --- TransactionManager ---

// RunInTx holds the store lock for the whole of fn, so a check-then-act
// sequence (slug probe followed by the insert it guards) cannot interleave
// with another mutation. There is no rollback: a failed fn may leave its
// earlier writes behind, matching the wholesale-rewrite durability model.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txMarker{}, true))
}

var (
	_ domain.ScrollerRepository    = (*Store)(nil)
	_ domain.ContentItemRepository = (*Store)(nil)
	_ domain.TransactionManager    = (*Store)(nil)
)
