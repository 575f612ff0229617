package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scroll-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contentItemRepository struct {
	pool *pgxpool.Pool
}

// NewContentItemRepository creates a new ContentItemRepository backed by Postgres.
func NewContentItemRepository(pool *pgxpool.Pool) domain.ContentItemRepository {
	return &contentItemRepository{pool: pool}
}

type batchExecutor interface {
	dbExecutor
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (r *contentItemRepository) getExecutor(ctx context.Context) batchExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *contentItemRepository) ListByScroller(ctx context.Context, scrollerID uuid.UUID) ([]domain.ContentItem, error) {
	query := `
		SELECT id, scroller_id, content, sources, size_class, created_at, seq
		FROM content_items
		WHERE scroller_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, scrollerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}
	return items, nil
}

func (r *contentItemRepository) CountByScroller(ctx context.Context, scrollerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM content_items WHERE scroller_id = $1`
	row := r.getExecutor(ctx).QueryRow(ctx, query, scrollerID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content items: %w", err)
	}
	return count, nil
}

func (r *contentItemRepository) AppendItems(ctx context.Context, items []domain.ContentItem) ([]domain.ContentItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO content_items (id, scroller_id, content, sources, size_class, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`

	// One timestamp for the whole batch; seq (bigserial) is the tie-break
	// that preserves insertion order.
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	inserted := make([]domain.ContentItem, len(items))
	for i, item := range items {
		inserted[i] = item
		inserted[i].ID = uuid.New()
		inserted[i].CreatedAt = now

		sources, err := json.Marshal(inserted[i].Sources)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sources: %w", err)
		}
		batch.Queue(query,
			inserted[i].ID, inserted[i].ScrollerID, inserted[i].Content,
			sources, string(inserted[i].SizeClass), now)
	}

	results := r.getExecutor(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := range inserted {
		if err := results.QueryRow().Scan(&inserted[i].Seq); err != nil {
			return nil, fmt.Errorf("failed to insert content item: %w", err)
		}
	}
	return inserted, nil
}

func scanContentItem(rows pgx.Rows) (domain.ContentItem, error) {
	var item domain.ContentItem
	var sizeClass string
	var sources []byte
	if err := rows.Scan(&item.ID, &item.ScrollerID, &item.Content, &sources, &sizeClass, &item.CreatedAt, &item.Seq); err != nil {
		return domain.ContentItem{}, fmt.Errorf("failed to scan content item: %w", err)
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &item.Sources); err != nil {
			return domain.ContentItem{}, fmt.Errorf("failed to unmarshal sources: %w", err)
		}
	}
	item.SizeClass = domain.SizeClass(sizeClass)
	return item, nil
}
