package repository

import (
	"context"
	"errors"
	"fmt"

	"scroll-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type scrollerRepository struct {
	pool *pgxpool.Pool
}

// NewScrollerRepository creates a new ScrollerRepository backed by Postgres.
func NewScrollerRepository(pool *pgxpool.Pool) domain.ScrollerRepository {
	return &scrollerRepository{pool: pool}
}

type dbExecutor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func (r *scrollerRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *scrollerRepository) Create(ctx context.Context, scroller *domain.Scroller) error {
	query := `
		INSERT INTO scrollers (id, slug, title, prompt_template, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.getExecutor(ctx).Exec(ctx, query,
		scroller.ID, scroller.Slug, scroller.Title, scroller.PromptTemplate, scroller.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scroller: %w", err)
	}
	return nil
}

func (r *scrollerRepository) GetBySlug(ctx context.Context, slug string) (*domain.Scroller, error) {
	query := `
		SELECT id, slug, title, prompt_template, created_at
		FROM scrollers
		WHERE slug = $1
	`
	row := r.getExecutor(ctx).QueryRow(ctx, query, slug)

	var s domain.Scroller
	err := row.Scan(&s.ID, &s.Slug, &s.Title, &s.PromptTemplate, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scroller: %w", err)
	}
	return &s, nil
}

func (r *scrollerRepository) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM scrollers WHERE slug = $1)`
	row := r.getExecutor(ctx).QueryRow(ctx, query, slug)

	var taken bool
	if err := row.Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return taken, nil
}

func (r *scrollerRepository) ListRecent(ctx context.Context, limit int) ([]domain.Scroller, error) {
	query := `
		SELECT id, slug, title, prompt_template, created_at
		FROM scrollers
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrollers: %w", err)
	}
	defer rows.Close()

	var scrollers []domain.Scroller
	for rows.Next() {
		var s domain.Scroller
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.PromptTemplate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scroller: %w", err)
		}
		scrollers = append(scrollers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrollers: %w", err)
	}
	return scrollers, nil
}
