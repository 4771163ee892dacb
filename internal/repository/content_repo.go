package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-portfolio-cms/internal/model"
)

// ContentRepository is a generic record store for registered entities.
// Field values live in a JSONB column; the entity registry owns their
// shapes, so adding an entity never changes the schema.
type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) List(ctx context.Context, entity string, searchFields []string, q model.ContentQuery) ([]model.ContentItem, int, error) {
	where := `entity = $1`
	args := []any{entity}

	if q.Search != "" && len(searchFields) > 0 {
		clauses := make([]string, 0, len(searchFields))
		args = append(args, "%"+q.Search+"%")
		for _, field := range searchFields {
			clauses = append(clauses, fmt.Sprintf("data->>'%s' ILIKE $2", field))
		}
		where += " AND (" + strings.Join(clauses, " OR ") + ")"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM content_items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s items: %w", entity, err)
	}

	offset := (q.Page - 1) * q.PageSize
	args = append(args, q.PageSize, offset)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT entity, id, data, views, created_at, updated_at
		 FROM content_items WHERE %s
		 ORDER BY updated_at DESC
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s items: %w", entity, err)
	}
	defer rows.Close()

	items := make([]model.ContentItem, 0)
	for rows.Next() {
		var item model.ContentItem
		if err := rows.Scan(&item.Entity, &item.ID, &item.Data, &item.Views, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan %s item: %w", entity, err)
		}
		items = append(items, item)
	}

	return items, total, rows.Err()
}

func (r *ContentRepository) Get(ctx context.Context, entity string, id string) (model.ContentItem, error) {
	var item model.ContentItem
	err := r.pool.QueryRow(ctx,
		`SELECT entity, id, data, views, created_at, updated_at
		 FROM content_items WHERE entity = $1 AND id = $2`, entity, id).
		Scan(&item.Entity, &item.ID, &item.Data, &item.Views, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ContentItem{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("get %s item: %w", entity, err)
	}
	return item, nil
}

func (r *ContentRepository) Create(ctx context.Context, item model.ContentItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO content_items (entity, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.Entity, item.ID, item.Data, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrItemConflict
		}
		return fmt.Errorf("create %s item: %w", item.Entity, err)
	}
	return nil
}

// Upsert backs singleton entities: the fixed key is replaced in place.
func (r *ContentRepository) Upsert(ctx context.Context, item model.ContentItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO content_items (entity, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (entity, id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		item.Entity, item.ID, item.Data, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert %s item: %w", item.Entity, err)
	}
	return nil
}

func (r *ContentRepository) Update(ctx context.Context, item model.ContentItem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE content_items SET data = $3, updated_at = $4
		 WHERE entity = $1 AND id = $2`,
		item.Entity, item.ID, item.Data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update %s item: %w", item.Entity, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, entity string, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM content_items WHERE entity = $1 AND id = $2`, entity, id)
	if err != nil {
		return fmt.Errorf("delete %s item: %w", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// IncrementViews is best-effort view tracking; a missing row is not an
// error worth surfacing to the pinging client.
func (r *ContentRepository) IncrementViews(ctx context.Context, entity string, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE content_items SET views = views + 1 WHERE entity = $1 AND id = $2`, entity, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// 23505 is the Postgres unique_violation code.
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
