package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-portfolio-cms/internal/content"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

type contentStore interface {
	List(ctx context.Context, entity string, searchFields []string, q model.ContentQuery) ([]model.ContentItem, int, error)
	Get(ctx context.Context, entity string, id string) (model.ContentItem, error)
	Create(ctx context.Context, item model.ContentItem) error
	Upsert(ctx context.Context, item model.ContentItem) error
	Update(ctx context.Context, item model.ContentItem) error
	Delete(ctx context.Context, entity string, id string) error
	IncrementViews(ctx context.Context, entity string, id string) error
}

// ContentService is the entity dispatch layer. It performs no authn or
// CSRF checks; every HTTP call site must gate access before calling in.
// That keeps it reusable and testable without HTTP concerns.
type ContentService struct {
	registry *content.Registry
	store    contentStore
}

func NewContentService(registry *content.Registry, store contentStore) *ContentService {
	return &ContentService{registry: registry, store: store}
}

func (s *ContentService) IsSupported(entity string) bool {
	return s.registry.IsSupported(entity)
}

func (s *ContentService) List(ctx context.Context, entity string, q model.ContentQuery) ([]model.ContentItem, model.Meta, error) {
	def, ok := s.registry.Lookup(entity)
	if !ok {
		return nil, model.Meta{}, model.ErrEntityNotSupported
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	// Cap reads so an oversized page_size cannot exhaust the server.
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)

	items, total, err := s.store.List(ctx, entity, def.Searchable, q)
	if err != nil {
		return nil, model.Meta{}, err
	}

	totalPages := total / q.PageSize
	if total%q.PageSize != 0 {
		totalPages++
	}

	return items, model.Meta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *ContentService) Get(ctx context.Context, entity string, id string) (model.ContentItem, error) {
	if !s.registry.IsSupported(entity) {
		return model.ContentItem{}, model.ErrEntityNotSupported
	}

	return s.store.Get(ctx, entity, id)
}

// GetSingleton fetches a singleton entity by its fixed key.
func (s *ContentService) GetSingleton(ctx context.Context, entity string) (model.ContentItem, error) {
	def, ok := s.registry.Lookup(entity)
	if !ok || !def.Singleton {
		return model.ContentItem{}, model.ErrEntityNotSupported
	}

	return s.store.Get(ctx, entity, content.SingletonKey)
}

// Create validates and sanitizes the payload, then persists it. Singleton
// entities upsert on their fixed key instead of creating new rows.
func (s *ContentService) Create(ctx context.Context, entity string, payload map[string]any) (model.ContentItem, error) {
	def, ok := s.registry.Lookup(entity)
	if !ok {
		return model.ContentItem{}, model.ErrEntityNotSupported
	}

	if err := def.Validate(payload); err != nil {
		return model.ContentItem{}, err
	}

	now := time.Now().UTC()
	item := model.ContentItem{
		Entity:    entity,
		Data:      sanitizePayload(def, payload),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if def.Singleton {
		item.ID = content.SingletonKey
		if err := s.store.Upsert(ctx, item); err != nil {
			return model.ContentItem{}, err
		}
		return item, nil
	}

	item.ID = uuid.NewString()
	if err := s.store.Create(ctx, item); err != nil {
		return model.ContentItem{}, err
	}
	return item, nil
}

// Update revalidates the full payload; partial updates are not supported,
// the admin UI always submits the complete form.
func (s *ContentService) Update(ctx context.Context, entity string, id string, payload map[string]any) (model.ContentItem, error) {
	def, ok := s.registry.Lookup(entity)
	if !ok {
		return model.ContentItem{}, model.ErrEntityNotSupported
	}

	if err := def.Validate(payload); err != nil {
		return model.ContentItem{}, err
	}

	if def.Singleton {
		id = content.SingletonKey
	}

	item := model.ContentItem{
		Entity:    entity,
		ID:        id,
		Data:      sanitizePayload(def, payload),
		UpdatedAt: time.Now().UTC(),
	}

	if def.Singleton {
		item.CreatedAt = item.UpdatedAt
		if err := s.store.Upsert(ctx, item); err != nil {
			return model.ContentItem{}, err
		}
		return item, nil
	}

	if err := s.store.Update(ctx, item); err != nil {
		return model.ContentItem{}, err
	}
	return item, nil
}

func (s *ContentService) Delete(ctx context.Context, entity string, id string) error {
	def, ok := s.registry.Lookup(entity)
	if !ok {
		return model.ErrEntityNotSupported
	}

	if def.Singleton {
		id = content.SingletonKey
	}

	return s.store.Delete(ctx, entity, id)
}

// RecordView bumps the view counter; callers treat failures as skips.
func (s *ContentService) RecordView(ctx context.Context, entity string, id string) error {
	if !s.registry.IsSupported(entity) {
		return model.ErrEntityNotSupported
	}

	return s.store.IncrementViews(ctx, entity, id)
}

// sanitizePayload trims every value and runs rich-text fields through the
// HTML sanitizer. Sanitization on write is mandatory, not a render-time
// option.
func sanitizePayload(def content.Definition, payload map[string]any) map[string]any {
	richText := map[string]struct{}{}
	for _, name := range def.RichTextFields() {
		richText[name] = struct{}{}
	}

	out := make(map[string]any, len(payload))
	for key, raw := range payload {
		value, _ := raw.(string)
		value = strings.TrimSpace(value)
		if _, rich := richText[key]; rich {
			value = util.SanitizeHTML(value)
		}
		out[key] = value
	}

	return out
}
