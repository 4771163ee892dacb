package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-portfolio-cms/internal/content"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/service"
)

type memContentStore struct {
	items map[string]model.ContentItem
}

func newMemContentStore() *memContentStore {
	return &memContentStore{items: map[string]model.ContentItem{}}
}

func (s *memContentStore) key(entity, id string) string { return entity + "/" + id }

func (s *memContentStore) List(ctx context.Context, entity string, searchFields []string, q model.ContentQuery) ([]model.ContentItem, int, error) {
	var out []model.ContentItem
	for _, item := range s.items {
		if item.Entity == entity {
			out = append(out, item)
		}
	}
	return out, len(out), nil
}

func (s *memContentStore) Get(ctx context.Context, entity string, id string) (model.ContentItem, error) {
	if item, ok := s.items[s.key(entity, id)]; ok {
		return item, nil
	}
	return model.ContentItem{}, model.ErrItemNotFound
}

func (s *memContentStore) Create(ctx context.Context, item model.ContentItem) error {
	if _, exists := s.items[s.key(item.Entity, item.ID)]; exists {
		return model.ErrItemConflict
	}
	s.items[s.key(item.Entity, item.ID)] = item
	return nil
}

func (s *memContentStore) Upsert(ctx context.Context, item model.ContentItem) error {
	s.items[s.key(item.Entity, item.ID)] = item
	return nil
}

func (s *memContentStore) Update(ctx context.Context, item model.ContentItem) error {
	if _, ok := s.items[s.key(item.Entity, item.ID)]; !ok {
		return model.ErrItemNotFound
	}
	s.items[s.key(item.Entity, item.ID)] = item
	return nil
}

func (s *memContentStore) Delete(ctx context.Context, entity string, id string) error {
	if _, ok := s.items[s.key(entity, id)]; !ok {
		return model.ErrItemNotFound
	}
	delete(s.items, s.key(entity, id))
	return nil
}

func (s *memContentStore) IncrementViews(ctx context.Context, entity string, id string) error {
	item, ok := s.items[s.key(entity, id)]
	if !ok {
		return model.ErrItemNotFound
	}
	item.Views++
	s.items[s.key(entity, id)] = item
	return nil
}

func newContentTestRouter() http.Handler {
	svc := service.NewContentService(content.MustRegistry(), newMemContentStore())
	h := NewContentHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/v1/admin/content/{entity}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestContentUnsupportedEntityIs404(t *testing.T) {
	router := newContentTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/content/widgets/", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestContentCreateAndFetchRoundTrip(t *testing.T) {
	router := newContentTestRouter()

	body := `{"title":"Side Project","slug":"side-project","description":"<p>neat</p>","tech":"go","repo_url":"https://example.com","status":"published"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/project/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/content/project/", nil))
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "Side Project")
}

func TestContentValidationFailureIs422WithField(t *testing.T) {
	router := newContentTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/project/", strings.NewReader(`{"slug":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, rec.Body.String(), `"field"`)
}

func TestContentUpdateMissingItemIs404(t *testing.T) {
	router := newContentTestRouter()

	body := `{"title":"x","slug":"x","status":"draft"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/content/project/nope", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
