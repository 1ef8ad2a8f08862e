package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"watchlog/internal/auth"
	"watchlog/internal/database"
	"watchlog/models"
)

type stubItemStore struct {
	items        map[int64]*models.Item
	nextID       int64
	appliedMeta  *models.Metadata
	appliedToID  int64
	listErr      error
	listedUserID string
}

func newStubItemStore() *stubItemStore {
	return &stubItemStore{items: map[int64]*models.Item{}, nextID: 1}
}

func (s *stubItemStore) Create(item *models.Item) error {
	item.ID = s.nextID
	s.nextID++
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubItemStore) ListByUser(userID string) ([]models.Item, error) {
	s.listedUserID = userID
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Item
	for _, item := range s.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubItemStore) Get(userID string, id int64) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *stubItemStore) Update(userID string, id int64, input models.ItemUpsert) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, database.ErrItemNotFound
	}
	item.Title = input.Title
	item.Type = input.Type
	item.Status = input.Status
	item.Rating = input.Rating
	item.Tags = input.Tags
	item.Notes = input.Notes
	copied := *item
	return &copied, nil
}

func (s *stubItemStore) Delete(userID string, id int64) (bool, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubItemStore) ApplyMetadata(userID string, id int64, meta *models.Metadata) error {
	s.appliedMeta = meta
	s.appliedToID = id
	if item, ok := s.items[id]; ok && item.UserID == userID {
		if meta.PosterURL != "" {
			item.PosterURL = meta.PosterURL
		}
		if meta.Source != "" {
			item.MetadataSource = meta.Source
		}
	}
	return nil
}

type stubMetadataResolver struct {
	meta  *models.Metadata
	calls int
}

func (s *stubMetadataResolver) Resolve(context.Context, string, models.ItemType) *models.Metadata {
	s.calls++
	return s.meta
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), auth.ContextKeyAccountID, "user-1")
	return r.WithContext(ctx)
}

func TestItemsCreate_EnrichesByDefault(t *testing.T) {
	store := newStubItemStore()
	resolver := &stubMetadataResolver{meta: &models.Metadata{
		PosterURL: "https://img/dune.jpg",
		Source:    models.SourceTMDB,
	}}
	h := NewItemsHandler(store, resolver, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, authedRequest(http.MethodPost, "/api/users/user-1/items",
		`{"title": "Dune", "type": "movie", "status": "planned"}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if resolver.calls != 1 {
		t.Errorf("expected one resolver call, got %d", resolver.calls)
	}
	if store.appliedMeta == nil {
		t.Fatal("expected metadata applied to the stored item")
	}

	var created models.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.PosterURL != "https://img/dune.jpg" {
		t.Errorf("expected enriched response body, got %+v", created)
	}
	if created.MetadataSource != models.SourceTMDB {
		t.Errorf("expected provenance in response, got %q", created.MetadataSource)
	}
}

func TestItemsCreate_EnrichmentSkippable(t *testing.T) {
	store := newStubItemStore()
	resolver := &stubMetadataResolver{meta: &models.Metadata{PosterURL: "https://img/x.jpg"}}
	h := NewItemsHandler(store, resolver, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, authedRequest(http.MethodPost, "/api/users/user-1/items?enrich=false",
		`{"title": "Obscure Zine"}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("expected no resolver call with enrich=false, got %d", resolver.calls)
	}
}

func TestItemsCreate_ResolverMissLeavesItemAsSubmitted(t *testing.T) {
	store := newStubItemStore()
	h := NewItemsHandler(store, &stubMetadataResolver{meta: nil}, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, authedRequest(http.MethodPost, "/api/users/user-1/items",
		`{"title": "Homemade Film"}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if store.appliedMeta != nil {
		t.Error("expected no metadata applied on a resolver miss")
	}
}

func TestItemsCreate_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"type": "movie"}`},
		{"blank title", `{"title": "   "}`},
		{"title too long", `{"title": "` + strings.Repeat("x", maxTitleLength+1) + `"}`},
		{"rating too high", `{"title": "X", "rating": 11}`},
		{"rating negative", `{"title": "X", "rating": -1}`},
		{"unknown field", `{"title": "X", "bogus": true}`},
		{"malformed json", `{"title":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubItemStore()
			h := NewItemsHandler(store, &stubMetadataResolver{}, nil)

			rr := httptest.NewRecorder()
			h.Create(rr, authedRequest(http.MethodPost, "/api/users/user-1/items", tc.body))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
			if len(store.items) != 0 {
				t.Error("expected nothing stored on validation failure")
			}
		})
	}
}

func TestItemsCreate_DefaultsTypeAndStatus(t *testing.T) {
	store := newStubItemStore()
	h := NewItemsHandler(store, &stubMetadataResolver{}, nil)

	rr := httptest.NewRecorder()
	h.Create(rr, authedRequest(http.MethodPost, "/api/users/user-1/items?enrich=false",
		`{"title": "Bare Minimum", "type": "mixtape", "status": "someday"}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	stored := store.items[1]
	if stored.Type != models.TypeMovie {
		t.Errorf("expected movie default, got %q", stored.Type)
	}
	if stored.Status != models.StatusPlanned {
		t.Errorf("expected planned default, got %q", stored.Status)
	}
}

func TestItemsList(t *testing.T) {
	store := newStubItemStore()
	store.Create(&models.Item{UserID: "user-1", Title: "Mine"})
	store.Create(&models.Item{UserID: "user-2", Title: "Theirs"})
	h := NewItemsHandler(store, &stubMetadataResolver{}, nil)

	rr := httptest.NewRecorder()
	h.List(rr, authedRequest(http.MethodGet, "/api/users/user-1/items", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Items []models.Item `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Title != "Mine" {
		t.Errorf("unexpected items %+v", body.Items)
	}
}

func TestItemsGet_NotFound(t *testing.T) {
	h := NewItemsHandler(newStubItemStore(), &stubMetadataResolver{}, nil)

	r := authedRequest(http.MethodGet, "/api/users/user-1/items/99", "")
	r = mux.SetURLVars(r, map[string]string{"id": "99"})
	rr := httptest.NewRecorder()
	h.Get(rr, r)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestItemsGet_InvalidID(t *testing.T) {
	h := NewItemsHandler(newStubItemStore(), &stubMetadataResolver{}, nil)

	for _, raw := range []string{"abc", "0", "-3"} {
		r := authedRequest(http.MethodGet, "/api/users/user-1/items/"+raw, "")
		r = mux.SetURLVars(r, map[string]string{"id": raw})
		rr := httptest.NewRecorder()
		h.Get(rr, r)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400, got %d", raw, rr.Code)
		}
	}
}

func TestItemsUpdate(t *testing.T) {
	store := newStubItemStore()
	store.Create(&models.Item{UserID: "user-1", Title: "Old", Status: models.StatusPlanned})
	h := NewItemsHandler(store, &stubMetadataResolver{}, nil)

	r := authedRequest(http.MethodPut, "/api/users/user-1/items/1",
		`{"title": "Old", "status": "completed", "rating": 8}`)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.Update(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated models.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Status != models.StatusCompleted || updated.Rating == nil || *updated.Rating != 8 {
		t.Errorf("unexpected updated item %+v", updated)
	}
}

func TestItemsDelete(t *testing.T) {
	store := newStubItemStore()
	store.Create(&models.Item{UserID: "user-1", Title: "Disposable"})
	h := NewItemsHandler(store, &stubMetadataResolver{}, nil)

	r := authedRequest(http.MethodDelete, "/api/users/user-1/items/1", "")
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.Delete(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	r = authedRequest(http.MethodDelete, "/api/users/user-1/items/1", "")
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	rr = httptest.NewRecorder()
	h.Delete(rr, r)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
}
