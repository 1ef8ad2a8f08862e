package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"watchlog/models"
)

type stubSearchService struct {
	results []models.SearchResult
	calls   int
	lastQ   string
	lastT   models.ItemType
}

func (s *stubSearchService) QuickSearch(_ context.Context, query string, media models.ItemType) []models.SearchResult {
	s.calls++
	s.lastQ = query
	s.lastT = media
	return s.results
}

func doSearch(t *testing.T, svc searchService, target string) (*httptest.ResponseRecorder, SearchResponse) {
	t.Helper()
	h := NewSearchHandler(svc)
	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, target, nil))

	var body SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return rr, body
}

func TestSearch_QueryTooShort(t *testing.T) {
	svc := &stubSearchService{}

	for _, target := range []string{"/api/search", "/api/search?q=a", "/api/search?q=%20%20a%20"} {
		rr, body := doSearch(t, svc, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
		}
		if body.OK || body.Error != "Query too short" {
			t.Errorf("%s: unexpected body %+v", target, body)
		}
	}
	if svc.calls != 0 {
		t.Errorf("expected no provider calls for short queries, got %d", svc.calls)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	rr, body := doSearch(t, &stubSearchService{}, "/api/search?q=zzzz")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	if body.OK || body.Error != "No matches found" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestSearch_Success(t *testing.T) {
	year := 2021
	svc := &stubSearchService{results: []models.SearchResult{
		{Title: "Dune", Type: models.TypeMovie, Year: &year},
	}}

	rr, body := doSearch(t, svc, "/api/search?q=dune&type=movie")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if !body.OK || body.Error != "" {
		t.Errorf("unexpected envelope %+v", body)
	}
	if len(body.Results) != 1 || body.Results[0].Title != "Dune" {
		t.Errorf("unexpected results %+v", body.Results)
	}
	if svc.lastQ != "dune" {
		t.Errorf("expected trimmed query, got %q", svc.lastQ)
	}
}

func TestSearch_InvalidTypeDefaultsToMovie(t *testing.T) {
	svc := &stubSearchService{results: []models.SearchResult{{Title: "Hit"}}}

	doSearch(t, svc, "/api/search?q=hit&type=podcast")
	if svc.lastT != models.TypeMovie {
		t.Errorf("expected movie default for unknown type, got %q", svc.lastT)
	}

	doSearch(t, svc, "/api/search?q=hit&type=GAME")
	if svc.lastT != models.TypeGame {
		t.Errorf("expected type lowercased, got %q", svc.lastT)
	}
}
