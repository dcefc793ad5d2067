package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"subweave/internal/metadata"
)

func newSearchServer(t *testing.T, results map[string][]searchResult) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		payload := searchResponse{Results: results[r.URL.Path]}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
}

func TestResolvePicksBestScoringHit(t *testing.T) {
	server := newSearchServer(t, map[string][]searchResult{
		"/search/tv": {
			{ID: 1, Name: "One Piece Spinoff", OriginalName: "Spinoff", FirstAirDate: "2015-01-01"},
			{ID: 37854, Name: "One Piece", OriginalName: "ワンピース", FirstAirDate: "1999-10-20"},
		},
	})
	defer server.Close()

	provider, err := New("key", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	provider.WithHTTPClient(server.Client())

	meta, err := provider.Resolve(context.Background(), metadata.WorkQuery{
		Title:     "One Piece",
		Aliases:   []string{"海贼王"},
		Type:      "tv",
		Season:    1,
		Episode:   1149,
		Languages: []string{"zh-CN"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil {
		t.Fatal("expected a hit")
	}
	if meta.TitleOriginal != "ワンピース" || meta.ExternalIDs["tmdb"] != "37854" {
		t.Fatalf("unexpected result: %+v", meta)
	}
	if meta.Type != "tv" || meta.Year != 1999 || meta.Episode != 1149 {
		t.Fatalf("unexpected result: %+v", meta)
	}
	if meta.TitleLocalized["zh-CN"] != "One Piece" {
		t.Fatalf("localized title missing: %+v", meta.TitleLocalized)
	}
}

func TestResolveNoConfidentHit(t *testing.T) {
	server := newSearchServer(t, map[string][]searchResult{
		"/search/movie": {{ID: 9, Title: "Entirely Different", ReleaseDate: "1980-01-01"}},
		"/search/tv":    nil,
	})
	defer server.Close()

	provider, err := New("key", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	provider.WithHTTPClient(server.Client())

	meta, err := provider.Resolve(context.Background(), metadata.WorkQuery{Title: "宇宙戦艦ヤマト"})
	if err != nil {
		t.Fatal(err)
	}
	if meta != nil {
		t.Fatalf("weak hits must be filtered, got %+v", meta)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", ""); err == nil {
		t.Fatal("empty api key must be rejected")
	}
}
