package bangumi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subweave/internal/metadata"
)

func TestResolveWithCharacters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/subject/"):
			json.NewEncoder(w).Encode(searchResponse{List: []subject{
				{ID: 975, Name: "ONE PIECE", NameCN: "海贼王", AirDate: "1999-10-20"},
			}})
		case strings.HasPrefix(r.URL.Path, "/v0/subjects/975/characters"):
			json.NewEncoder(w).Encode([]character{
				{Name: "モンキー・D・ルフィ", NameCN: "路飞"},
				{Name: "ロロノア・ゾロ", NameCN: "索隆"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	provider := New(server.URL)
	provider.WithHTTPClient(server.Client())

	meta, err := provider.Resolve(context.Background(), metadata.WorkQuery{
		Title: "ONE PIECE", Aliases: []string{"海贼王"}, Year: 1999,
	})
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil || meta.TitleOriginal != "ONE PIECE" || meta.ExternalIDs["bangumi"] != "975" {
		t.Fatalf("unexpected result: %+v", meta)
	}
	if meta.TitleLocalized["zh-CN"] != "海贼王" {
		t.Fatalf("localized title missing: %+v", meta)
	}
	if len(meta.Characters) != 2 || meta.Characters[0].Aliases["zh-CN"] != "路飞" {
		t.Fatalf("characters missing: %+v", meta.Characters)
	}
}

func TestResolveCharacterFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/search/subject/") {
			json.NewEncoder(w).Encode(searchResponse{List: []subject{
				{ID: 1, Name: "Cowboy Bebop", AirDate: "1998-04-03"},
			}})
			return
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := New(server.URL)
	provider.WithHTTPClient(server.Client())

	meta, err := provider.Resolve(context.Background(), metadata.WorkQuery{Title: "Cowboy Bebop", Year: 1998})
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil || len(meta.Characters) != 0 {
		t.Fatalf("character failure must not sink the hit: %+v", meta)
	}
}
