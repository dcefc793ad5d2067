// Package tmdb implements the TMDB metadata provider. It is the heaviest
// provider in the merge and the main source of localized titles and
// external ids.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subweave/internal/metadata"
)

const (
	providerWeight   = 1.0
	minSimilarity    = 0.50
	defaultBaseURL   = "https://api.themoviedb.org/3"
	requestTimeout   = 10 * time.Second
	resultsPerSearch = 5
)

type searchResult struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Name          string `json:"name"`
	OriginalTitle string `json:"original_title"`
	OriginalName  string `json:"original_name"`
	ReleaseDate   string `json:"release_date"`
	FirstAirDate  string `json:"first_air_date"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Provider resolves work metadata through the TMDB search API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a TMDB provider.
func New(apiKey, baseURL string) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// WithHTTPClient overrides the default HTTP client, for tests.
func (p *Provider) WithHTTPClient(client *http.Client) {
	if client != nil {
		p.httpClient = client
	}
}

func (p *Provider) Name() string    { return "tmdb" }
func (p *Provider) Weight() float64 { return providerWeight }

// Resolve runs a bounded search: up to three candidate titles, up to three
// language priorities, best-scoring hit wins.
func (p *Provider) Resolve(ctx context.Context, query metadata.WorkQuery) (*metadata.WorkMetadata, error) {
	endpoints := p.searchEndpoints(query.Type)
	languages := query.LanguagePriorities()
	if len(languages) == 0 {
		languages = []string{""}
	}

	var best *metadata.WorkMetadata
	var bestScore float64
	for _, title := range query.CandidateTitles() {
		for _, lang := range languages {
			for _, endpoint := range endpoints {
				results, err := p.search(ctx, endpoint, title, lang)
				if err != nil {
					return nil, err
				}
				for _, result := range results {
					candidate, score := p.evaluate(query, endpoint, lang, result)
					if candidate != nil && score > bestScore {
						best, bestScore = candidate, score
					}
				}
			}
		}
		// One strong title hit is enough; weaker aliases only add noise.
		if bestScore >= 1.0 {
			break
		}
	}
	return best, nil
}

func (p *Provider) searchEndpoints(workType string) []string {
	switch workType {
	case "movie":
		return []string{"/search/movie"}
	case "tv":
		return []string{"/search/tv"}
	default:
		return []string{"/search/tv", "/search/movie"}
	}
}

func (p *Provider) evaluate(query metadata.WorkQuery, endpoint, lang string, result searchResult) (*metadata.WorkMetadata, float64) {
	localized := firstNonEmpty(result.Title, result.Name)
	original := firstNonEmpty(result.OriginalTitle, result.OriginalName, localized)
	year := releaseYear(firstNonEmpty(result.ReleaseDate, result.FirstAirDate))

	score := metadata.ScoreCandidate(query, original, year)
	if localizedScore := metadata.ScoreCandidate(query, localized, year); localizedScore > score {
		score = localizedScore
	}
	if score < minSimilarity {
		return nil, 0
	}

	meta := &metadata.WorkMetadata{
		TitleOriginal: original,
		Type:          typeForEndpoint(endpoint),
		Year:          year,
		Season:        query.Season,
		Episode:       query.Episode,
		ExternalIDs:   map[string]string{"tmdb": strconv.FormatInt(result.ID, 10)},
		Confidence:    clamp01(score),
	}
	if lang != "" && localized != "" && localized != original {
		meta.TitleLocalized = map[string]string{lang: localized}
	}
	return meta, score
}

func (p *Provider) search(ctx context.Context, endpoint, query, lang string) ([]searchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", p.apiKey)
	if lang != "" {
		params.Set("language", lang)
	}
	requestURL := p.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read tmdb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb search returned status %d", resp.StatusCode)
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}
	if len(decoded.Results) > resultsPerSearch {
		decoded.Results = decoded.Results[:resultsPerSearch]
	}
	return decoded.Results, nil
}

func typeForEndpoint(endpoint string) string {
	if strings.Contains(endpoint, "/tv") {
		return "tv"
	}
	return "movie"
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func clamp01(value float64) float64 {
	if value > 1 {
		return 1
	}
	if value < 0 {
		return 0
	}
	return value
}
