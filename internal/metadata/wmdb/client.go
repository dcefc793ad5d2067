// Package wmdb implements the WMDB metadata provider, a lightweight source
// of Chinese localized titles and Douban ids.
package wmdb

import (
	"context"
	"encoding/json"
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
	providerWeight = 0.5
	minSimilarity  = 0.50
	defaultBaseURL = "https://api.wmdb.tv"
	requestTimeout = 10 * time.Second
)

type movieData struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	Year         string `json:"year"`
	DoubanID     string `json:"doubanId"`
}

// Provider resolves work metadata through the WMDB search API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a WMDB provider. The API needs no key.
func New(baseURL string) *Provider {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// WithHTTPClient overrides the default HTTP client, for tests.
func (p *Provider) WithHTTPClient(client *http.Client) {
	if client != nil {
		p.httpClient = client
	}
}

func (p *Provider) Name() string    { return "wmdb" }
func (p *Provider) Weight() float64 { return providerWeight }

// Resolve searches each candidate title and keeps the best-scoring hit.
func (p *Provider) Resolve(ctx context.Context, query metadata.WorkQuery) (*metadata.WorkMetadata, error) {
	var best *metadata.WorkMetadata
	var bestScore float64

	for _, title := range query.CandidateTitles() {
		hits, err := p.search(ctx, title)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			year, _ := strconv.Atoi(hit.Year)
			original := firstNonEmpty(hit.OriginalName, hit.Name)
			score := metadata.ScoreCandidate(query, original, year)
			if localized := metadata.ScoreCandidate(query, hit.Name, year); localized > score {
				score = localized
			}
			if score < minSimilarity || score <= bestScore {
				continue
			}
			meta := &metadata.WorkMetadata{
				TitleOriginal: original,
				Type:          query.Type,
				Year:          year,
				Season:        query.Season,
				Episode:       query.Episode,
				Confidence:    clamp01(score),
			}
			if hit.DoubanID != "" {
				meta.ExternalIDs = map[string]string{"douban": hit.DoubanID}
			}
			if hit.Name != "" && hit.Name != original {
				meta.TitleLocalized = map[string]string{"zh-CN": hit.Name}
			}
			best, bestScore = meta, score
		}
		if bestScore >= 1.0 {
			break
		}
	}
	return best, nil
}

func (p *Provider) search(ctx context.Context, keyword string) ([]movieData, error) {
	requestURL := p.baseURL + "/api/v1/movie/search?q=" + url.QueryEscape(keyword) + "&limit=5"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build wmdb request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wmdb search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read wmdb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wmdb search returned status %d", resp.StatusCode)
	}
	var hits []movieData
	if err := json.Unmarshal(body, &hits); err != nil {
		// Some deployments wrap the list in {"data": [...]}.
		var wrapped struct {
			Data []movieData `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode wmdb response: %w", err)
		}
		hits = wrapped.Data
	}
	return hits, nil
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
