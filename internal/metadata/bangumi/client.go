// Package bangumi implements the Bangumi metadata provider. It specialises
// in anime and is the main contributor of character names for hotwords.
package bangumi

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
	providerWeight = 0.8
	minSimilarity  = 0.45
	defaultBaseURL = "https://api.bgm.tv"
	requestTimeout = 10 * time.Second
	maxCharacters  = 24
)

type subject struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameCN string `json:"name_cn"`
	AirDate string `json:"air_date"`
}

type searchResponse struct {
	List []subject `json:"list"`
}

type character struct {
	Name   string `json:"name"`
	NameCN string `json:"name_cn"`
}

// Provider resolves work metadata through the Bangumi API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Bangumi provider. The API needs no key.
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

func (p *Provider) Name() string    { return "bangumi" }
func (p *Provider) Weight() float64 { return providerWeight }

// Resolve searches each candidate title and enriches the best hit with the
// subject's character list. Character fetch failures degrade silently.
func (p *Provider) Resolve(ctx context.Context, query metadata.WorkQuery) (*metadata.WorkMetadata, error) {
	var best *metadata.WorkMetadata
	var bestID int64
	var bestScore float64

	for _, title := range query.CandidateTitles() {
		subjects, err := p.search(ctx, title)
		if err != nil {
			return nil, err
		}
		for _, hit := range subjects {
			year := releaseYear(hit.AirDate)
			score := metadata.ScoreCandidate(query, hit.Name, year)
			if cn := metadata.ScoreCandidate(query, hit.NameCN, year); cn > score {
				score = cn
			}
			if score < minSimilarity || score <= bestScore {
				continue
			}
			meta := &metadata.WorkMetadata{
				TitleOriginal: firstNonEmpty(hit.Name, hit.NameCN),
				Type:          "tv",
				Year:          year,
				Season:        query.Season,
				Episode:       query.Episode,
				ExternalIDs:   map[string]string{"bangumi": strconv.FormatInt(hit.ID, 10)},
				Confidence:    clamp01(score),
			}
			if hit.NameCN != "" && hit.NameCN != meta.TitleOriginal {
				meta.TitleLocalized = map[string]string{"zh-CN": hit.NameCN}
				meta.Aliases = []string{hit.NameCN}
			}
			best, bestID, bestScore = meta, hit.ID, score
		}
		if bestScore >= 1.0 {
			break
		}
	}

	if best != nil {
		if characters, err := p.characters(ctx, bestID); err == nil {
			best.Characters = characters
		}
	}
	return best, nil
}

func (p *Provider) search(ctx context.Context, keyword string) ([]subject, error) {
	requestURL := p.baseURL + "/search/subject/" + url.PathEscape(keyword) + "?type=2&responseGroup=small&max_results=5"
	body, err := p.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Bangumi answers an empty search with an HTML error page.
		return nil, nil
	}
	return decoded.List, nil
}

func (p *Provider) characters(ctx context.Context, subjectID int64) ([]metadata.Character, error) {
	requestURL := fmt.Sprintf("%s/v0/subjects/%d/characters", p.baseURL, subjectID)
	body, err := p.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	var decoded []character
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode bangumi characters: %w", err)
	}
	if len(decoded) > maxCharacters {
		decoded = decoded[:maxCharacters]
	}
	characters := make([]metadata.Character, 0, len(decoded))
	for _, entry := range decoded {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		item := metadata.Character{Name: entry.Name}
		if entry.NameCN != "" && entry.NameCN != entry.Name {
			item.Aliases = map[string]string{"zh-CN": entry.NameCN}
		}
		characters = append(characters, item)
	}
	return characters, nil
}

func (p *Provider) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build bangumi request: %w", err)
	}
	req.Header.Set("User-Agent", "subweave/1.0")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bangumi request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read bangumi response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.New("bangumi: not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bangumi returned status %d", resp.StatusCode)
	}
	return body, nil
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
