package metadata

import (
	"strings"

	"subweave/internal/textutil"
)

const (
	maxCandidateTitles    = 3
	maxLanguagePriorities = 3
)

// CandidateTitles returns the bounded list of search terms providers try,
// strongest first: the resolved title, then aliases.
func (q WorkQuery) CandidateTitles() []string {
	titles := make([]string, 0, maxCandidateTitles)
	if t := strings.TrimSpace(q.Title); t != "" {
		titles = append(titles, t)
	}
	for _, alias := range q.Aliases {
		if len(titles) >= maxCandidateTitles {
			break
		}
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		duplicate := false
		for _, have := range titles {
			if strings.EqualFold(have, alias) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			titles = append(titles, alias)
		}
	}
	return titles
}

// LanguagePriorities returns the bounded language list for search calls.
func (q WorkQuery) LanguagePriorities() []string {
	langs := make([]string, 0, maxLanguagePriorities)
	for _, lang := range q.Languages {
		if len(langs) >= maxLanguagePriorities {
			break
		}
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

// ScoreCandidate rates one provider hit against the query. The score starts
// from title similarity, gains alias and year agreement bonuses, and loses
// ground when a high episode number points at a work far too old to carry
// it. Providers compare the result against their own similarity floor.
func ScoreCandidate(query WorkQuery, title string, year int) float64 {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0
	}

	score := textutil.TitleSimilarity(query.Title, title)
	for _, alias := range query.Aliases {
		if sim := textutil.TitleSimilarity(alias, title); sim > score {
			score = sim
		}
	}

	for _, name := range append([]string{query.Title}, query.Aliases...) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, title) {
			score += 0.3
			break
		}
		if strings.HasPrefix(strings.ToLower(title), strings.ToLower(name)) ||
			strings.HasPrefix(strings.ToLower(name), strings.ToLower(title)) {
			score += 0.15
			break
		}
	}

	if query.Year > 0 && year > 0 {
		diff := query.Year - year
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score += 0.2
		case diff <= 1:
			score += 0.1
		case diff > 5:
			score -= 0.1
		}
	}

	// A thousand-episode run cannot belong to a work released yesterday,
	// nor can a pre-television year carry modern episode counts.
	if query.Episode >= 100 && year > 0 {
		if year < 1950 {
			score -= 0.5
		} else if query.Year > 0 && year > query.Year {
			score -= 0.2
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
