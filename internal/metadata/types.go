package metadata

// WorkInfo is the lookup context inferred before any provider is asked.
type WorkInfo struct {
	Title      string
	Season     int
	Episode    int
	Year       int
	Type       string // movie | tv
	Confidence float64
	Source     string // none | path_only | llm | path+llm | *+nfo
}

// Character is one recurring name worth preserving across translation.
type Character struct {
	Name    string
	Aliases map[string]string // language → localized name
}

// WorkQuery is what the resolver sends to providers.
type WorkQuery struct {
	Title     string
	Aliases   []string
	Year      int
	Season    int
	Episode   int
	Type      string // movie | tv | ""
	Languages []string
}

// WorkMetadata is a provider answer, or the merged final result.
type WorkMetadata struct {
	TitleOriginal  string
	TitleLocalized map[string]string
	Type           string
	Year           int
	Season         int
	Episode        int
	EpisodeTitle   map[string]string
	Aliases        []string
	Characters     []Character
	ExternalIDs    map[string]string
	Confidence     float64
	Sources        []string
}
