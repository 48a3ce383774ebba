package models

// Rating holds a score and the number of votes behind it.
type Rating struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// MediaDetail is the normalized record produced by the metadata cascade,
// independent of which provider produced it. Every field except Title is
// optional; a field the provider did not supply stays zero.
type MediaDetail struct {
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	Year          string   `json:"year,omitempty"`
	Poster        string   `json:"poster,omitempty"`
	Rating        *Rating  `json:"rating,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	Actors        []string `json:"actors,omitempty"`
	Countries     []string `json:"countries,omitempty"`
	Languages     []string `json:"languages,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	EpisodeCount  int      `json:"episodeCount,omitempty"`
	ReleaseDate   string   `json:"releaseDate,omitempty"`
	Status        string   `json:"status,omitempty"`
	Tagline       string   `json:"tagline,omitempty"`
	SeasonCount   int      `json:"seasonCount,omitempty"`
	// Source names the provider that produced this record (cms, bangumi,
	// douban, tmdb).
	Source string `json:"source,omitempty"`
}

// InlineDetail carries CMS data the caller already holds, so the cascade can
// answer without a network call when a synopsis is present.
type InlineDetail struct {
	Title    string   `json:"title,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
	Poster   string   `json:"poster,omitempty"`
	Year     string   `json:"year,omitempty"`
	Episodes []string `json:"episodes,omitempty"`
}

// DetailQuery identifies a media item for the cascade. Providers are tried in
// a fixed priority order; the first applicable one wins.
type DetailQuery struct {
	Title     string        `json:"title,omitempty"`
	MediaType string        `json:"mediaType,omitempty"` // movie|tv, hint for the title search
	Season    int           `json:"season,omitempty"`    // 0 = not supplied
	ID        string        `json:"id,omitempty"`        // generic provider id
	IsBangumi bool          `json:"isBangumi,omitempty"` // treat the generic id as a Bangumi id
	BangumiID string        `json:"bangumiId,omitempty"`
	DoubanID  string        `json:"doubanId,omitempty"`
	Source    string        `json:"source,omitempty"`   // CMS source name
	SourceID  string        `json:"sourceId,omitempty"` // CMS item id within Source
	Inline    *InlineDetail `json:"inline,omitempty"`
}

// HasIdentifier reports whether the query carries at least one field the
// cascade can act on.
func (q DetailQuery) HasIdentifier() bool {
	return q.Inline != nil || q.BangumiID != "" || q.DoubanID != "" || q.ID != "" ||
		(q.Source != "" && q.SourceID != "") || q.Title != ""
}
