package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Minimal TMDB v3 client (multi search, movie/tv detail, season detail).

type tmdbClient struct {
	apiKey    string
	language  string
	baseURL   string
	imageBase string
	httpc     *http.Client
}

type tmdbSearchResult struct {
	ID        int64  `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Name      string `json:"name"`
}

type tmdbGenre struct {
	Name string `json:"name"`
}

type tmdbMovie struct {
	Title         string      `json:"title"`
	OriginalTitle string      `json:"original_title"`
	Overview      string      `json:"overview"`
	ReleaseDate   string      `json:"release_date"`
	PosterPath    string      `json:"poster_path"`
	Runtime       int         `json:"runtime"`
	VoteAverage   float64     `json:"vote_average"`
	VoteCount     int         `json:"vote_count"`
	Status        string      `json:"status"`
	Tagline       string      `json:"tagline"`
	Genres        []tmdbGenre `json:"genres"`
}

type tmdbShow struct {
	Name             string      `json:"name"`
	OriginalName     string      `json:"original_name"`
	Overview         string      `json:"overview"`
	FirstAirDate     string      `json:"first_air_date"`
	PosterPath       string      `json:"poster_path"`
	EpisodeRunTime   []int       `json:"episode_run_time"`
	NumberOfEpisodes int         `json:"number_of_episodes"`
	NumberOfSeasons  int         `json:"number_of_seasons"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	Status           string      `json:"status"`
	Tagline          string      `json:"tagline"`
	Genres           []tmdbGenre `json:"genres"`
}

type tmdbSeason struct {
	Overview string `json:"overview"`
	AirDate  string `json:"air_date"`
	Episodes []struct {
		EpisodeNumber int `json:"episode_number"`
	} `json:"episodes"`
}

func newTMDBClient(apiKey, language, baseURL, imageBase string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:    apiKey,
		language:  language,
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageBase: strings.TrimRight(imageBase, "/"),
		httpc:     httpc,
	}
}

func (c *tmdbClient) isConfigured() bool { return c.apiKey != "" }

func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("tmdb %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	return nil
}

// search runs a multi search and returns the raw result list in TMDB order.
func (c *tmdbClient) search(ctx context.Context, query string) ([]tmdbSearchResult, error) {
	q := url.Values{}
	q.Set("query", query)

	var data struct {
		Results []tmdbSearchResult `json:"results"`
	}
	if err := c.doGET(ctx, "/search/multi", q, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

func (c *tmdbClient) movieDetail(ctx context.Context, id int64) (*tmdbMovie, error) {
	var data tmdbMovie
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%d", id), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *tmdbClient) showDetail(ctx context.Context, id int64) (*tmdbShow, error) {
	var data tmdbShow
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d", id), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *tmdbClient) seasonDetail(ctx context.Context, id int64, season int) (*tmdbSeason, error) {
	var data tmdbSeason
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// posterURL prefixes the CDN base; an empty path stays empty.
func (c *tmdbClient) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBase + path
}
