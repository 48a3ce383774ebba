package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// doubanClient calls the aggregator's internal Douban detail endpoint, which
// fronts Douban's unofficial API.
type doubanClient struct {
	baseURL string
	httpc   *http.Client
}

type doubanDetail struct {
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Year          string   `json:"year"`
	Intro         string   `json:"intro"`
	Genres        []string `json:"genres"`
	Directors     []string `json:"directors"`
	Actors        []string `json:"actors"`
	Countries     []string `json:"countries"`
	Languages     []string `json:"languages"`
	Durations     []string `json:"durations"`
	EpisodesCount int      `json:"episodes_count"`
	Pic           struct {
		Large  string `json:"large"`
		Normal string `json:"normal"`
	} `json:"pic"`
	Rating struct {
		Value float64 `json:"value"`
		Count int     `json:"count"`
	} `json:"rating"`
}

type doubanEnvelope struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    doubanDetail `json:"data"`
}

func newDoubanClient(baseURL string, httpc *http.Client) *doubanClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &doubanClient{baseURL: baseURL, httpc: httpc}
}

func (c *doubanClient) isConfigured() bool { return c.baseURL != "" }

// detail fetches a Douban record by id. Douban failures are terminal for the
// cascade, so every non-success shape becomes an error here.
func (c *doubanClient) detail(ctx context.Context, id string) (*doubanDetail, error) {
	q := url.Values{}
	q.Set("id", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("douban detail %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("douban detail %s: %s", id, resp.Status)
	}

	var envelope doubanEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("douban detail %s: %w", id, err)
	}
	if envelope.Code != http.StatusOK {
		return nil, fmt.Errorf("douban detail %s: code %d: %s", id, envelope.Code, envelope.Message)
	}
	return &envelope.Data, nil
}
