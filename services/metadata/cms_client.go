package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// cmsClient calls the aggregator's own detail-by-source endpoint, which
// proxies whichever CMS produced the item originally.
type cmsClient struct {
	baseURL string
	httpc   *http.Client
}

type cmsDetail struct {
	Title    string   `json:"title"`
	Poster   string   `json:"poster"`
	Year     string   `json:"year"`
	Desc     string   `json:"desc"`
	Episodes []string `json:"episodes"`
	Source   string   `json:"source"`
}

func newCMSClient(baseURL string, httpc *http.Client) *cmsClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &cmsClient{baseURL: baseURL, httpc: httpc}
}

func (c *cmsClient) isConfigured() bool { return c.baseURL != "" }

// detail fetches the CMS record for an id/source pair. The title rides along
// so the endpoint can disambiguate items the CMS indexes by name.
func (c *cmsClient) detail(ctx context.Context, id, source, title string) (*cmsDetail, error) {
	q := url.Values{}
	q.Set("id", id)
	q.Set("source", source)
	q.Set("title", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms detail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cms detail: %s", resp.Status)
	}

	var data cmsDetail
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("cms detail: %w", err)
	}
	return &data, nil
}
