package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Minimal Bangumi v0 client (subject endpoint only).

type bangumiClient struct {
	baseURL string
	httpc   *http.Client
}

type bangumiSubject struct {
	Name    string `json:"name"`
	NameCN  string `json:"name_cn"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Eps     int    `json:"eps"`
	Images  struct {
		Large  string `json:"large"`
		Common string `json:"common"`
	} `json:"images"`
	Rating struct {
		Score float64 `json:"score"`
		Total int     `json:"total"`
	} `json:"rating"`
	Tags []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"tags"`
}

func newBangumiClient(baseURL string, httpc *http.Client) *bangumiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &bangumiClient{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// subject fetches /v0/subjects/{id}. Any non-success status is an error; the
// cascade treats Bangumi failures as terminal.
func (c *bangumiClient) subject(ctx context.Context, id string) (*bangumiSubject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v0/subjects/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bangumi subject %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bangumi subject %s: %s", id, resp.Status)
	}

	var data bangumiSubject
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("bangumi subject %s: %w", id, err)
	}
	return &data, nil
}
