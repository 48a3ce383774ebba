package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/sourcegraph/conc/pool"

	"moontv/models"
	metadatapkg "moontv/services/metadata"
)

type metadataService interface {
	Resolve(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error)
}

var _ metadataService = (*metadatapkg.Service)(nil)

// maxBatchWorkers bounds the fan-out of a batch detail request. Each item's
// cascade stays strictly sequential; only items run concurrently.
const maxBatchWorkers = 4

// DetailHandler exposes the metadata cascade over HTTP.
type DetailHandler struct {
	Service metadataService
}

func NewDetailHandler(service metadataService) *DetailHandler {
	return &DetailHandler{Service: service}
}

// Detail handles GET /api/detail. Identifiers arrive as query params; inline
// CMS data, when the client already holds it, arrives JSON-encoded in the
// `inline` param.
func (h *DetailHandler) Detail(w http.ResponseWriter, r *http.Request) {
	query, err := parseDetailQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	detail, err := h.Service.Resolve(r.Context(), query)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// BatchDetailRequest is the body of POST /api/detail/batch.
type BatchDetailRequest struct {
	Queries []models.DetailQuery `json:"queries"`
}

// BatchDetailItem is the per-query outcome of a batch resolve.
type BatchDetailItem struct {
	Detail *models.MediaDetail `json:"detail,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BatchDetail handles POST /api/detail/batch, resolving every query with
// bounded concurrency and preserving request order in the response.
func (h *DetailHandler) BatchDetail(w http.ResponseWriter, r *http.Request) {
	var req BatchDetailRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "queries is required", "")
		return
	}

	results := make([]BatchDetailItem, len(req.Queries))
	p := pool.New().WithMaxGoroutines(maxBatchWorkers)
	for i, query := range req.Queries {
		p.Go(func() {
			detail, err := h.Service.Resolve(r.Context(), query)
			if err != nil {
				results[i] = BatchDetailItem{Error: err.Error()}
				return
			}
			results[i] = BatchDetailItem{Detail: detail}
		})
	}
	p.Wait()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

func (h *DetailHandler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metadatapkg.ErrMissingParameters):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, metadatapkg.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	default:
		log.Printf("[detail-handler] resolve failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error(), "")
	}
}

func parseDetailQuery(r *http.Request) (models.DetailQuery, error) {
	values := r.URL.Query()

	query := models.DetailQuery{
		Title:     values.Get("title"),
		MediaType: values.Get("mediaType"),
		ID:        values.Get("id"),
		BangumiID: values.Get("bangumiId"),
		DoubanID:  values.Get("doubanId"),
		Source:    values.Get("source"),
		SourceID:  values.Get("sourceId"),
	}
	if v := values.Get("season"); v != "" {
		season, err := strconv.Atoi(v)
		if err != nil || season < 0 {
			return models.DetailQuery{}, errors.New("season must be a non-negative integer")
		}
		query.Season = season
	}
	if v := values.Get("isBangumi"); v != "" {
		query.IsBangumi = v == "true" || v == "1"
	}
	if v := values.Get("inline"); v != "" {
		var inline models.InlineDetail
		if err := json.Unmarshal([]byte(v), &inline); err != nil {
			return models.DetailQuery{}, errors.New("inline must be a JSON object")
		}
		query.Inline = &inline
	}
	return query, nil
}
