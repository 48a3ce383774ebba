package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"moontv/api"
	"moontv/models"
	playbacksvc "moontv/services/playback"
	"moontv/services/sessions"
)

type playbackService interface {
	Resolve(ctx context.Context, req models.PlayRequest) (*models.PlaybackResolution, error)
}

var _ playbackService = (*playbacksvc.Service)(nil)

// PlayHandler turns GET /play/{token} into a redirect to the direct media URL
// resolved through OpenList.
type PlayHandler struct {
	Service  playbackService
	Sessions *sessions.Service
	Tracker  *PlayTracker
}

func NewPlayHandler(service playbackService, sessionsSvc *sessions.Service, tracker *PlayTracker) *PlayHandler {
	return &PlayHandler{Service: service, Sessions: sessionsSvc, Tracker: tracker}
}

// Play resolves the requested file and redirects to its direct URL.
// Either the path token matches the configured static secret, or the caller
// must present a valid session.
func (h *PlayHandler) Play(w http.ResponseWriter, r *http.Request) {
	// The resolver never lets an error escape to the transport layer.
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[play-handler] panic during resolve: %v", rec)
			writeError(w, http.StatusInternalServerError, "internal error", "")
		}
	}()

	req := models.PlayRequest{
		Token:    mux.Vars(r)["token"],
		Folder:   r.URL.Query().Get("folder"),
		FileName: r.URL.Query().Get("fileName"),
		Username: h.sessionUsername(r),
	}

	resolution, err := h.Service.Resolve(r.Context(), req)
	if err != nil {
		h.writeResolveError(w, req, err)
		return
	}

	if h.Tracker != nil {
		h.Tracker.Record(r, req.FileName, resolution.FilePath)
	}
	http.Redirect(w, r, resolution.URL, http.StatusFound)
}

// sessionUsername returns the username behind a presented session token, or
// empty when no valid session accompanies the request.
func (h *PlayHandler) sessionUsername(r *http.Request) string {
	if h.Sessions == nil {
		return ""
	}
	token := api.ExtractToken(r)
	if token == "" {
		return ""
	}
	session, err := h.Sessions.Validate(token)
	if err != nil {
		return ""
	}
	return session.Username
}

func (h *PlayHandler) writeResolveError(w http.ResponseWriter, req models.PlayRequest, err error) {
	var upstream *playbacksvc.UpstreamError
	switch {
	case errors.Is(err, playbacksvc.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, playbacksvc.ErrMissingParams):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, playbacksvc.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.As(err, &upstream):
		writeError(w, http.StatusInternalServerError, "failed to resolve play url", upstream.Err.Error())
	default:
		log.Printf("[play-handler] unexpected error for %s: %v", req.FileName, err)
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// writeError emits the structured JSON error shape shared by all handlers.
func writeError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	json.NewEncoder(w).Encode(body)
}
