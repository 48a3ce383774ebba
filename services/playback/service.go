// Package playback resolves caller-supplied folder/file names into direct
// media URLs via the configured OpenList backend.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"

	"moontv/config"
	"moontv/models"
	"moontv/services/openlist"
	"moontv/utils"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMissingParams = errors.New("folder and fileName are required")
	ErrNotConfigured = errors.New("openlist backend is not configured")
)

// UpstreamError wraps an OpenList failure so the HTTP layer can distinguish it
// from local errors.
type UpstreamError struct {
	File string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.File, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// fileSource is the part of the OpenList client the resolver needs.
type fileSource interface {
	FsGet(ctx context.Context, path string) (*openlist.FileInfo, error)
}

// Service performs playback resolutions. A fresh OpenList client is created
// per resolution so configuration changes apply immediately.
type Service struct {
	cfg       *config.Manager
	newSource func(baseURL, username, password string) fileSource
}

// NewService creates a playback resolver on top of the settings manager.
func NewService(cfg *config.Manager) *Service {
	return &Service{
		cfg: cfg,
		newSource: func(baseURL, username, password string) fileSource {
			return openlist.New(baseURL, username, password, nil)
		},
	}
}

// Authorize checks the two acceptable credentials: a static token matching
// the configured secret, or a validated session username. Either suffices.
func (s *Service) Authorize(req models.PlayRequest) error {
	settings := s.cfg.Get()
	if settings.StaticToken != "" && req.Token == settings.StaticToken {
		return nil
	}
	if req.Username != "" {
		return nil
	}
	return ErrUnauthorized
}

// Resolve authorizes the request, builds the remote path, and asks OpenList
// for a direct URL. Exactly one upstream round trip, no retries, no caching.
func (s *Service) Resolve(ctx context.Context, req models.PlayRequest) (*models.PlaybackResolution, error) {
	if err := s.Authorize(req); err != nil {
		return nil, err
	}
	if req.Folder == "" || req.FileName == "" {
		return nil, ErrMissingParams
	}

	settings := s.cfg.Get()
	if !settings.OpenList.Configured() {
		return nil, ErrNotConfigured
	}

	filePath := utils.JoinRemotePath(settings.OpenList.RootPath, req.Folder, req.FileName)

	source := s.newSource(settings.OpenList.URL, settings.OpenList.Username, settings.OpenList.Password)
	info, err := source.FsGet(ctx, filePath)
	if err != nil {
		var statusErr *openlist.StatusError
		if errors.As(err, &statusErr) {
			log.Printf("[playback] upstream failure for %s: code=%d message=%q", req.FileName, statusErr.Code, statusErr.Message)
		} else {
			log.Printf("[playback] upstream failure for %s: %v", req.FileName, err)
		}
		return nil, &UpstreamError{File: req.FileName, Err: err}
	}

	return &models.PlaybackResolution{
		URL:      info.RawURL,
		FilePath: filePath,
	}, nil
}
