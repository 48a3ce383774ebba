package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"moontv/api"
	"moontv/internal/auth"
)

const maxTrackedPlays = 100

// PlayTracker keeps a bounded log of recent playback resolutions for the
// admin UI. Each entry carries a monotonically increasing generation so
// consumers can discard stale updates when responses arrive out of order.
type PlayTracker struct {
	mu      sync.RWMutex
	plays   []TrackedPlay
	counter uint64
}

// TrackedPlay represents one successful playback resolution.
type TrackedPlay struct {
	ID         string    `json:"id"`
	Generation uint64    `json:"generation"`
	FileName   string    `json:"fileName"`
	FilePath   string    `json:"filePath"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// NewPlayTracker creates an empty tracker.
func NewPlayTracker() *PlayTracker {
	return &PlayTracker{}
}

// Record registers a resolution, evicting the oldest entry once the log is
// full, and returns the entry's generation.
func (t *PlayTracker) Record(r *http.Request, fileName, filePath string) uint64 {
	generation := atomic.AddUint64(&t.counter, 1)
	play := TrackedPlay{
		ID:         uuid.NewString(),
		Generation: generation,
		FileName:   fileName,
		FilePath:   filePath,
		ClientIP:   api.ClientIP(r),
		UserAgent:  r.Header.Get("User-Agent"),
		ResolvedAt: time.Now().UTC(),
	}

	t.mu.Lock()
	t.plays = append(t.plays, play)
	if len(t.plays) > maxTrackedPlays {
		t.plays = t.plays[len(t.plays)-maxTrackedPlays:]
	}
	t.mu.Unlock()

	return generation
}

// Latest returns the generation of the most recent entry, 0 when empty.
func (t *PlayTracker) Latest() uint64 {
	return atomic.LoadUint64(&t.counter)
}

// Recent returns tracked plays, newest first.
func (t *PlayTracker) Recent() []TrackedPlay {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TrackedPlay, len(t.plays))
	for i, play := range t.plays {
		out[len(t.plays)-1-i] = play
	}
	return out
}

// ServeRecent handles GET /api/playback/recent. The route sits behind the
// session middleware, so the viewer's username is echoed back for the UI.
func (t *PlayTracker) ServeRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"plays":      t.Recent(),
		"generation": t.Latest(),
		"viewer":     auth.GetUsername(r),
	})
}
