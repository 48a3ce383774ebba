package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// OpenListSettings configures the remote file-listing backend used by the
// playback resolver.
type OpenListSettings struct {
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	RootPath string `json:"rootPath"` // defaults to "/"
}

// Configured reports whether the backend has everything it needs for a
// resolution attempt.
func (o OpenListSettings) Configured() bool {
	return o.Enabled && o.URL != "" && o.Username != "" && o.Password != ""
}

// MetadataSettings configures the providers behind the detail cascade.
type MetadataSettings struct {
	CMSDetailURL  string `json:"cmsDetailUrl"`  // internal detail-by-source endpoint
	BangumiURL    string `json:"bangumiUrl"`    // Bangumi API base
	DoubanURL     string `json:"doubanUrl"`     // internal Douban detail endpoint
	TMDBAPIKey    string `json:"tmdbApiKey"`
	TMDBURL       string `json:"tmdbUrl"`       // TMDB API base
	TMDBImageBase string `json:"tmdbImageBase"` // poster CDN prefix
	Language      string `json:"language"`      // BCP 47 tag for TMDB queries
}

// Settings is the process-wide configuration, persisted as JSON.
type Settings struct {
	ListenAddr  string           `json:"listenAddr"`
	StaticToken string           `json:"staticToken"` // shared secret for non-browser clients
	DataDir     string           `json:"dataDir"`
	LogFile     string           `json:"logFile"`
	OpenList    OpenListSettings `json:"openlist"`
	Metadata    MetadataSettings `json:"metadata"`
}

// DefaultSettings returns the settings used when no file exists yet.
func DefaultSettings() Settings {
	return Settings{
		ListenAddr: ":8080",
		DataDir:    "data",
		OpenList: OpenListSettings{
			RootPath: "/",
		},
		Metadata: MetadataSettings{
			BangumiURL:    "https://api.bgm.tv",
			TMDBURL:       "https://api.themoviedb.org/3",
			TMDBImageBase: "https://image.tmdb.org/t/p/w500",
			Language:      "zh-CN",
		},
	}
}

// Manager loads and saves settings, applying environment overrides on load.
type Manager struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

// NewManager creates a settings manager backed by the given file path.
func NewManager(path string) *Manager {
	return &Manager{path: path, cur: DefaultSettings()}
}

// Load reads the settings file if present and applies environment overrides.
// A missing file is not an error; defaults are kept.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()
	data, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parse settings %s: %w", m.path, err)
		}
	case os.IsNotExist(err):
		// keep defaults
	default:
		return fmt.Errorf("read settings %s: %w", m.path, err)
	}

	applyEnv(&settings)
	settings.Metadata.Language = NormalizeLanguage(settings.Metadata.Language)
	if settings.OpenList.RootPath == "" {
		settings.OpenList.RootPath = "/"
	}
	m.cur = settings
	return nil
}

// Save writes the given settings to disk and makes them current.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	m.cur = settings
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// applyEnv overrides settings from the environment so secrets can stay out of
// the settings file. Empty variables are ignored.
func applyEnv(s *Settings) {
	if v := os.Getenv("MOONTV_STATIC_TOKEN"); v != "" {
		s.StaticToken = v
	}
	if v := os.Getenv("MOONTV_OPENLIST_URL"); v != "" {
		s.OpenList.URL = v
		s.OpenList.Enabled = true
	}
	if v := os.Getenv("MOONTV_OPENLIST_USERNAME"); v != "" {
		s.OpenList.Username = v
	}
	if v := os.Getenv("MOONTV_OPENLIST_PASSWORD"); v != "" {
		s.OpenList.Password = v
	}
	if v := os.Getenv("MOONTV_OPENLIST_ROOT"); v != "" {
		s.OpenList.RootPath = v
	}
	if v := os.Getenv("MOONTV_TMDB_API_KEY"); v != "" {
		s.Metadata.TMDBAPIKey = v
	}
}

// NormalizeLanguage canonicalizes a language tag for TMDB queries, falling
// back to zh-CN when the tag does not parse.
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "zh-CN"
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "zh-CN"
	}
	return parsed.String()
}
