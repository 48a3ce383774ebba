// Package metadata resolves a unified detail record for a media item by
// cascading through the providers the aggregator knows about: inline CMS
// data, the CMS detail endpoint, Bangumi, Douban, and finally a TMDB title
// search. Providers are tried in that order; the first applicable one wins.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"moontv/config"
	"moontv/models"
)

var (
	ErrNotFound          = errors.New("no matching title found")
	ErrMissingParameters = errors.New("no identifying field supplied")
)

// Service runs the metadata cascade. It holds one client per provider; the
// record is rebuilt from scratch on every call and never cached or merged
// across providers.
type Service struct {
	cms     *cmsClient
	bangumi *bangumiClient
	douban  *doubanClient
	tmdb    *tmdbClient
}

// NewService creates the cascade from provider settings. httpc may be nil;
// tests inject a fake transport through it.
func NewService(cfg config.MetadataSettings, httpc *http.Client) *Service {
	return &Service{
		cms:     newCMSClient(cfg.CMSDetailURL, httpc),
		bangumi: newBangumiClient(cfg.BangumiURL, httpc),
		douban:  newDoubanClient(cfg.DoubanURL, httpc),
		tmdb:    newTMDBClient(cfg.TMDBAPIKey, cfg.Language, cfg.TMDBURL, cfg.TMDBImageBase, httpc),
	}
}

// attempt is one row of the provider table. recoverable failures fall through
// to the next applicable provider; terminal failures abort the cascade.
type attempt struct {
	name        string
	recoverable bool
	applies     func(models.DetailQuery) bool
	fetch       func(context.Context, models.DetailQuery) (*models.MediaDetail, error)
}

func (s *Service) attempts() []attempt {
	return []attempt{
		{
			name:    "cms",
			applies: func(q models.DetailQuery) bool { return q.Inline != nil && q.Inline.Synopsis != "" },
			fetch:   s.fromInline,
		},
		{
			name:        "cms",
			recoverable: true,
			applies: func(q models.DetailQuery) bool {
				return q.Inline != nil && q.Inline.Synopsis == "" &&
					q.Source != "" && q.SourceID != "" && s.cms.isConfigured()
			},
			fetch: s.fromCMS,
		},
		{
			name:    "bangumi",
			applies: func(q models.DetailQuery) bool { return q.BangumiID != "" || (q.IsBangumi && q.ID != "") },
			fetch:   s.fromBangumi,
		},
		{
			name: "douban",
			applies: func(q models.DetailQuery) bool {
				return !q.IsBangumi && (q.DoubanID != "" || q.ID != "") && s.douban.isConfigured()
			},
			fetch: s.fromDouban,
		},
		{
			name:    "tmdb",
			applies: func(q models.DetailQuery) bool { return q.Title != "" && s.tmdb.isConfigured() },
			fetch:   s.fromTMDB,
		},
	}
}

// Resolve walks the provider table and returns the first record produced.
// The caller's context bounds every network call, so an abandoned request
// cancels its in-flight lookups.
func (s *Service) Resolve(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	if !q.HasIdentifier() {
		return nil, ErrMissingParameters
	}

	for _, att := range s.attempts() {
		if !att.applies(q) {
			continue
		}
		detail, err := att.fetch(ctx, q)
		if err != nil {
			if att.recoverable {
				log.Printf("[metadata] %s lookup failed, trying next provider: %v", att.name, err)
				continue
			}
			return nil, err
		}
		detail.Source = att.name
		return detail, nil
	}

	return nil, ErrMissingParameters
}

// fromInline answers from caller-supplied CMS data without a network call.
func (s *Service) fromInline(_ context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	inline := q.Inline
	title := inline.Title
	if title == "" {
		title = q.Title
	}
	return &models.MediaDetail{
		Title:        title,
		Synopsis:     inline.Synopsis,
		Poster:       inline.Poster,
		Year:         inline.Year,
		EpisodeCount: len(inline.Episodes),
	}, nil
}

// fromCMS fetches the CMS record and fills any empty field from the inline
// data the caller already had.
func (s *Service) fromCMS(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	fetched, err := s.cms.detail(ctx, q.SourceID, q.Source, q.Title)
	if err != nil {
		return nil, err
	}

	inline := q.Inline
	detail := &models.MediaDetail{
		Title:    firstNonEmpty(fetched.Title, inline.Title, q.Title),
		Synopsis: firstNonEmpty(fetched.Desc, inline.Synopsis),
		Poster:   firstNonEmpty(fetched.Poster, inline.Poster),
		Year:     firstNonEmpty(fetched.Year, inline.Year),
	}
	if len(fetched.Episodes) > 0 {
		detail.EpisodeCount = len(fetched.Episodes)
	} else {
		detail.EpisodeCount = len(inline.Episodes)
	}
	return detail, nil
}

func (s *Service) fromBangumi(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	id := q.BangumiID
	if id == "" {
		id = q.ID
	}

	subject, err := s.bangumi.subject(ctx, id)
	if err != nil {
		return nil, err
	}

	title := subject.NameCN
	if title == "" {
		title = subject.Name
	}

	detail := &models.MediaDetail{
		Title:         title,
		OriginalTitle: subject.Name,
		Poster:        subject.Images.Large,
		Synopsis:      subject.Summary,
		EpisodeCount:  subject.Eps,
		ReleaseDate:   subject.Date,
	}
	if len(subject.Date) >= 4 {
		detail.Year = subject.Date[:4]
	}
	if subject.Rating.Score > 0 {
		detail.Rating = &models.Rating{Value: subject.Rating.Score, Count: subject.Rating.Total}
	}
	for i, tag := range subject.Tags {
		if i == 5 {
			break
		}
		detail.Genres = append(detail.Genres, tag.Name)
	}
	return detail, nil
}

func (s *Service) fromDouban(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	id := q.DoubanID
	if id == "" {
		id = q.ID
	}

	fetched, err := s.douban.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.MediaDetail{
		Title:         fetched.Title,
		OriginalTitle: fetched.OriginalTitle,
		Year:          fetched.Year,
		Poster:        firstNonEmpty(fetched.Pic.Large, fetched.Pic.Normal),
		Synopsis:      fetched.Intro,
		Genres:        fetched.Genres,
		Directors:     fetched.Directors,
		Actors:        fetched.Actors,
		Countries:     fetched.Countries,
		Languages:     fetched.Languages,
		EpisodeCount:  fetched.EpisodesCount,
	}
	if len(fetched.Durations) > 0 {
		detail.Duration = fetched.Durations[0]
	}
	if fetched.Rating.Value > 0 {
		detail.Rating = &models.Rating{Value: fetched.Rating.Value, Count: fetched.Rating.Count}
	}
	return detail, nil
}

// fromTMDB is the last resort: strip a season marker from the title, search,
// and take the first result.
func (s *Service) fromTMDB(ctx context.Context, q models.DetailQuery) (*models.MediaDetail, error) {
	cleaned, detected := splitSeasonTitle(q.Title)
	season := q.Season
	if season == 0 {
		season = detected
	}

	results, err := s.tmdb.search(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, cleaned)
	}

	first := results[0]
	mediaType := first.MediaType
	if mediaType == "" {
		mediaType = q.MediaType
	}
	if mediaType != "movie" {
		mediaType = "tv"
	}

	if mediaType == "movie" {
		movie, err := s.tmdb.movieDetail(ctx, first.ID)
		if err != nil {
			return nil, err
		}
		detail := &models.MediaDetail{
			Title:         movie.Title,
			OriginalTitle: movie.OriginalTitle,
			Synopsis:      movie.Overview,
			Poster:        s.tmdb.posterURL(movie.PosterPath),
			ReleaseDate:   movie.ReleaseDate,
			Status:        movie.Status,
			Tagline:       movie.Tagline,
			Genres:        genreNames(movie.Genres),
		}
		if len(movie.ReleaseDate) >= 4 {
			detail.Year = movie.ReleaseDate[:4]
		}
		if movie.Runtime > 0 {
			detail.Duration = formatRuntime(movie.Runtime)
		}
		if movie.VoteAverage > 0 {
			detail.Rating = &models.Rating{Value: movie.VoteAverage, Count: movie.VoteCount}
		}
		return detail, nil
	}

	show, err := s.tmdb.showDetail(ctx, first.ID)
	if err != nil {
		return nil, err
	}
	detail := &models.MediaDetail{
		Title:         show.Name,
		OriginalTitle: show.OriginalName,
		Synopsis:      show.Overview,
		Poster:        s.tmdb.posterURL(show.PosterPath),
		ReleaseDate:   show.FirstAirDate,
		Status:        show.Status,
		Tagline:       show.Tagline,
		Genres:        genreNames(show.Genres),
		EpisodeCount:  show.NumberOfEpisodes,
		SeasonCount:   show.NumberOfSeasons,
	}
	if len(show.FirstAirDate) >= 4 {
		detail.Year = show.FirstAirDate[:4]
	}
	if len(show.EpisodeRunTime) > 0 && show.EpisodeRunTime[0] > 0 {
		detail.Duration = formatRuntime(show.EpisodeRunTime[0])
	}
	if show.VoteAverage > 0 {
		detail.Rating = &models.Rating{Value: show.VoteAverage, Count: show.VoteCount}
	}

	if season > 0 {
		seasonData, err := s.tmdb.seasonDetail(ctx, first.ID, season)
		if err != nil {
			return nil, err
		}
		if seasonData.Overview != "" {
			detail.Synopsis = seasonData.Overview
		}
		if len(seasonData.Episodes) > 0 {
			detail.EpisodeCount = len(seasonData.Episodes)
		}
	}
	return detail, nil
}

func genreNames(genres []tmdbGenre) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// formatRuntime renders a runtime in minutes the way the UI displays it.
func formatRuntime(minutes int) string {
	return fmt.Sprintf("%d分钟", minutes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
