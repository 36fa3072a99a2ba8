package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/models"
	"learnhub/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const sourceName = "youtube"

// ErrVideoNotFound wird gemeldet, wenn /videos für eine ID keinen Eintrag liefert.
var ErrVideoNotFound = errors.New("video not found")

var videoIDRegex = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

var categoryTitles = map[string]string{
	"27": "Education",
	"28": "Science & Technology",
	"35": "Documentary",
}

// Fetcher kapselt die Logik zur Interaktion mit YouTube.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen YouTube-Fetcher. Ohne API-Key schlägt der Aufruf fehl.
func NewFetcher(cfg *config.Config, client *providers.Client, logger *zap.Logger) (*Fetcher, error) {
	if strings.TrimSpace(cfg.YouTubeAPIKey) == "" {
		return nil, fmt.Errorf("%s: %w (YOUTUBE_API_KEY)", sourceName, providers.ErrMissingCredential)
	}
	return &Fetcher{Config: cfg, Client: client, Logger: logger}, nil
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return sourceName
}

// Search sucht Videos zu den Keywords, lädt die Details jedes Treffers parallel nach
// und verwirft Videos, die kürzer als die Mindestdauer sind. Die Reihenfolge der
// Suchergebnisse bleibt erhalten.
func (f *Fetcher) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*models.Video, error) {
	query := strings.Join(keywords, " ")
	log := f.Logger.With(zap.String("source", sourceName), zap.String("query", query))

	ids, err := f.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Info("YouTube-Suche abgeschlossen", zap.Int("hits", len(ids)))
	if len(ids) == 0 {
		return []*models.Video{}, nil
	}

	details := make([]*models.Video, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			video, err := f.Lookup(gctx, projectID, id)
			if err != nil {
				// Einzelne Detail-Fehler verwerfen nur dieses Video.
				log.Warn("Konnte Details für Video nicht abrufen", zap.String("video_id", id), zap.Error(err))
				return nil
			}
			details[i] = video
			return nil
		})
	}
	_ = g.Wait()

	videos := make([]*models.Video, 0, len(details))
	for _, v := range details {
		if v == nil {
			continue
		}
		if !IsFullLength(v.Duration, f.Config.VideoMinDurationSeconds) {
			log.Debug("Video zu kurz, wird verworfen", zap.String("video_id", v.VideoID), zap.String("duration", v.Duration))
			continue
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// Lookup lädt ein einzelnes Video mit snippet, contentDetails und statistics.
func (f *Fetcher) Lookup(ctx context.Context, projectID uuid.UUID, videoID string) (*models.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", videoID)
	params.Set("key", f.Config.YouTubeAPIKey)

	var resp VideosResponse
	if err := f.Client.GetJSON(ctx, sourceName, f.endpoint("videos", params), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &providers.SourceError{Source: sourceName, StatusCode: http.StatusNotFound, Err: ErrVideoNotFound}
	}
	return toModel(projectID, resp.Items[0]), nil
}

func (f *Fetcher) searchIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(f.Config.YouTubeMaxResults))
	params.Set("safeSearch", "moderate")
	params.Set("key", f.Config.YouTubeAPIKey)
	if f.Config.YouTubeLanguage != "" {
		params.Set("relevanceLanguage", f.Config.YouTubeLanguage)
	}
	if f.Config.YouTubeCategoryID != "" {
		params.Set("videoCategoryId", f.Config.YouTubeCategoryID)
	}

	var resp SearchResponse
	if err := f.Client.GetJSON(ctx, sourceName, f.endpoint("search", params), nil, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	seen := make(map[string]bool, len(resp.Items))
	for _, item := range resp.Items {
		id := strings.TrimSpace(item.ID.VideoID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *Fetcher) endpoint(path string, params url.Values) string {
	return strings.TrimRight(f.Config.YouTubeBaseURL, "/") + "/" + path + "?" + params.Encode()
}

func (f *Fetcher) concurrency() int {
	if f.Config.FetchConcurrency > 0 {
		return f.Config.FetchConcurrency
	}
	return 1
}

func toModel(projectID uuid.UUID, item VideoItem) *models.Video {
	v := &models.Video{
		ProjectID:     projectID,
		VideoID:       item.ID,
		Title:         item.Snippet.Title,
		Description:   item.Snippet.Description,
		CategoryID:    item.Snippet.CategoryID,
		CategoryTitle: CategoryTitle(item.Snippet.CategoryID),
		Tags:          datatypes.JSONSlice[string](item.Snippet.Tags),
		Thumbnails: datatypes.NewJSONType(models.Thumbnails{
			Default: item.Snippet.Thumbnails.Default.URL,
			Medium:  item.Snippet.Thumbnails.Medium.URL,
			High:    item.Snippet.Thumbnails.High.URL,
		}),
		ChannelTitle: item.Snippet.ChannelTitle,
		ChannelID:    item.Snippet.ChannelID,
		Duration:     item.ContentDetails.Duration,
		DurationSecs: ParseDuration(item.ContentDetails.Duration),
		ViewCount:    int64(item.Statistics.ViewCount),
		LikeCount:    int64(item.Statistics.LikeCount),
		FetchedFrom:  "YouTube",
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		v.PublishedAt = &t
	}
	if v.Tags == nil {
		v.Tags = datatypes.JSONSlice[string]{}
	}
	return v
}

// CategoryTitle gibt den Namen einer YouTube-Kategorie zurück, "Unknown" für unbekannte IDs.
func CategoryTitle(id string) string {
	if title, ok := categoryTitles[id]; ok {
		return title
	}
	return "Unknown"
}

// ExtractVideoID liest die 11-stellige Video-ID aus einer YouTube-URL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDRegex.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil || len(m[7]) != 11 {
		return "", false
	}
	return m[7], true
}
