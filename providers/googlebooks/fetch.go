package googlebooks

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"learnhub/config"
	"learnhub/models"
	"learnhub/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const sourceName = "googlebooks"

// Fetcher kapselt die Logik zur Interaktion mit Google Books.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen Google-Books-Fetcher. Der API-Key ist optional.
func NewFetcher(cfg *config.Config, client *providers.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Client: client, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return sourceName
}

// Search sucht Bücher zu den Keywords.
func (f *Fetcher) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*models.EBook, error) {
	query := strings.Join(keywords, " ")
	log := f.Logger.With(zap.String("source", sourceName), zap.String("query", query))

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(f.Config.GoogleBooksMaxResults))
	params.Set("printType", "books")
	if f.Config.GoogleBooksAPIKey != "" {
		params.Set("key", f.Config.GoogleBooksAPIKey)
	}
	searchURL := strings.TrimRight(f.Config.GoogleBooksBaseURL, "/") + "/volumes?" + params.Encode()

	var resp VolumesResponse
	if err := f.Client.GetJSON(ctx, sourceName, searchURL, nil, &resp); err != nil {
		return nil, err
	}

	books := make([]*models.EBook, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v.ID == "" || v.VolumeInfo.Title == "" {
			continue
		}
		books = append(books, toModel(projectID, v))
	}
	log.Info("Google-Books-Suche abgeschlossen", zap.Int("total_items", resp.TotalItems), zap.Int("books", len(books)))
	return books, nil
}

func toModel(projectID uuid.UUID, v Volume) *models.EBook {
	info := v.VolumeInfo
	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}
	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}
	return &models.EBook{
		ProjectID:     projectID,
		GoogleID:      v.ID,
		Title:         title,
		Authors:       datatypes.JSONSlice[string](info.Authors),
		Description:   info.Description,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Categories:    datatypes.JSONSlice[string](info.Categories),
		Language:      info.Language,
		PageCount:     info.PageCount,
		PreviewLink:   info.PreviewLink,
		InfoLink:      info.InfoLink,
		Thumbnail:     secureURL(thumbnail),
		Tags:          datatypes.JSONSlice[string](info.Categories),
		FetchedFrom:   "Google Books",
	}
}

// secureURL stellt Google-Bild-Links auf https um.
func secureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
