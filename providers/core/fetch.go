package core

import (
	"context"
	"fmt"
	"net/http"
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

const sourceName = "core"

// Fetcher kapselt die Logik zur Interaktion mit der CORE API.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen CORE-Fetcher. Ohne API-Key schlägt der Aufruf fehl.
func NewFetcher(cfg *config.Config, client *providers.Client, logger *zap.Logger) (*Fetcher, error) {
	if strings.TrimSpace(cfg.CoreAPIKey) == "" {
		return nil, fmt.Errorf("%s: %w (CORE_API_KEY)", sourceName, providers.ErrMissingCredential)
	}
	return &Fetcher{Config: cfg, Client: client, Logger: logger}, nil
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return sourceName
}

// Search führt eine Volltextsuche über alle Keywords aus.
func (f *Fetcher) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*models.AcademicPaper, error) {
	query := strings.Join(keywords, " ")
	log := f.Logger.With(zap.String("source", sourceName), zap.String("query", query))

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(f.Config.CoreMaxResults))
	searchURL := strings.TrimRight(f.Config.CoreBaseURL, "/") + "/search/works/?" + params.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+f.Config.CoreAPIKey)

	var resp SearchResponse
	if err := f.Client.GetJSON(ctx, sourceName, searchURL, header, &resp); err != nil {
		return nil, err
	}

	papers := make([]*models.AcademicPaper, 0, len(resp.Results))
	for _, work := range resp.Results {
		if work.ID == "" {
			log.Debug("Werk ohne ID übersprungen", zap.String("title", work.Title))
			continue
		}
		papers = append(papers, toModel(projectID, work))
	}
	log.Info("CORE-Suche abgeschlossen", zap.Int("total_hits", resp.TotalHits), zap.Int("papers", len(papers)))
	return papers, nil
}

func toModel(projectID uuid.UUID, w Work) *models.AcademicPaper {
	p := &models.AcademicPaper{
		ProjectID:   projectID,
		CoreID:      w.ID.String(),
		Title:       w.Title,
		Authors:     datatypes.JSONSlice[string](w.Authors.Names()),
		Abstract:    w.Abstract,
		Publisher:   w.Publisher.String(),
		Subjects:    datatypes.JSONSlice[string](w.Subjects),
		Language:    w.Language.String(),
		DownloadURL: w.DownloadURL,
		SourceURL:   w.SourceURL,
		Journal:     w.Journal.String(),
		DOI:         normalizeDOI(w.DOI),
		URL:         w.URL,
		Tags:        datatypes.JSONSlice[string](w.Topics),
		FetchedFrom: "CORE API",
	}
	if w.YearPublished != nil && *w.YearPublished > 0 {
		year := int(*w.YearPublished)
		p.YearPublished = &year
	}
	if p.Journal == "" {
		p.Journal = w.Journals.String()
	}
	if p.SourceURL == "" && len(w.SourceFulltextURLs) > 0 {
		p.SourceURL = w.SourceFulltextURLs[0]
	}
	for _, l := range w.Links {
		switch {
		case l.Type == "download" && p.DownloadURL == "":
			p.DownloadURL = l.URL
		case l.Type == "display" && p.URL == "":
			p.URL = l.URL
		}
	}
	return p
}

// normalizeDOI entfernt Resolver-Präfixe, damit gleiche DOIs gleich gespeichert werden.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi:"} {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			return doi[len(prefix):]
		}
	}
	return doi
}
