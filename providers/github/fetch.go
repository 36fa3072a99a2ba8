package github

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

const sourceName = "github"

// Fetcher kapselt die Logik zur Interaktion mit GitHub.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen GitHub-Fetcher. Ohne Token schlägt der Aufruf fehl.
func NewFetcher(cfg *config.Config, client *providers.Client, logger *zap.Logger) (*Fetcher, error) {
	if strings.TrimSpace(cfg.GitHubToken) == "" {
		return nil, fmt.Errorf("%s: %w (GITHUB_TOKEN)", sourceName, providers.ErrMissingCredential)
	}
	return &Fetcher{Config: cfg, Client: client, Logger: logger}, nil
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return sourceName
}

// Search führt pro Keyword eine eigene Suche aus, begrenzt auf die ersten
// GITHUB_MAX_KEYWORDS Keywords, und fasst Treffer über die GitHub-ID zusammen.
func (f *Fetcher) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*models.Repository, error) {
	if limit := f.Config.GitHubMaxKeywords; limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}

	var repos []*models.Repository
	for _, keyword := range keywords {
		log := f.Logger.With(zap.String("source", sourceName), zap.String("keyword", keyword))

		items, err := f.searchKeyword(ctx, keyword)
		if err != nil {
			return nil, err
		}
		log.Info("GitHub-Suche abgeschlossen", zap.Int("repos", len(items)))
		for _, item := range items {
			repos = append(repos, toModel(projectID, item))
		}
	}

	repos = providers.DedupeByKey(repos, func(r *models.Repository) string { return r.GitHubID })
	return repos, nil
}

func (f *Fetcher) searchKeyword(ctx context.Context, keyword string) ([]Repo, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("per_page", strconv.Itoa(f.Config.GitHubPerPage))
	searchURL := strings.TrimRight(f.Config.GitHubBaseURL, "/") + "/search/repositories?" + params.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+f.Config.GitHubToken)
	header.Set("Accept", "application/vnd.github+json")
	header.Set("X-GitHub-Api-Version", "2022-11-28")

	var resp SearchResponse
	if err := f.Client.GetJSON(ctx, sourceName, searchURL, header, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func toModel(projectID uuid.UUID, r Repo) *models.Repository {
	id := ""
	if r.ID != 0 {
		id = strconv.FormatInt(r.ID, 10)
	}
	return &models.Repository{
		ProjectID:   projectID,
		GitHubID:    id,
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		URL:         r.HTMLURL,
		Stars:       r.StargazersCount,
		Language:    r.Language,
		Topics:      datatypes.JSONSlice[string](r.Topics),
		FetchedFrom: "GitHub",
	}
}
