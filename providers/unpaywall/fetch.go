package unpaywall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"learnhub/config"
	"learnhub/models"
	"learnhub/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sourceName = "unpaywall"

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URLForPDF     string `json:"url_for_pdf"`
		URLForLanding string `json:"url_for_landing_page"`
	} `json:"best_oa_location"`
}

// Fetcher kapselt die Logik für Unpaywall.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Unpaywall-Fetcher. Die API verlangt eine Kontakt-E-Mail.
func NewFetcher(cfg *config.Config, client *providers.Client, logger *zap.Logger) (*Fetcher, error) {
	if strings.TrimSpace(cfg.UnpaywallEmail) == "" {
		return nil, fmt.Errorf("%s: %w (UNPAYWALL_EMAIL)", sourceName, providers.ErrMissingCredential)
	}
	return &Fetcher{Config: cfg, Client: client, Logger: logger}, nil
}

// PDFLink holt einen freien PDF-Link anhand der DOI. Ohne Open-Access-Fassung ist das Ergebnis leer.
func (f *Fetcher) PDFLink(ctx context.Context, doi string) (string, error) {
	params := url.Values{}
	params.Set("email", f.Config.UnpaywallEmail)
	segments := strings.Split(doi, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	lookupURL := strings.TrimRight(f.Config.UnpaywallBaseURL, "/") + "/" + strings.Join(segments, "/") + "?" + params.Encode()

	var ur Response
	if err := f.Client.GetJSON(ctx, sourceName, lookupURL, nil, &ur); err != nil {
		return "", err
	}
	if ur.BestOALocation == nil || ur.BestOALocation.URLForPDF == "" {
		return "", nil
	}
	return ur.BestOALocation.URLForPDF, nil
}

// Enricher ergänzt die Treffer einer Paper-Quelle um freie PDF-Links.
// Fehlgeschlagene Lookups werden nur geloggt, die Suche selbst scheitert daran nicht.
type Enricher struct {
	Source  providers.Source[models.AcademicPaper]
	Fetcher *Fetcher
	Limit   int
}

// Name gibt den Namen der umhüllten Quelle zurück.
func (e *Enricher) Name() string {
	return e.Source.Name()
}

// Search sucht bei der umhüllten Quelle und füllt fehlende DownloadURLs über die DOI.
func (e *Enricher) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*models.AcademicPaper, error) {
	papers, err := e.Source.Search(ctx, projectID, keywords)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	for _, p := range papers {
		p := p
		if p == nil || p.DOI == "" || p.DownloadURL != "" {
			continue
		}
		g.Go(func() error {
			link, err := e.Fetcher.PDFLink(gctx, p.DOI)
			if err != nil {
				var srcErr *providers.SourceError
				if errors.As(err, &srcErr) && srcErr.StatusCode == http.StatusNotFound {
					return nil
				}
				e.Fetcher.Logger.Debug("Unpaywall-Lookup fehlgeschlagen", zap.String("doi", p.DOI), zap.Error(err))
				return nil
			}
			if link != "" {
				p.DownloadURL = link
			}
			return nil
		})
	}
	_ = g.Wait()
	return papers, nil
}
