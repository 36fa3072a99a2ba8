package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const userAgent = "learnhub-fetcher/1.0 (+https://github.com/learnhub)"

// maxBodyBytes begrenzt eine einzelne API-Antwort.
const maxBodyBytes = 10 << 20

// CustomTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type CustomTransport struct {
	Transport http.RoundTripper
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// Client ist der gemeinsame HTTP-Client aller Quellen: festes Timeout,
// begrenzte Wiederholung bei transienten Fehlern, typisierte Fehler.
type Client struct {
	HTTP    *http.Client
	Logger  *zap.Logger
	Retries int
	Backoff time.Duration
}

// NewClient erstellt einen Client mit Timeout und Retry-Policy.
func NewClient(timeout time.Duration, retries int, backoff time.Duration, logger *zap.Logger) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &CustomTransport{Transport: http.DefaultTransport},
		},
		Logger:  logger,
		Retries: retries,
		Backoff: backoff,
	}
}

// GetJSON ruft rawURL per GET ab und dekodiert die Antwort in out.
// Jeder Fehler kommt als *SourceError zurück.
func (c *Client) GetJSON(ctx context.Context, source, rawURL string, header http.Header, out any) error {
	log := c.Logger.With(zap.String("source", source), zap.String("path", redact(rawURL)))

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.Backoff
			log.Debug("Wiederhole Anfrage", zap.Int("attempt", attempt), zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return &SourceError{Source: source, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		retry, err := c.do(ctx, source, rawURL, header, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		log.Warn("Transienter Fehler bei externer Quelle", zap.Error(err))
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, source, rawURL string, header http.Header, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, &SourceError{Source: source, Err: errors.New("invalid request")}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// *url.Error enthält die komplette URL samt Schlüssel, daher nur die Ursache behalten.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return isTransient(ctx, err), &SourceError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return retry, &SourceError{Source: source, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return false, &SourceError{Source: source, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return false, nil
}

// isTransient meldet Timeouts und Netzwerkfehler, solange der Aufrufer nicht abgebrochen hat.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// redact entfernt Query-Parameter für das Logging.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host + u.Path
}
