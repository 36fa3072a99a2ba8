package providers

import (
	"context"

	"github.com/google/uuid"
)

// Source ist das Interface, das jede externe Suchquelle (YouTube, CORE, Google Books, GitHub)
// implementieren muss.
type Source[T any] interface {
	// Search übersetzt eine Keyword-Liste in normalisierte Kandidaten für ein Projekt.
	// Null Treffer sind kein Fehler.
	Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*T, error)

	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "youtube").
	Name() string
}

// DedupeByKey fasst Kandidaten mit gleichem Schlüssel zusammen. Die Position des ersten
// Auftretens bleibt erhalten, der Wert des letzten gewinnt. Leere Schlüssel werden verworfen.
func DedupeByKey[T any](items []*T, key func(*T) string) []*T {
	index := make(map[string]int, len(items))
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		k := key(item)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
