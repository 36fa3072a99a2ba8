package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestSearchCapsKeywordsAndDedupes(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query().Get("q")
		// Jedes Keyword liefert ein eigenes Repo plus das gemeinsame Repo 1.
		fmt.Fprintf(w, `{"total_count":2,"items":[
			{"id":1,"name":"shared","full_name":"org/shared","stargazers_count":%d},
			{"id":%d,"name":%q,"full_name":"org/%s","stargazers_count":5}
		]}`, len(q), 100+len(q), q, q)
	}))
	defer srv.Close()

	cfg := &config.Config{GitHubBaseURL: srv.URL, GitHubToken: "gh-token", GitHubPerPage: 10, GitHubMaxKeywords: 3}
	f, err := NewFetcher(cfg, providers.NewClient(time.Second, 0, 0, zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	repos, err := f.Search(context.Background(), uuid.New(), []string{"a", "bb", "ccc", "dddd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 upstream calls, got %d", calls)
	}
	if len(repos) != 4 {
		t.Fatalf("expected 4 unique repos, got %d", len(repos))
	}
	if repos[0].GitHubID != "1" || repos[0].Stars != 3 {
		t.Errorf("expected shared repo first with last seen stars, got %+v", repos[0])
	}
}
