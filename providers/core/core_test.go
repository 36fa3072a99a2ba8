package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestAuthorsDecoding(t *testing.T) {
	var as Authors
	input := `["Ada Lovelace", {"name":"Alan Turing"}, {"family":"Hopper","given":"Grace"}, {"given":"Linus"}, {"orcid":"0000"}, 42]`
	if err := json.Unmarshal([]byte(input), &as); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Ada Lovelace", "Alan Turing", "Hopper", "Linus", `{"orcid":"0000"}`, "42"}
	got := as.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("author %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if _, ok := as[0].(PlainAuthor); !ok {
		t.Errorf("expected PlainAuthor, got %T", as[0])
	}
	if _, ok := as[1].(StructuredAuthor); !ok {
		t.Errorf("expected StructuredAuthor, got %T", as[1])
	}
	if _, ok := as[5].(UnknownAuthor); !ok {
		t.Errorf("expected UnknownAuthor, got %T", as[5])
	}
}

func TestNormalizeDOI(t *testing.T) {
	for _, in := range []string{"10.1000/xyz", "https://doi.org/10.1000/xyz", "DOI:10.1000/xyz", " 10.1000/xyz "} {
		if got := normalizeDOI(in); got != "10.1000/xyz" {
			t.Errorf("normalizeDOI(%q) = %q", in, got)
		}
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer core-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/search/works/" || r.URL.Query().Get("q") != "graph theory" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"totalHits":2,"results":[
			{"id":123,"title":"Graphs","authors":[{"name":"Euler"}],"yearPublished":1736,
			 "language":{"code":"en","name":"English"},"journals":[{"title":"Commentarii"}],
			 "doi":"https://doi.org/10.1/abc","topics":["math"," ","math"]},
			{"title":"no id"}
		]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{CoreBaseURL: srv.URL, CoreAPIKey: "core-key", CoreMaxResults: 10}
	f, err := NewFetcher(cfg, providers.NewClient(time.Second, 0, 0, zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	projectID := uuid.New()
	papers, err := f.Search(context.Background(), projectID, []string{"graph", "theory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
	p := papers[0]
	if p.CoreID != "123" || p.ProjectID != projectID || p.Language != "English" || p.Journal != "Commentarii" {
		t.Errorf("unexpected mapping: %+v", p)
	}
	if p.YearPublished == nil || *p.YearPublished != 1736 || p.DOI != "10.1/abc" {
		t.Errorf("unexpected year/doi: %+v", p)
	}
	if len(p.Authors) != 1 || p.Authors[0] != "Euler" {
		t.Errorf("unexpected authors: %v", p.Authors)
	}
}

func TestSearchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := &config.Config{CoreBaseURL: srv.URL, CoreAPIKey: "wrong-key"}
	f, _ := NewFetcher(cfg, providers.NewClient(time.Second, 2, 0, zap.NewNop()), zap.NewNop())
	_, err := f.Search(context.Background(), uuid.New(), []string{"x"})

	var srcErr *providers.SourceError
	if !errors.As(err, &srcErr) || srcErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 SourceError, got %v", err)
	}
	if strings.Contains(err.Error(), "wrong-key") {
		t.Errorf("error leaks api key: %v", err)
	}
}

func TestNewFetcherRequiresKey(t *testing.T) {
	_, err := NewFetcher(&config.Config{}, nil, zap.NewNop())
	if !errors.Is(err, providers.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}
