package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type item struct {
	Key   string
	Value int
}

func TestDedupeByKey(t *testing.T) {
	in := []*item{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
		nil,
		{Key: "a", Value: 3},
		{Key: "", Value: 4},
		{Key: "c", Value: 5},
	}
	got := DedupeByKey(in, func(i *item) string { return i.Key })
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0].Key != "a" || got[0].Value != 3 {
		t.Errorf("expected first position with last value, got %+v", got[0])
	}
	if got[1].Key != "b" || got[2].Key != "c" {
		t.Errorf("unexpected order: %s, %s", got[1].Key, got[2].Key)
	}
}

func TestFlexText(t *testing.T) {
	cases := map[string]string{
		`"English"`:                      "English",
		`{"code":"en","name":"English"}`: "English",
		`{"code":"de"}`:                  "de",
		`{"title":"Nature"}`:             "Nature",
		`{"identifiers":["issn:1234"]}`:  "issn:1234",
		`{"foo": 1}`:                     `{"foo":1}`,
		`null`:                           "",
		`[{"title":"A"},{"title":"B"}]`:  "A",
	}
	for input, want := range cases {
		var f FlexText
		if err := json.Unmarshal([]byte(input), &f); err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if f.String() != want {
			t.Errorf("%s: expected %q, got %q", input, want, f)
		}
	}
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
		C FlexInt `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"42","b":7,"c":"n/a"}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != 42 || v.B != 7 || v.C != 0 {
		t.Errorf("unexpected values: %+v", v)
	}
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 2, time.Millisecond, zap.NewNop())
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.GetJSON(context.Background(), "test", srv.URL, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK || atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected success after 3 calls, got ok=%v calls=%d", out.OK, calls)
	}
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(time.Second, 2, time.Millisecond, zap.NewNop())
	err := c.GetJSON(context.Background(), "test", srv.URL+"?key=secret-key", nil, &struct{}{})

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if srcErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", srcErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks credential: %v", err)
	}
}

func TestGetJSONTransportErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(time.Second, 0, time.Millisecond, zap.NewNop())
	err := c.GetJSON(context.Background(), "test", url+"/x?key=secret-key", nil, &struct{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") || strings.Contains(err.Error(), url) {
		t.Errorf("error leaks request url: %v", err)
	}
}

func TestGetJSONTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, 1, time.Millisecond, zap.NewNop())
	err := c.GetJSON(context.Background(), "core", srv.URL+"/search?key=secret-key", nil, &struct{}{})

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if srcErr.Source != "core" || srcErr.StatusCode != 0 {
		t.Errorf("unexpected source error: %+v", srcErr)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected timeout to be retried once, got %d calls", n)
	}
	if strings.Contains(err.Error(), "secret-key") || strings.Contains(err.Error(), srv.URL) {
		t.Errorf("error leaks request url: %v", err)
	}
}

func TestGetJSONMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 2, time.Millisecond, zap.NewNop())
	err := c.GetJSON(context.Background(), "test", srv.URL, nil, &struct{}{})
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Source != "test" {
		t.Fatalf("expected SourceError for test, got %v", err)
	}
}
