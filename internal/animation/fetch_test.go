package animation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"v":"5.5.7","layers":[]}`))
	}))
	defer srv.Close()

	var got string
	f := New(srv.URL, time.Second, nil)
	f.Observer = func(r string) { got = r }
	doc := f.Fetch(context.Background())
	if string(doc) != `{"v":"5.5.7","layers":[]}` {
		t.Fatalf("doc = %s", doc)
	}
	if got != ResultOK {
		t.Fatalf("result = %s", got)
	}
}

func TestFetchFailuresYieldNil(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, ResultStatus},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, ResultStatus},
		{"html body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html></html>")) }, ResultInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			var got string
			f := New(srv.URL, time.Second, nil)
			f.Observer = func(r string) { got = r }
			if doc := f.Fetch(context.Background()); doc != nil {
				t.Fatalf("want nil, got %s", doc)
			}
			if got != tc.want {
				t.Fatalf("result = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	calls := 0
	f := New(url, time.Second, nil)
	f.Observer = func(r string) {
		calls++
		if r != ResultError {
			t.Fatalf("result = %s", r)
		}
	}
	if doc := f.Fetch(context.Background()); doc != nil {
		t.Fatalf("want nil")
	}
	if calls != 1 {
		t.Fatalf("fetch must not retry, observed %d attempts", calls)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	f := New(srv.URL, 50*time.Millisecond, nil)
	if doc := f.Fetch(context.Background()); doc != nil {
		t.Fatalf("want nil on timeout")
	}
}
