package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetHtml(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<html><body><h1>Not found</h1></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body><a href="/x">x</a></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(nil)

	doc, err := f.GetHtml(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("GetHtml() error = %v", err)
	}
	if n := doc.Find("a").Length(); n != 1 {
		t.Errorf("anchors = %d, want 1", n)
	}

	// Error pages are still parsed.
	doc, err = f.GetHtml(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("GetHtml() on 404 error = %v", err)
	}
	if got := doc.Find("h1").Text(); got != "Not found" {
		t.Errorf("h1 = %q", got)
	}
}

func TestGetHtmlTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewFetcher(nil).GetHtml(context.Background(), url); err == nil {
		t.Fatal("expected error for closed server")
	}
}
