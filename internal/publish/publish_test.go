package publish

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLatestReturnsNewestPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "1" {
			t.Errorf("per_page = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"link":"https://blog.example/combo-guide","date":"2026-08-30T09:00:00","title":{"rendered":"Combo Guide"}}]`))
	}))
	defer srv.Close()

	post, err := NewClient(srv.URL).Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if post.URL != "https://blog.example/combo-guide" || post.Title != "Combo Guide" {
		t.Fatalf("post = %+v", post)
	}
}

func TestLatestEmptyFeedIsNoPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background())
	if !errors.Is(err, ErrNoPosts) {
		t.Fatalf("expected ErrNoPosts, got %v", err)
	}
}

func TestLatestNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background())
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if uerr.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", uerr.Status)
	}
}

func TestLatestNetworkFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background())
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
