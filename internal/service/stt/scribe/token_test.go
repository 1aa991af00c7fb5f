package scribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tolk/internal/correlation"
)

func TestEndpointTokenProvider_FetchesToken(t *testing.T) {
	var gotMethod, gotCID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCID = r.Header.Get(correlation.Header)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-abc"}`))
	}))
	defer srv.Close()

	provider := NewEndpointTokenProvider(srv.URL, 5*time.Second)
	ctx := correlation.WithContext(context.Background(), "cid-77")
	token, err := provider.Token(ctx)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("expected token %q, got %q", "tok-abc", token)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotCID != "cid-77" {
		t.Errorf("expected correlation id forwarded, got %q", gotCID)
	}
}

func TestEndpointTokenProvider_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no key configured", http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := NewEndpointTokenProvider(srv.URL, 5*time.Second)
	_, err := provider.Token(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestEndpointTokenProvider_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":""}`))
	}))
	defer srv.Close()

	provider := NewEndpointTokenProvider(srv.URL, 5*time.Second)
	if _, err := provider.Token(context.Background()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
