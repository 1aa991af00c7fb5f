package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tolk/internal/correlation"
)

func TestClient_Translate(t *testing.T) {
	var gotBody Request
	var gotCID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCID = r.Header.Get(correlation.Header)
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(Response{
			TranslatedText:     "hola mundo",
			DetectedSourceLang: "EN",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	ctx := correlation.WithContext(context.Background(), "cid-123")

	res, err := client.Translate(ctx, Request{Text: "hello world", TargetLang: "ES"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "hola mundo" {
		t.Errorf("expected 'hola mundo', got %q", res.TranslatedText)
	}
	if res.DetectedSourceLang != "EN" {
		t.Errorf("expected detected source 'EN', got %q", res.DetectedSourceLang)
	}
	if gotBody.Text != "hello world" || gotBody.TargetLang != "ES" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if gotCID != "cid-123" {
		t.Errorf("expected correlation id forwarded, got %q", gotCID)
	}
}

func TestClient_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	_, err := client.Translate(context.Background(), Request{Text: "hi", TargetLang: "ES"})
	if err == nil {
		t.Fatal("expected error for non-success status")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestClient_NoCorrelationHeaderWhenAbsent(t *testing.T) {
	var gotCID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCID = r.Header.Get(correlation.Header)
		json.NewEncoder(w).Encode(Response{TranslatedText: "x"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Translate(context.Background(), Request{Text: "hi", TargetLang: "ES"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCID != "" {
		t.Errorf("expected no correlation header, got %q", gotCID)
	}
}
