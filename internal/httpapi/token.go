package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTokenNotConfigured is returned when no upstream API key is set.
var ErrTokenNotConfigured = errors.New("httpapi: speech api key not configured")

// TokenSource obtains a single-use streaming token from the upstream
// speech service.
type TokenSource interface {
	Issue(ctx context.Context) (string, error)
}

// UpstreamTokenSource proxies the upstream single-use-token endpoint,
// authenticating with the service API key. The key never reaches the
// pipeline client; only short-lived tokens do.
type UpstreamTokenSource struct {
	url    string
	apiKey string
	client *http.Client
}

// NewUpstreamTokenSource creates a token source for the given upstream
// endpoint.
func NewUpstreamTokenSource(url, apiKey string, timeout time.Duration) *UpstreamTokenSource {
	return &UpstreamTokenSource{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Issue requests one single-use token.
func (s *UpstreamTokenSource) Issue(ctx context.Context) (string, error) {
	if s.apiKey == "" {
		return "", ErrTokenNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upstream token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upstream token response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("upstream token endpoint returned empty token")
	}
	return payload.Token, nil
}
