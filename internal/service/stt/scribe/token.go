package scribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tolk/internal/correlation"
)

// EndpointTokenProvider fetches single-use tokens from an HTTP token
// endpoint. Each fetch is one POST with no body; any non-success
// status means "cannot connect" and is not retried.
type EndpointTokenProvider struct {
	url    string
	client *http.Client
}

// NewEndpointTokenProvider creates a provider for the given endpoint.
// timeout bounds each fetch.
func NewEndpointTokenProvider(url string, timeout time.Duration) *EndpointTokenProvider {
	return &EndpointTokenProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Token fetches one single-use token. A correlation identifier present
// on ctx is forwarded unchanged.
func (p *EndpointTokenProvider) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, nil)
	if err != nil {
		return "", err
	}
	if cid := correlation.FromContext(ctx); cid != "" {
		req.Header.Set(correlation.Header, cid)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}
	return payload.Token, nil
}
