package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tolk/internal/correlation"
)

// Client calls the tolkd translation endpoint. One HTTP round-trip per
// request, bounded by the configured timeout; any non-success status is
// a terminal failure for that one request.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a translation client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Translate performs one translation request. A correlation identifier
// present on ctx is forwarded unchanged.
func (c *Client) Translate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cid := correlation.FromContext(ctx); cid != "" {
		httpReq.Header.Set(correlation.Header, cid)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("translation endpoint returned %d: %s", resp.StatusCode, msg)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode translation response: %w", err)
	}
	return out, nil
}
