package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is set. A missing key is
// a terminal failure for each request, not a startup error, so the rest
// of the service keeps working.
var ErrNotConfigured = errors.New("translate: api key not configured")

// DeepL is an upstream Translator backed by the DeepL v2 API. Used by
// tolkd to serve the translation endpoint.
type DeepL struct {
	url    string
	apiKey string
	client *http.Client
}

// NewDeepL creates a DeepL-backed translator.
func NewDeepL(url, apiKey string, timeout time.Duration) *DeepL {
	return &DeepL{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type deepLRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type deepLResponse struct {
	Translations []struct {
		Text                   string `json:"text"`
		DetectedSourceLanguage string `json:"detected_source_language"`
	} `json:"translations"`
}

// Translate performs one upstream translation. The source language is
// remapped into DeepL's vocabulary; empty means auto-detect.
func (d *DeepL) Translate(ctx context.Context, req Request) (Response, error) {
	if d.apiKey == "" {
		return Response{}, ErrNotConfigured
	}

	body, err := json.Marshal(deepLRequest{
		Text:       []string{req.Text},
		SourceLang: MapSourceLang(req.SourceLang),
		TargetLang: strings.ToUpper(req.TargetLang),
	})
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("deepl returned %d: %s", resp.StatusCode, msg)
	}

	var out deepLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode deepl response: %w", err)
	}
	if len(out.Translations) == 0 {
		return Response{}, fmt.Errorf("deepl returned no translations")
	}

	return Response{
		TranslatedText:     out.Translations[0].Text,
		DetectedSourceLang: out.Translations[0].DetectedSourceLanguage,
	}, nil
}
