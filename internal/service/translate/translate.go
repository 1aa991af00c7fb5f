// Package translate provides text translation: the service contract,
// the language code mapping, and the asynchronous per-segment
// dispatcher.
package translate

import (
	"context"
	"strings"
)

// Request is one translation request. SourceLang may be empty, meaning
// the service auto-detects the source language.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang,omitempty"`
	TargetLang string `json:"targetLang"`
}

// Response is the result of one translation request.
type Response struct {
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang,omitempty"`
}

// Translator converts one text segment to the target language.
type Translator interface {
	Translate(ctx context.Context, req Request) (Response, error)
}

// sourceLangRemap maps STT-side language codes to the translation
// service's source vocabulary where the spellings diverge.
var sourceLangRemap = map[string]string{
	"no": "NB", // Norwegian -> Norwegian Bokmål
	"zh": "ZH", // Chinese
	"pt": "PT", // Portuguese
}

// MapSourceLang maps an STT-side language code to the translation
// service's source code. Codes outside the remap table are upper-cased
// as a best-effort default; an empty code stays empty (auto-detect).
func MapSourceLang(lang string) string {
	if lang == "" {
		return ""
	}
	if mapped, ok := sourceLangRemap[strings.ToLower(lang)]; ok {
		return mapped
	}
	return strings.ToUpper(lang)
}
