// Package models defines the data structures for segment events.
package models

// SegmentCommitted represents a finalized utterance appended to the timeline.
type SegmentCommitted struct {
	EventType string  `json:"eventType"`
	SessionID string  `json:"sessionId"`
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"` // seconds since recording start
	EmittedAt int64   `json:"emittedAt"` // unix millis
}

// SegmentTranslated represents a translation attached to an existing segment.
type SegmentTranslated struct {
	EventType          string `json:"eventType"`
	SessionID          string `json:"sessionId"`
	Index              int    `json:"index"`
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang,omitempty"`
	EmittedAt          int64  `json:"emittedAt"` // unix millis
}
