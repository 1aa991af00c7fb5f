// Package timeline maintains the ordered record of finalized
// utterances for one recording session, plus the single in-flight
// partial transcript.
package timeline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Errors for invalid translation writes.
var (
	ErrIndexOutOfRange    = errors.New("timeline: segment index out of range")
	ErrTranslationWritten = errors.New("timeline: translation already written")
)

// Segment is one finalized utterance. Index is the segment's stable
// ordinal, assigned in commit order; segments are never reordered or
// renumbered. Translation is written at most once, asynchronously.
type Segment struct {
	Index       int
	Text        string
	Translation string
	Translated  bool
	Timestamp   float64 // seconds since recording start
}

// Timeline is the append-only sequence of segments addressed by stable
// integer position, plus the mutable partial state. Asynchronous
// writers target positions explicitly, never "the most recent item".
type Timeline struct {
	mu       sync.Mutex
	origin   time.Time
	segments []Segment
	partial  string
	now      func() time.Time
}

// New creates an empty timeline with its clock origin at now.
func New() *Timeline {
	t := &Timeline{now: time.Now}
	t.origin = t.now()
	return t
}

// Reset discards all segments and the partial state and restarts the
// session clock. Called on every new recording session.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = nil
	t.partial = ""
	t.origin = t.now()
}

// OnPartial replaces the partial state unconditionally.
func (t *Timeline) OnPartial(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partial = text
}

// OnCommitted appends a new segment for the finalized text and clears
// the partial state. Whitespace-only text appends nothing but still
// clears the partial, since the commit signal ends the utterance either
// way. Returns the new segment's index and whether one was appended;
// the index is the dispatch key for the translation write-back.
func (t *Timeline) OnCommitted(text string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.partial = ""
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	seg := Segment{
		Index:     len(t.segments),
		Text:      text,
		Timestamp: t.now().Sub(t.origin).Seconds(),
	}
	t.segments = append(t.segments, seg)
	return seg.Index, true
}

// SetTranslation attaches a translation to the segment at exactly
// index. The write happens at most once per segment; a second write is
// rejected so a stale response can never clobber an earlier result.
func (t *Timeline) SetTranslation(index int, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.segments) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if t.segments[index].Translated {
		return fmt.Errorf("%w: %d", ErrTranslationWritten, index)
	}
	t.segments[index].Translation = text
	t.segments[index].Translated = true
	return nil
}

// Partial returns the current partial transcript, or "".
func (t *Timeline) Partial() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.partial
}

// Len returns the number of committed segments.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.segments)
}

// Segment returns the segment at index.
func (t *Timeline) Segment(index int) (Segment, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.segments) {
		return Segment{}, false
	}
	return t.segments[index], true
}

// Segments returns a copy of all committed segments in commit order.
func (t *Timeline) Segments() []Segment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Capitalize upper-cases the first rune for presentation. Pure
// projection; stored text is never modified.
func Capitalize(text string) string {
	if text == "" {
		return text
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}

// FormatTimestamp renders seconds-from-start as m:ss for display.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
