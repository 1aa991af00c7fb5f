package timeline

import (
	"errors"
	"testing"
	"time"
)

func TestOnCommitted_AppendsSegmentAndClearsPartial(t *testing.T) {
	tl := New()

	tl.OnPartial("hel")
	tl.OnPartial("hello")

	index, appended := tl.OnCommitted("hello world")
	if !appended {
		t.Fatal("expected segment to be appended")
	}
	if index != 0 {
		t.Errorf("expected index 0, got %d", index)
	}
	if tl.Partial() != "" {
		t.Errorf("expected partial cleared, got %q", tl.Partial())
	}

	seg, ok := tl.Segment(0)
	if !ok {
		t.Fatal("expected segment 0 to exist")
	}
	if seg.Text != "hello world" {
		t.Errorf("expected text 'hello world', got %q", seg.Text)
	}
	if seg.Translated {
		t.Error("expected no translation on a fresh segment")
	}
}

func TestOnCommitted_EmptyTextIsNoOpButClearsPartial(t *testing.T) {
	tl := New()

	tl.OnPartial("something")

	tests := []string{"", "   ", "\t\n"}
	for _, text := range tests {
		if _, appended := tl.OnCommitted(text); appended {
			t.Errorf("expected no append for %q", text)
		}
	}

	if tl.Len() != 0 {
		t.Errorf("expected 0 segments, got %d", tl.Len())
	}
	if tl.Partial() != "" {
		t.Error("expected partial cleared by commit signal")
	}
}

func TestOnCommitted_IndicesAreDenseAndOrdered(t *testing.T) {
	tl := New()

	texts := []string{"one", "two", "three", "four"}
	for i, text := range texts {
		index, appended := tl.OnCommitted(text)
		if !appended {
			t.Fatalf("expected append for %q", text)
		}
		if index != i {
			t.Errorf("expected index %d, got %d", i, index)
		}
	}

	segs := tl.Segments()
	if len(segs) != len(texts) {
		t.Fatalf("expected %d segments, got %d", len(texts), len(segs))
	}
	for i, seg := range segs {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
		if seg.Text != texts[i] {
			t.Errorf("segment %d has text %q, want %q", i, seg.Text, texts[i])
		}
	}
}

func TestTimestamps_NonDecreasing(t *testing.T) {
	tl := New()
	now := time.Now()
	tl.now = func() time.Time { return now }
	tl.Reset()

	for i := 0; i < 3; i++ {
		now = now.Add(time.Second)
		tl.OnCommitted("segment")
	}

	segs := tl.Segments()
	for i := 1; i < len(segs); i++ {
		if segs[i].Timestamp < segs[i-1].Timestamp {
			t.Errorf("timestamp decreased: %v -> %v", segs[i-1].Timestamp, segs[i].Timestamp)
		}
	}
	if segs[0].Timestamp != 1.0 {
		t.Errorf("expected first timestamp 1.0s, got %v", segs[0].Timestamp)
	}
}

func TestSetTranslation_TargetsExactIndex(t *testing.T) {
	tl := New()
	tl.OnCommitted("first")
	tl.OnCommitted("second")
	tl.OnCommitted("third")

	if err := tl.SetTranslation(1, "segundo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []string{"", "segundo", ""} {
		seg, _ := tl.Segment(i)
		if seg.Translation != want {
			t.Errorf("segment %d translation %q, want %q", i, seg.Translation, want)
		}
		if seg.Translated != (want != "") {
			t.Errorf("segment %d translated flag wrong", i)
		}
	}
}

func TestSetTranslation_Errors(t *testing.T) {
	tl := New()
	tl.OnCommitted("only")

	if err := tl.SetTranslation(5, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := tl.SetTranslation(-1, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange for negative index, got %v", err)
	}

	if err := tl.SetTranslation(0, "solo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tl.SetTranslation(0, "again"); !errors.Is(err, ErrTranslationWritten) {
		t.Errorf("expected ErrTranslationWritten, got %v", err)
	}

	seg, _ := tl.Segment(0)
	if seg.Translation != "solo" {
		t.Errorf("expected first write preserved, got %q", seg.Translation)
	}
}

func TestReset_DiscardsState(t *testing.T) {
	tl := New()
	tl.OnPartial("partial")
	tl.OnCommitted("committed")

	tl.Reset()

	if tl.Len() != 0 {
		t.Errorf("expected empty timeline after reset, got %d segments", tl.Len())
	}
	if tl.Partial() != "" {
		t.Errorf("expected empty partial after reset, got %q", tl.Partial())
	}

	// Indices restart at 0.
	index, _ := tl.OnCommitted("fresh")
	if index != 0 {
		t.Errorf("expected index 0 after reset, got %d", index)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"hello", "Hello"},
		{"Hello", "Hello"},
		{"h", "H"},
		{"ça va", "Ça va"},
		{"123 go", "123 go"},
	}

	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5.7, "0:05"},
		{60, "1:00"},
		{125.9, "2:05"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
