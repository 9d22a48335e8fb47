package viz

import (
	"strings"
	"testing"
)

func TestEstimateTextWidth_ScalesWithLengthAndFont(t *testing.T) {
	if got := estimateTextWidth("", 14); got != 0 {
		t.Fatalf("empty text width = %d, want 0", got)
	}
	a := estimateTextWidth("abcd", 14)
	b := estimateTextWidth("abcdabcd", 14)
	if b != 2*a {
		t.Errorf("doubling chars: got %d, want %d", b, 2*a)
	}
	small := estimateTextWidth("abcd", 12)
	big := estimateTextWidth("abcd", 24)
	if big != 2*small {
		t.Errorf("doubling font: got %d, want %d", big, 2*small)
	}
}

func TestEstimateTextWidth_CountsRunesNotBytes(t *testing.T) {
	ascii := estimateTextWidth("aaaa", 14)
	umlaut := estimateTextWidth("ääää", 14)
	if ascii != umlaut {
		t.Errorf("multibyte runes measured differently: %d vs %d", umlaut, ascii)
	}
}

func TestTruncateToWidth(t *testing.T) {
	// Fits untouched.
	if got := truncateToWidth("ok", 14, 1000); got != "ok" {
		t.Errorf("no-op truncate changed text: %q", got)
	}
	// Must end with ellipsis when cut, and never exceed the cap.
	long := "Gross domestic product at market prices"
	got := truncateToWidth(long, 14, 100)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated text lacks ellipsis: %q", got)
	}
	if w := estimateTextWidth(got, 14); w > 100 {
		t.Errorf("truncated width %d exceeds cap 100", w)
	}
	// Zero-width cap degenerates to empty.
	if got := truncateToWidth("abc", 14, 0); got != "" {
		t.Errorf("zero cap: got %q, want empty", got)
	}
}

func TestWrapToWidth_WordBoundaries(t *testing.T) {
	lines := wrapToWidth("alpha beta gamma delta", 14, 80)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, ln := range lines {
		if w := estimateTextWidth(ln, 14); w > 80 {
			t.Errorf("line %q width %d exceeds 80", ln, w)
		}
	}
	if joined := strings.Join(lines, " "); joined != "alpha beta gamma delta" {
		t.Errorf("wrap lost content: %q", joined)
	}
}

func TestWrapToWidth_HardBreaksLongWords(t *testing.T) {
	word := strings.Repeat("x", 40)
	lines := wrapToWidth(word, 14, 60)
	if len(lines) < 2 {
		t.Fatalf("long word not hard-broken: %v", lines)
	}
	if joined := strings.Join(lines, ""); joined != word {
		t.Errorf("hard break lost characters: got %d, want %d", len(joined), len(word))
	}
}

func TestWrapToWidth_TinyCapReturnsSingleTruncatedLine(t *testing.T) {
	lines := wrapToWidth("something long enough", 14, 12)
	if len(lines) != 1 {
		t.Fatalf("cap <= 12 must collapse to one line, got %v", lines)
	}
}
