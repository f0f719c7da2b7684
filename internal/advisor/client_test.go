package advisor

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPositionPrompt(t *testing.T) {
	got := buildPositionPrompt("fen-here", []string{"e4", "e5", "Nf3"})
	if !strings.Contains(got, "Position (FEN): fen-here") {
		t.Fatalf("prompt missing FEN: %q", got)
	}
	if !strings.Contains(got, "1. e4 e5 2. Nf3") {
		t.Fatalf("prompt move numbering wrong: %q", got)
	}
}

func TestBuildPositionPromptEmptyHistory(t *testing.T) {
	got := buildPositionPrompt("fen", nil)
	if !strings.Contains(got, "No moves played yet.") {
		t.Fatalf("prompt = %q", got)
	}
}

func TestShouldRetryStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !shouldRetryStatus(code) {
			t.Errorf("status %d should retry", code)
		}
	}
	for _, code := range []int{400, 401, 404} {
		if shouldRetryStatus(code) {
			t.Errorf("status %d should not retry", code)
		}
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	if backoffDuration(1) != 200*time.Millisecond {
		t.Fatalf("first backoff = %v", backoffDuration(1))
	}
	if backoffDuration(2) <= backoffDuration(1) {
		t.Fatal("backoff should grow")
	}
	if backoffDuration(10) != backoffDuration(6) {
		t.Fatal("backoff should cap")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("ab", 4); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
