package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("game.checkmate", map[string]string{"Winner": "White"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Checkmate. White wins." {
		t.Fatalf("rendered = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatal("missing key should error")
	}
	if got := c.Get("no.such.key", "fallback"); got != "fallback" {
		t.Fatalf("Get fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := []byte("game:\n  draw: \"Nobody wins.\"\n")
	if err := os.WriteFile(filepath.Join(dir, "override.yaml"), override, 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Get("game.draw", ""); got != "Nobody wins." {
		t.Fatalf("override not applied: %q", got)
	}
	// Untouched keys keep their embedded defaults.
	if got := c.Get("game.started", ""); got != "New game. White to move." {
		t.Fatalf("default lost: %q", got)
	}
}
