package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("dropped")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil tail = (%v, %d), want (nil, 0)", lines, total)
	}
	if book.Path() != "" {
		t.Fatalf("nil path = %q, want empty", book.Path())
	}
}

func TestSessionHeaderAndLevels(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "portal.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.StartSession("head", "head@example.com")
	book.Warn("upload retry")
	book.Error("upload failed")

	lines, total := book.Tail(10)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if !strings.Contains(lines[0], "role=head user=head@example.com") {
		t.Fatalf("session header missing: %q", lines[0])
	}
	if !strings.Contains(lines[1], "WARN") || !strings.Contains(lines[2], "ERROR") {
		t.Fatalf("levels not recorded: %v", lines[1:])
	}
}
