package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSetTextAndUndo(t *testing.T) {
	buf := NewTextBuffer("a.js", "hello world")

	if err := buf.SetTextInRange(Range{Start: 6, End: 11}, "there"); err != nil {
		t.Fatalf("SetTextInRange: %v", err)
	}
	if err := buf.Insert(0, ">> "); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if buf.Text() != ">> hello there" {
		t.Fatalf("Text = %q", buf.Text())
	}

	if err := buf.Undo(); err != nil || buf.Text() != "hello there" {
		t.Fatalf("first undo: %q, %v", buf.Text(), err)
	}
	if err := buf.Undo(); err != nil || buf.Text() != "hello world" {
		t.Fatalf("second undo: %q, %v", buf.Text(), err)
	}
	if err := buf.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestSetTextOutOfRange(t *testing.T) {
	buf := NewTextBuffer("a.js", "abc")
	for _, r := range []Range{{-1, 1}, {2, 1}, {0, 4}} {
		if err := buf.SetTextInRange(r, "x"); err == nil {
			t.Errorf("expected error for %+v", r)
		}
	}
	if got := buf.GetTextInRange(Range{0, 9}); got != "" {
		t.Errorf("GetTextInRange out of range = %q", got)
	}
	if buf.Text() != "abc" {
		t.Fatalf("buffer changed: %q", buf.Text())
	}
}

func TestGroupedChangesUndoTogether(t *testing.T) {
	buf := NewTextBuffer("a.js", "one two")
	if err := buf.Insert(0, "zero "); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	cp := buf.CreateCheckpoint()
	buf.Insert(len(buf.Text()), " three")
	buf.Insert(len(buf.Text()), " four")
	if err := buf.GroupChangesSinceCheckpoint(cp); err != nil {
		t.Fatalf("GroupChangesSinceCheckpoint: %v", err)
	}

	if err := buf.Undo(); err != nil || buf.Text() != "zero one two" {
		t.Fatalf("undo of group: %q, %v", buf.Text(), err)
	}
}

func TestTransactRevertsOnError(t *testing.T) {
	buf := NewTextBuffer("a.js", "abc")
	boom := errors.New("boom")

	err := Transact(buf, func() error {
		if err := buf.Insert(0, "x"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if buf.Text() != "abc" {
		t.Fatalf("partial change left behind: %q", buf.Text())
	}
	if err := buf.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("reverted transaction must leave no history, got %v", err)
	}
}

func TestReplaceRanges(t *testing.T) {
	text := "define([A], function (B) {})"
	buf := NewTextBuffer("a.js", text)

	err := ReplaceRanges(buf,
		Edit{Range: Range{Start: 8, End: 9}, Text: "'x', 'y'"},
		Edit{Range: Range{Start: 22, End: 23}, Text: "x, y"},
	)
	if err != nil {
		t.Fatalf("ReplaceRanges: %v", err)
	}
	if want := "define(['x', 'y'], function (x, y) {})"; buf.Text() != want {
		t.Fatalf("Text = %q, want %q", buf.Text(), want)
	}

	if err := buf.Undo(); err != nil || buf.Text() != text {
		t.Fatalf("single undo should restore both ranges: %q, %v", buf.Text(), err)
	}
}

func TestReplaceRangesRejectsBeforeEditing(t *testing.T) {
	buf := NewTextBuffer("a.js", "0123456789")

	tests := [][]Edit{
		{{Range: Range{0, 5}, Text: "a"}, {Range: Range{4, 6}, Text: "b"}},
		{{Range: Range{0, 1}, Text: "a"}, {Range: Range{8, 20}, Text: "b"}},
	}
	for _, edits := range tests {
		if err := ReplaceRanges(buf, edits...); err == nil {
			t.Errorf("expected error for %+v", edits)
		}
		if buf.Text() != "0123456789" {
			t.Fatalf("buffer changed by rejected edits: %q", buf.Text())
		}
	}
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	buf.Insert(3, "def")
	if err := buf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "abcdef" {
		t.Fatalf("saved %q", data)
	}
	stat, _ := os.Stat(path)
	if stat.Mode().Perm() != 0o600 {
		t.Fatalf("mode changed to %v", stat.Mode().Perm())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
