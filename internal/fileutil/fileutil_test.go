package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.ass")

	if err := WriteFileAtomic(path, []byte("first"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o640); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q, want %q", got, "second")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}
	assertNoTempFiles(t, dir)
}

func TestSaveStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.mp4")

	n, err := SaveStream(path, strings.NewReader("video bytes"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len("video bytes")) {
		t.Fatalf("written = %d", n)
	}

	n, err = SaveStream(path, strings.NewReader("exact"), 5)
	if err != nil || n != 5 {
		t.Fatalf("exact limit: n=%d err=%v", n, err)
	}
}

func TestSaveStreamRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.mp4")

	_, err := SaveStream(path, strings.NewReader("too many bytes"), 4)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("partial file should not exist, stat err = %v", statErr)
	}
	assertNoTempFiles(t, dir)
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.ass")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should be removed, stat err = %v", err)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}
