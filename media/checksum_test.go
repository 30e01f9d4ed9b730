package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	got, err := Checksum(path)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}

	// md5 of "hello world"
	want := "5eb63bbbe01eeed093cb22bb8f5acdc3"
	if got != want {
		t.Errorf("Checksum = %q, want %q", got, want)
	}
}

func TestChecksumSameContentDifferentName(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "day1_cam1.mp4")
	second := filepath.Join(dir, "copy_of_day1.mp4")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("identical footage bytes"), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}

	a, err := Checksum(first)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	b, err := Checksum(second)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if a != b {
		t.Errorf("Renamed copies must share a digest, got %q and %q", a, b)
	}
}

func TestChecksumMissingFile(t *testing.T) {
	if _, err := Checksum(filepath.Join(t.TempDir(), "nope.mp4")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
