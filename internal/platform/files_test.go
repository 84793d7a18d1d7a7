package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"source.mp3", true},
		{"source.M4A", true},
		{"no_vocals.wav", true},
		{"source.mp3.part", false},
		{"source.ytdl", false},
		{"video.mp4", false},
		{"notes.txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAudioFile(tt.path); got != tt.want {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFindNewestAudio(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "old.mp3")
	newer := filepath.Join(dir, "new.mp3")
	ignored := filepath.Join(dir, "partial.mp3.part")

	for _, path := range []string{older, newer, ignored} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	// Make modification order explicit instead of relying on write timing.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("Failed to age file: %v", err)
	}

	found, err := FindNewestAudio(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found != newer {
		t.Errorf("Expected newest audio %s, got %s", newer, found)
	}
}

func TestFindNewestAudioEmptyDir(t *testing.T) {
	dir := t.TempDir()

	if _, err := FindNewestAudio(dir); err == nil {
		t.Fatal("Expected error for directory without audio files")
	}
}

func TestRemoveTree(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "separated", "htdemucs", "source")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "no_vocals.mp3"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := RemoveTree(filepath.Join(dir, "separated")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "separated")); !os.IsNotExist(err) {
		t.Error("Expected tree removed")
	}

	// Removing nothing is fine.
	if err := RemoveTree(""); err != nil {
		t.Errorf("Expected empty path to be a no-op, got %v", err)
	}
}
