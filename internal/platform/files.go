package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Audio file extensions the downloader or separator may produce.
var AudioExtensions = []string{".mp3", ".m4a", ".opus", ".ogg", ".aac", ".flac", ".wav", ".webm"}

// Extensions of partial downloads that must never be picked up.
var SkippedExtensions = []string{".part", ".ytdl", ".tmp"}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, skip := range SkippedExtensions {
		if ext == skip {
			return false
		}
	}
	for _, audio := range AudioExtensions {
		if ext == audio {
			return true
		}
	}
	return false
}

// FindNewestAudio returns the most recently modified audio file in dir.
// The downloader picks the final extension itself, so the exact output
// name cannot always be predicted from the template.
func FindNewestAudio(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestMod {
			newest = entry.Name()
			newestMod = info.ModTime().UnixNano()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no audio file found in %s", dir)
	}
	return filepath.Join(dir, newest), nil
}

// RemoveTree deletes a directory tree, reporting but tolerating failure.
// Cleanup is best-effort; a leftover temp dir must not fail the run.
func RemoveTree(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
