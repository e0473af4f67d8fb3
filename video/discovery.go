package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrDirectoryNotFound is returned when the video directory does not exist
	ErrDirectoryNotFound = errors.New("video directory does not exist")
	// ErrNotADirectory is returned when the video directory path points at a file
	ErrNotADirectory = errors.New("video directory path is not a directory")
	// ErrNoVideosFound is returned when discovery matches zero files
	ErrNoVideosFound = errors.New("no videos found")
)

// DefaultExtension is used when no extensions are configured
const DefaultExtension = ".mp4"

// FindVideoFiles lists the video files directly inside directory (non-recursive)
// whose extension is one of exts, sorted lexicographically by path. Names
// starting with a dot are skipped.
func FindVideoFiles(directory string, exts []string) ([]string, error) {
	fi, err := os.Stat(directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, directory)
		}
		return nil, fmt.Errorf("cannot access %s: %w", directory, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, directory)
	}

	wanted := make(map[string]bool)
	for _, ext := range normalize(exts) {
		wanted[ext] = true
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", directory, err)
	}

	var files []string
	for _, entry := range entries {
		// hidden entries such as macOS "._clip.mp4" resource forks are not videos
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(directory, entry.Name())

		// Stat follows symlinks so linked videos are picked up too
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		files = append(files, path)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (extensions: %s)", ErrNoVideosFound, directory, strings.Join(normalize(exts), ", "))
	}

	sort.Strings(files)
	return files, nil
}

// NormalizeExtensions lower-cases extensions, adds the leading dot and rejects
// anything that is not a known video container.
func NormalizeExtensions(exts []string) ([]string, error) {
	normalized := normalize(exts)
	for _, ext := range normalized {
		if !IsVideoFile("x" + ext) {
			return nil, fmt.Errorf("unsupported video extension %q", ext)
		}
	}
	return normalized, nil
}

func normalize(exts []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	if len(out) == 0 {
		out = []string{DefaultExtension}
	}
	return out
}
