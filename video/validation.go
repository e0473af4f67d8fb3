package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// videoExtensions lists the containers ffmpeg is expected to demux
var videoExtensions = []string{".mp4", ".webm", ".mov", ".flv", ".mkv", ".avi", ".wmv", ".mpg"}

// IsVideoFile checks if the given file extension is one of known video file extensions
func IsVideoFile(path string) bool {
	ext := filepath.Ext(path)
	ext = strings.ToLower(ext) // handle cases where extension is upper case

	for _, v := range videoExtensions {
		if v == ext {
			return true
		}
	}
	return false
}

// ValidateVideoIntegrity checks if a video file can be decoded end to end.
// Returns a *DecodeError if the file is corrupted or cannot be read.
func ValidateVideoIntegrity(ctx context.Context, filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}

	// Decode the video stream to the null muxer; container-level probing alone
	// misses truncated files whose moov atom is intact
	cmd := exec.CommandContext(ctx, "ffmpeg", "-v", "error", "-nostdin", "-xerror", "-i", filePath,
		"-map", "0:v:0", "-f", "null", "-")
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if strings.Contains(outputStr, "moov atom not found") {
			return &DecodeError{Path: filePath, Err: fmt.Errorf("video file is corrupted (missing metadata)"), Stderr: extractFirstLine(outputStr)}
		}
		if strings.Contains(outputStr, "Invalid data found") ||
			strings.Contains(outputStr, "corrupt") ||
			strings.Contains(outputStr, "truncated") ||
			strings.Contains(outputStr, "Invalid argument") {
			return &DecodeError{Path: filePath, Err: fmt.Errorf("video file is corrupted or invalid"), Stderr: extractFirstLine(outputStr)}
		}

		return &DecodeError{Path: filePath, Err: fmt.Errorf("ffmpeg error: %w", err), Stderr: extractFirstLine(outputStr)}
	}

	return nil
}

// extractFirstLine extracts just the first line from a multi-line string
func extractFirstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "no additional information available"
}
