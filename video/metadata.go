package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var resolutionRegex = regexp.MustCompile(`^\d+x\d+$`)

// GetVideoResolution extracts the video resolution using ffprobe
func GetVideoResolution(videoFile string) (string, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", "--", videoFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// Get the actual error message from ffprobe
		return "", fmt.Errorf("failed to get resolution: %w\nffprobe output: %s", err, string(output))
	}

	// Fix cases where command prints multiple resolutions
	outputParts := strings.SplitN(string(output), "\n", 2)
	resolution := strings.TrimSpace(outputParts[0])
	resolution = strings.TrimSuffix(resolution, "x")

	if !resolutionRegex.MatchString(resolution) {
		return "", fmt.Errorf("invalid resolution format: %s", resolution)
	}

	return resolution, nil
}

// GetVideoMetadata reads width, height and average frame rate of the first video stream
func GetVideoMetadata(ctx context.Context, videoFile string) (*VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate", "-of", "csv=s=,:p=0", "--", videoFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &DecodeError{Path: videoFile, Err: fmt.Errorf("failed to probe stream: %w", err), Stderr: extractFirstLine(string(output))}
	}

	return parseStreamInfo(videoFile, string(output))
}

// parseStreamInfo parses "width,height,num/den" as printed by ffprobe's csv writer
func parseStreamInfo(videoFile, output string) (*VideoMetadata, error) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(output), "\n", 2)[0])
	fields := strings.Split(strings.TrimSuffix(line, ","), ",")
	if len(fields) < 2 {
		return nil, &DecodeError{Path: videoFile, Err: fmt.Errorf("no video stream found")}
	}

	width, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || width <= 0 {
		return nil, &DecodeError{Path: videoFile, Err: fmt.Errorf("invalid stream width %q", fields[0])}
	}
	height, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || height <= 0 {
		return nil, &DecodeError{Path: videoFile, Err: fmt.Errorf("invalid stream height %q", fields[1])}
	}

	meta := &VideoMetadata{Width: width, Height: height}
	if len(fields) > 2 {
		meta.FrameRate = parseFrameRate(fields[2])
	}
	return meta, nil
}

// parseFrameRate converts ffprobe rationals like "30000/1001" to frames per second
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if !found {
		fps, err := strconv.ParseFloat(s, 64)
		if err != nil || fps < 0 {
			return 0
		}
		return fps
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	if n/d < 0 {
		return 0
	}
	return n / d
}

// GetVideoDuration extracts the video duration using ffprobe and returns it in minutes
func GetVideoDuration(videoFile string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries",
		"format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "--", videoFile)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to get duration: %w", err)
	}

	durationSecs, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return durationSecs / 60, nil
}

// GetVideoCodec extracts the video codec using ffprobe
func GetVideoCodec(videoFile string) (string, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=codec_name", "-of", "default=noprint_wrappers=1:nokey=1", "--", videoFile)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get codec: %w", err)
	}

	codec := strings.TrimSpace(string(output))
	if codec == "" {
		return "", fmt.Errorf("could not detect video codec")
	}

	return codec, nil
}

// GetFileSize returns the size of a file in bytes
func GetFileSize(filePath string) (int64, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file size: %w", err)
	}
	return fi.Size(), nil
}
