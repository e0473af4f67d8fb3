package video

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
)

const (
	testVideoWidth  = 64
	testVideoHeight = 48
	testVideoFPS    = 10
)

// requireFFmpeg skips tests that need the ffmpeg binaries
func requireFFmpeg(t *testing.T) {
	t.Helper()
	if exec.Command("ffmpeg", "-version").Run() != nil || exec.Command("ffprobe", "-version").Run() != nil {
		t.Skip("ffmpeg/ffprobe not available, skipping")
	}
}

// generateTestVideo encodes a synthetic clip with the given number of frames
func generateTestVideo(t *testing.T, name string, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("ffmpeg", "-v", "error", "-nostdin",
		"-f", "lavfi", "-i", fmt.Sprintf("testsrc=size=%dx%d:rate=%d", testVideoWidth, testVideoHeight, testVideoFPS),
		"-frames:v", fmt.Sprint(frames),
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p",
		"-y", path)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, output)
	}
	return path
}
