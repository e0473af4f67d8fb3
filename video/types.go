package video

import "fmt"

// VideoMetadata contains the stream properties needed to decode and pace playback
type VideoMetadata struct {
	Width     int
	Height    int
	FrameRate float64 // frames per second, 0 when ffprobe cannot tell
}

// DecodeError reports a failure of the external decoder for a single video
type DecodeError struct {
	Path   string
	Err    error
	Stderr string
}

func (e *DecodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("decode %s: %v (%s)", e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
