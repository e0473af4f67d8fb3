package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"iter"
	"math"
	"os/exec"
	"time"
)

// FrameOptions controls how frames are decoded
type FrameOptions struct {
	// DecodeWidth caps the width of decoded frames; 0 keeps the native width.
	// Terminal rendering never needs more than a few hundred columns.
	DecodeWidth int
}

// FrameSource yields decoded frames until io.EOF
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}

// FrameReader decodes a video to RGB frames by piping raw video out of ffmpeg
type FrameReader struct {
	path     string
	width    int
	height   int
	interval time.Duration

	cmd    *exec.Cmd
	parent context.Context
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr bytes.Buffer
	buf    []byte

	frames   int
	eof      bool
	closed   bool
	closeErr error
}

// OpenFrames probes the video and starts an ffmpeg process decoding it.
// The caller owns the returned reader and must Close it.
func OpenFrames(ctx context.Context, path string, opts FrameOptions) (*FrameReader, error) {
	meta, err := GetVideoMetadata(ctx, path)
	if err != nil {
		return nil, err
	}

	width, height := ScaledSize(meta.Width, meta.Height, opts.DecodeWidth)

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, "ffmpeg", "-v", "error", "-nostdin",
		"-i", path,
		"-map", "0:v:0", "-an", "-sn",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"pipe:1")

	r := &FrameReader{
		path:   path,
		width:  width,
		height: height,
		cmd:    cmd,
		parent: ctx,
		cancel: cancel,
		buf:    make([]byte, width*height*3),
	}
	if meta.FrameRate > 0 {
		r.interval = time.Duration(float64(time.Second) / meta.FrameRate)
	}

	cmd.Stderr = &r.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create ffmpeg pipe: %w", err)
	}
	r.stdout = stdout

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to start ffmpeg: %w", err)}
	}

	return r, nil
}

// Size returns the dimensions of decoded frames
func (r *FrameReader) Size() (int, int) { return r.width, r.height }

// FrameInterval is the nominal time between frames, 0 when the frame rate is unknown
func (r *FrameReader) FrameInterval() time.Duration { return r.interval }

// Frames returns the number of frames decoded so far
func (r *FrameReader) Frames() int { return r.frames }

// Next decodes the next frame. It returns io.EOF once ffmpeg has no more output.
func (r *FrameReader) Next() (image.Image, error) {
	if r.closed {
		return nil, fmt.Errorf("frame reader for %s is closed", r.path)
	}
	if r.eof {
		return nil, io.EOF
	}

	_, err := io.ReadFull(r.stdout, r.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		r.eof = true
		return nil, io.EOF
	case r.parent.Err() != nil:
		// ffmpeg was killed by cancellation, possibly mid-frame
		r.eof = true
		return nil, r.parent.Err()
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.eof = true
		return nil, &DecodeError{Path: r.path, Err: fmt.Errorf("truncated frame after %d frames", r.frames), Stderr: extractFirstLine(r.stderr.String())}
	default:
		r.eof = true
		return nil, &DecodeError{Path: r.path, Err: err}
	}

	r.frames++
	return rgbToImage(r.buf, r.width, r.height), nil
}

// Close releases the ffmpeg process. A reader abandoned before io.EOF kills
// ffmpeg and does not report the resulting exit status.
func (r *FrameReader) Close() error {
	if r.closed {
		return r.closeErr
	}
	r.closed = true

	abandoned := !r.eof
	if abandoned {
		r.cancel()
	}

	err := r.cmd.Wait()
	r.cancel()

	if err != nil && !abandoned {
		if ctxErr := r.parent.Err(); ctxErr != nil {
			r.closeErr = ctxErr
		} else {
			r.closeErr = &DecodeError{Path: r.path, Err: fmt.Errorf("ffmpeg exited: %w", err), Stderr: extractFirstLine(r.stderr.String())}
		}
	}
	return r.closeErr
}

// Stream turns a frame source into a lazy, single-use sequence. The source is
// closed when the sequence is exhausted, fails, or the consumer breaks out early.
// A failing Close after a clean end is yielded as the final error.
func Stream(src FrameSource) iter.Seq2[image.Image, error] {
	return func(yield func(image.Image, error) bool) {
		closed := false
		defer func() {
			if !closed {
				_ = src.Close()
			}
		}()

		for {
			frame, err := src.Next()
			if errors.Is(err, io.EOF) {
				closed = true
				if cerr := src.Close(); cerr != nil {
					yield(nil, cerr)
				}
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}

// ScaledSize fits width x height into maxWidth keeping the aspect ratio.
// Both results are even and at least 2, which every ffmpeg scaler accepts.
func ScaledSize(width, height, maxWidth int) (int, int) {
	w, h := width, height
	if maxWidth > 0 && width > maxWidth {
		w = maxWidth
		h = int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
	}
	w -= w % 2
	h -= h % 2
	return max(w, 2), max(h, 2)
}

func rgbToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
