// Package labeler plays videos one at a time on a display surface and turns
// the first recognized key press into a binary label per video.
package labeler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/lepinkainen/videolabeler/labels"
	"github.com/lepinkainen/videolabeler/video"
)

// DefaultPoll is how long the labeler waits for a key after each frame
const DefaultPoll = time.Millisecond

// ErrInterrupted is returned when the user aborts the whole run
var ErrInterrupted = errors.New("labeling interrupted")

// Key is an input event recognized by the labeler
type Key int

const (
	KeyNone  Key = iota
	KeyMark      // label the current video true and advance
	KeyQuit      // advance without marking
	KeyAbort     // stop the run, nothing is saved
)

func (k Key) String() string {
	switch k {
	case KeyMark:
		return "mark"
	case KeyQuit:
		return "quit"
	case KeyAbort:
		return "abort"
	default:
		return "none"
	}
}

// Surface is a display opened for exactly one video
type Surface interface {
	// Show renders a frame
	Show(frame image.Image) error
	// PollKey waits at most wait for a key press and returns KeyNone on timeout
	PollKey(wait time.Duration) Key
	// Close tears the display down
	Close() error
}

// VideoInfo identifies the video a surface is opened for
type VideoInfo struct {
	Path  string
	Index int // zero based position in the run
	Total int
}

// Labeler runs the per-video PLAYING -> DONE state machine
type Labeler struct {
	OpenFrames  func(ctx context.Context, path string) (video.FrameSource, error)
	OpenSurface func(info VideoInfo) (Surface, error)

	// Poll is the key wait after each frame, DefaultPoll when zero
	Poll time.Duration
	// Realtime waits one frame interval per frame instead of Poll when the
	// frame source knows its frame rate
	Realtime bool
	// HashFirstFrame stores the perceptual hash of the first frame on the record
	HashFirstFrame bool

	Logger *zap.Logger
}

// frameIntervaler is implemented by sources that know their frame rate
type frameIntervaler interface {
	FrameInterval() time.Duration
}

// LabelVideo plays a single video until a key decides its label or the
// frames run out. The surface is closed before LabelVideo returns.
func (l *Labeler) LabelVideo(ctx context.Context, info VideoInfo) (record labels.Record, err error) {
	record = labels.Record{VideoPath: info.Path}

	src, err := l.OpenFrames(ctx, info.Path)
	if err != nil {
		return record, err
	}

	surface, err := l.OpenSurface(info)
	if err != nil {
		_ = src.Close()
		return record, fmt.Errorf("failed to open display: %w", err)
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close display: %w", cerr)
		}
	}()

	wait := l.pollWait(src)
	hashed := false

playback:
	for frame, ferr := range video.Stream(src) {
		if ferr != nil {
			return record, ferr
		}

		if l.HashFirstFrame && !hashed {
			hash, herr := video.FramePerceptualHash(frame)
			if herr != nil {
				return record, herr
			}
			record.PHash = hash
			hashed = true
		}

		if serr := surface.Show(frame); serr != nil {
			return record, fmt.Errorf("failed to show frame: %w", serr)
		}

		switch surface.PollKey(wait) {
		case KeyMark:
			record.SpaceBar = true
			break playback
		case KeyQuit:
			break playback
		case KeyAbort:
			return record, ErrInterrupted
		}
	}

	return record, nil
}

// LabelAll labels every path in order. onRecord, when set, is called after each
// video once its surface is closed.
func (l *Labeler) LabelAll(ctx context.Context, paths []string, onRecord func(labels.Record)) (labels.Set, error) {
	log := l.logger()
	set := make(labels.Set, 0, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		started := time.Now()
		record, err := l.LabelVideo(ctx, VideoInfo{Path: path, Index: i, Total: len(paths)})
		if err != nil {
			return nil, fmt.Errorf("labeling %s: %w", path, err)
		}

		log.Info("video labeled",
			zap.String("video_path", record.VideoPath),
			zap.Bool("space_bar", bool(record.SpaceBar)),
			zap.Int("index", i),
			zap.Duration("elapsed", time.Since(started)),
		)

		set = append(set, record)
		if onRecord != nil {
			onRecord(record)
		}
	}

	return set, nil
}

func (l *Labeler) pollWait(src video.FrameSource) time.Duration {
	if l.Realtime {
		if fi, ok := src.(frameIntervaler); ok && fi.FrameInterval() > 0 {
			return fi.FrameInterval()
		}
	}
	if l.Poll > 0 {
		return l.Poll
	}
	return DefaultPoll
}

func (l *Labeler) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
