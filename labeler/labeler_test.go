package labeler

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/videolabeler/labels"
	"github.com/lepinkainen/videolabeler/video"
)

// fakeFrames serves n blank frames, then endErr or io.EOF
type fakeFrames struct {
	n        int
	served   int
	endErr   error
	interval time.Duration
	closed   bool
}

func (f *fakeFrames) Next() (image.Image, error) {
	if f.served >= f.n {
		if f.endErr != nil {
			return nil, f.endErr
		}
		return nil, io.EOF
	}
	f.served++
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func (f *fakeFrames) Close() error {
	f.closed = true
	return nil
}

func (f *fakeFrames) FrameInterval() time.Duration { return f.interval }

// fakeSurface returns the scripted key after the given number of frames
type fakeSurface struct {
	keyAt  int
	key    Key
	shown  int
	polls  []time.Duration
	closed bool
}

func (s *fakeSurface) Show(image.Image) error {
	s.shown++
	return nil
}

func (s *fakeSurface) PollKey(wait time.Duration) Key {
	s.polls = append(s.polls, wait)
	if s.keyAt > 0 && s.shown == s.keyAt {
		return s.key
	}
	return KeyNone
}

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

// script sets up a labeler where each video plays the given number of frames
// and receives the given key after keyAt frames (0 means never)
type script struct {
	frames int
	keyAt  int
	key    Key
}

type harness struct {
	labeler  *Labeler
	sources  map[string]*fakeFrames
	surfaces map[string]*fakeSurface
	opened   []string
}

func newHarness(scripts map[string]script) *harness {
	h := &harness{
		sources:  make(map[string]*fakeFrames),
		surfaces: make(map[string]*fakeSurface),
	}
	h.labeler = &Labeler{
		OpenFrames: func(_ context.Context, path string) (video.FrameSource, error) {
			s, ok := scripts[path]
			if !ok {
				return nil, errors.New("unknown video " + path)
			}
			src := &fakeFrames{n: s.frames, interval: 40 * time.Millisecond}
			h.sources[path] = src
			return src, nil
		},
		OpenSurface: func(info VideoInfo) (Surface, error) {
			// every previous surface must be gone before a new one opens
			for path, surface := range h.surfaces {
				if !surface.closed {
					return nil, errors.New("surface for " + path + " still open")
				}
			}
			s := scripts[info.Path]
			surface := &fakeSurface{keyAt: s.keyAt, key: s.key}
			h.surfaces[info.Path] = surface
			h.opened = append(h.opened, info.Path)
			return surface, nil
		},
	}
	return h
}

func TestLabelVideo_MarkKey(t *testing.T) {
	h := newHarness(map[string]script{"a.mp4": {frames: 10, keyAt: 3, key: KeyMark}})

	record, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "a.mp4", Total: 1})
	require.NoError(t, err)

	assert.Equal(t, labels.Record{VideoPath: "a.mp4", SpaceBar: true}, record)
	assert.Equal(t, 3, h.surfaces["a.mp4"].shown, "playback stops at the mark key")
	assert.True(t, h.sources["a.mp4"].closed)
	assert.True(t, h.surfaces["a.mp4"].closed)
}

func TestLabelVideo_QuitKey(t *testing.T) {
	h := newHarness(map[string]script{"b.mp4": {frames: 10, keyAt: 1, key: KeyQuit}})

	record, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "b.mp4", Total: 1})
	require.NoError(t, err)

	assert.False(t, bool(record.SpaceBar))
	assert.Equal(t, 1, h.surfaces["b.mp4"].shown)
	assert.True(t, h.sources["b.mp4"].closed)
}

func TestLabelVideo_EndOfStream(t *testing.T) {
	h := newHarness(map[string]script{"c.mp4": {frames: 4}})

	record, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "c.mp4", Total: 1})
	require.NoError(t, err)

	assert.False(t, bool(record.SpaceBar))
	assert.Equal(t, 4, h.surfaces["c.mp4"].shown)
	assert.Len(t, h.surfaces["c.mp4"].polls, 4, "one key poll per frame")
	assert.True(t, h.surfaces["c.mp4"].closed)
}

func TestLabelVideo_EmptyVideo(t *testing.T) {
	h := newHarness(map[string]script{"empty.mp4": {frames: 0}})

	record, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "empty.mp4", Total: 1})
	require.NoError(t, err)
	assert.False(t, bool(record.SpaceBar))
	assert.True(t, h.surfaces["empty.mp4"].closed)
}

func TestLabelVideo_Abort(t *testing.T) {
	h := newHarness(map[string]script{"a.mp4": {frames: 10, keyAt: 2, key: KeyAbort}})

	_, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "a.mp4", Total: 1})
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, h.sources["a.mp4"].closed)
	assert.True(t, h.surfaces["a.mp4"].closed)
}

func TestLabelVideo_DecodeFailure(t *testing.T) {
	decodeErr := &video.DecodeError{Path: "broken.mp4", Err: errors.New("truncated frame")}
	h := newHarness(nil)
	h.labeler.OpenFrames = func(context.Context, string) (video.FrameSource, error) {
		return &fakeFrames{n: 2, endErr: decodeErr}, nil
	}
	h.labeler.OpenSurface = func(VideoInfo) (Surface, error) { return &fakeSurface{}, nil }

	_, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "broken.mp4", Total: 1})
	assert.ErrorIs(t, err, decodeErr)
}

func TestLabelVideo_OpenFailureOpensNoSurface(t *testing.T) {
	h := newHarness(map[string]script{})

	_, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "missing.mp4", Total: 1})
	assert.Error(t, err)
	assert.Empty(t, h.opened)
}

func TestLabelVideo_SurfaceFailureClosesFrames(t *testing.T) {
	src := &fakeFrames{n: 3}
	l := &Labeler{
		OpenFrames:  func(context.Context, string) (video.FrameSource, error) { return src, nil },
		OpenSurface: func(VideoInfo) (Surface, error) { return nil, errors.New("no terminal") },
	}

	_, err := l.LabelVideo(context.Background(), VideoInfo{Path: "a.mp4", Total: 1})
	assert.ErrorContains(t, err, "no terminal")
	assert.True(t, src.closed)
}

func TestLabelVideo_PollWait(t *testing.T) {
	tests := []struct {
		name     string
		poll     time.Duration
		realtime bool
		expected time.Duration
	}{
		{"Default", 0, false, DefaultPoll},
		{"Custom poll", 5 * time.Millisecond, false, 5 * time.Millisecond},
		{"Realtime uses frame interval", 0, true, 40 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(map[string]script{"a.mp4": {frames: 2}})
			h.labeler.Poll = tt.poll
			h.labeler.Realtime = tt.realtime

			_, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "a.mp4", Total: 1})
			require.NoError(t, err)
			assert.Equal(t, []time.Duration{tt.expected, tt.expected}, h.surfaces["a.mp4"].polls)
		})
	}
}

func TestLabelVideo_HashFirstFrame(t *testing.T) {
	h := newHarness(map[string]script{"a.mp4": {frames: 3, keyAt: 2, key: KeyMark}})
	h.labeler.HashFirstFrame = true

	record, err := h.labeler.LabelVideo(context.Background(), VideoInfo{Path: "a.mp4", Total: 1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record.PHash, "p:"), "expected perception hash, got %q", record.PHash)
}

func TestLabelAll_Scenario(t *testing.T) {
	h := newHarness(map[string]script{
		"videos/a.mp4": {frames: 20, keyAt: 5, key: KeyMark},
		"videos/b.mp4": {frames: 20, keyAt: 7, key: KeyQuit},
		"videos/c.mp4": {frames: 3},
	})

	var reported []labels.Record
	set, err := h.labeler.LabelAll(context.Background(),
		[]string{"videos/a.mp4", "videos/b.mp4", "videos/c.mp4"},
		func(r labels.Record) { reported = append(reported, r) })
	require.NoError(t, err)

	expected := labels.Set{
		{VideoPath: "videos/a.mp4", SpaceBar: true},
		{VideoPath: "videos/b.mp4", SpaceBar: false},
		{VideoPath: "videos/c.mp4", SpaceBar: false},
	}
	assert.Equal(t, expected, set)
	assert.Equal(t, []labels.Record(expected), reported)
	assert.Equal(t, []string{"videos/a.mp4", "videos/b.mp4", "videos/c.mp4"}, h.opened)
}

func TestLabelAll_AbortReturnsNoRecords(t *testing.T) {
	h := newHarness(map[string]script{
		"a.mp4": {frames: 5, keyAt: 1, key: KeyMark},
		"b.mp4": {frames: 5, keyAt: 1, key: KeyAbort},
		"c.mp4": {frames: 5},
	})

	set, err := h.labeler.LabelAll(context.Background(), []string{"a.mp4", "b.mp4", "c.mp4"}, nil)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Nil(t, set)
	assert.NotContains(t, h.opened, "c.mp4")
}

func TestLabelAll_CancelledContext(t *testing.T) {
	h := newHarness(map[string]script{"a.mp4": {frames: 1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.labeler.LabelAll(ctx, []string{"a.mp4"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.opened)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "mark", KeyMark.String())
	assert.Equal(t, "quit", KeyQuit.String())
	assert.Equal(t, "abort", KeyAbort.String())
	assert.Equal(t, "none", KeyNone.String())
}
