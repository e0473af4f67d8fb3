package ui

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videolabeler/labeler"
)

// DisplayOptions configures where a Display reads keys and draws
type DisplayOptions struct {
	Input    io.Reader // defaults to the terminal
	Output   io.Writer // defaults to stdout
	Renderer *FrameRenderer
}

// Display is a full-screen player surface for a single video. It owns a
// bubbletea program running on the alternate screen until Close.
type Display struct {
	program *tea.Program
	keys    chan labeler.Key
	done    chan struct{}
	err     error

	closeOnce sync.Once
}

// OpenDisplay starts the player for info
func OpenDisplay(info labeler.VideoInfo, opts DisplayOptions) (*Display, error) {
	keys := make(chan labeler.Key, 8)
	model := NewPlayerModel(info, keys, opts.Renderer)

	// signals are left to the caller's context
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	d := &Display{
		program: tea.NewProgram(model, progOpts...),
		keys:    keys,
		done:    make(chan struct{}),
	}

	go func() {
		_, err := d.program.Run()
		d.err = err
		close(d.done)
	}()

	return d, nil
}

// Opener adapts OpenDisplay to labeler.Labeler.OpenSurface
func Opener(opts DisplayOptions) func(labeler.VideoInfo) (labeler.Surface, error) {
	return func(info labeler.VideoInfo) (labeler.Surface, error) {
		return OpenDisplay(info, opts)
	}
}

// Show sends a frame to the player
func (d *Display) Show(frame image.Image) error {
	select {
	case <-d.done:
		return d.stoppedErr()
	default:
	}

	d.program.Send(FrameMsg{Frame: frame})
	return nil
}

// PollKey waits up to wait for a key press
func (d *Display) PollKey(wait time.Duration) labeler.Key {
	select {
	case key := <-d.keys:
		return key
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case key := <-d.keys:
		return key
	case <-d.done:
		return labeler.KeyNone
	case <-timer.C:
		return labeler.KeyNone
	}
}

// Close quits the player and restores the terminal
func (d *Display) Close() error {
	d.closeOnce.Do(func() {
		d.program.Quit()
		<-d.done
	})

	if d.err != nil && !errors.Is(d.err, tea.ErrProgramKilled) {
		return fmt.Errorf("display: %w", d.err)
	}
	return nil
}

func (d *Display) stoppedErr() error {
	if d.err != nil {
		return fmt.Errorf("display stopped: %w", d.err)
	}
	return errors.New("display stopped")
}
