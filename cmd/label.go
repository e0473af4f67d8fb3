package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lepinkainen/videolabeler/labeler"
	"github.com/lepinkainen/videolabeler/labels"
	"github.com/lepinkainen/videolabeler/types"
	"github.com/lepinkainen/videolabeler/ui"
	"github.com/lepinkainen/videolabeler/utils"
	"github.com/lepinkainen/videolabeler/video"
)

// LabelCmd plays every video in a directory and writes one label per video.
// Space marks the current video true, q moves on without marking.
type LabelCmd struct {
	VideoDir    string   `arg:"" name:"video_dir" help:"Directory containing the videos to label" type:"path"`
	Ext         []string `name:"ext" help:"Video file extensions to pick up" default:"${extensions}"`
	DecodeWidth int      `name:"decode-width" help:"Maximum width of decoded frames (0 keeps native size)" default:"${decode_width}"`
	Realtime    bool     `help:"Wait one frame interval for keys so playback follows the video's frame rate (default polls 1ms per frame)"`
	Phash       bool     `help:"Store a perceptual hash of each video's first frame"`
	LabelsFile  string   `name:"labels-file" help:"Name of the labels file written inside video_dir" default:"${labels_file}"`
}

// Run checks the preconditions, plays the videos and saves the labels once at the end
func (cmd *LabelCmd) Run(appCtx *types.AppContext) error {
	log := appCtx.Log()

	if cmd.DecodeWidth < 0 {
		return fmt.Errorf("--decode-width must not be negative, got %d", cmd.DecodeWidth)
	}

	exts, err := video.NormalizeExtensions(cmd.Ext)
	if err != nil {
		return err
	}

	saveFile := filepath.Join(cmd.VideoDir, cmd.LabelsFile)
	if err := labels.EnsureAbsent(saveFile); err != nil {
		return err
	}

	videoPaths, err := video.FindVideoFiles(cmd.VideoDir, exts)
	if err != nil {
		return err
	}

	if err := utils.ValidateFFmpegDependencies(); err != nil {
		return err
	}

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Video Labeler %s", appCtx.VersionOrDefault())))
	fmt.Println(ui.ProcessingStyle.Render(fmt.Sprintf("Labeling %d videos:", len(videoPaths))))

	log.Debug("starting labeling run",
		zap.String("video_dir", cmd.VideoDir),
		zap.Strings("extensions", exts),
		zap.Int("videos", len(videoPaths)),
		zap.Bool("realtime", cmd.Realtime),
	)

	l := cmd.newLabeler(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := l.LabelAll(ctx, videoPaths, printRecord)
	if err != nil {
		if aborted(err) {
			fmt.Printf("%s\n", ui.ErrorStyle.Render("❌ Labeling aborted, nothing was saved"))
		}
		return err
	}

	fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Saving %d labels to %s", len(set), saveFile)))
	if err := labels.Save(saveFile, set); err != nil {
		return fmt.Errorf("failed to save labels: %w", err)
	}

	fmt.Printf("%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ %s", ui.SummaryLine(labels.Summarize(set)))))
	return nil
}

func (cmd *LabelCmd) newLabeler(log *zap.Logger) *labeler.Labeler {
	frameOpts := video.FrameOptions{DecodeWidth: cmd.DecodeWidth}

	return &labeler.Labeler{
		OpenFrames: func(ctx context.Context, path string) (video.FrameSource, error) {
			r, err := video.OpenFrames(ctx, path, frameOpts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		OpenSurface:    ui.Opener(ui.DisplayOptions{Renderer: ui.NewFrameRenderer()}),
		Realtime:       cmd.Realtime,
		HashFirstFrame: cmd.Phash,
		Logger:         log,
	}
}

// aborted reports whether err ended the run on user request rather than a failure
func aborted(err error) bool {
	return errors.Is(err, labeler.ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, tea.ErrInterrupted)
}

// printRecord reports a finished video once its display is gone
func printRecord(r labels.Record) {
	if r.SpaceBar {
		fmt.Printf("%s %s\n", ui.MarkedStyle.Render("✓ true "), r.VideoPath)
		return
	}
	fmt.Printf("%s %s\n", ui.InfoStyle.Render("· false"), r.VideoPath)
}
