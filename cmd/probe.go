package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/lepinkainen/videolabeler/types"
	"github.com/lepinkainen/videolabeler/ui"
	"github.com/lepinkainen/videolabeler/utils"
	"github.com/lepinkainen/videolabeler/video"
)

// ProbeCmd decodes every video a label run would pick up, so broken files are
// found before anyone sits through a labeling session
type ProbeCmd struct {
	VideoDir string   `arg:"" name:"video_dir" help:"Directory containing the videos to check" type:"path"`
	Ext      []string `name:"ext" help:"Video file extensions to pick up" default:"${extensions}"`
}

type probeResult struct {
	Path string
	Err  error
}

// Run decodes each video and reports codec, resolution and duration of the healthy ones
func (cmd *ProbeCmd) Run(appCtx *types.AppContext) error {
	log := appCtx.Log()

	exts, err := video.NormalizeExtensions(cmd.Ext)
	if err != nil {
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
	fmt.Printf("%s\n", ui.InfoStyle.Render(fmt.Sprintf("Probing %d videos...", len(videoPaths))))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bar := progressbar.NewOptions(len(videoPaths),
		progressbar.OptionSetDescription("decoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]probeResult, 0, len(videoPaths))
	for _, path := range videoPaths {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := video.ValidateVideoIntegrity(ctx, path)
		if err != nil {
			log.Warn("video failed to decode", zap.String("video_path", path), zap.Error(err))
		}
		results = append(results, probeResult{Path: path, Err: err})
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			fmt.Printf("%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %s: %v", result.Path, result.Err)))
			failed++
			continue
		}
		fmt.Printf("%s %s\n", ui.SuccessStyle.Render("✅"), describeVideo(result.Path))
	}

	fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("✅ Decoded: %d, ❌ Failed: %d", len(results)-failed, failed)))

	if failed > 0 {
		return fmt.Errorf("%d of %d videos failed to decode", failed, len(results))
	}
	return nil
}

// describeVideo formats the basic stream facts of a video, leaving out what ffprobe cannot tell
func describeVideo(path string) string {
	desc := path

	if codec, err := video.GetVideoCodec(path); err == nil {
		desc += " " + codec
	}
	if resolution, err := video.GetVideoResolution(path); err == nil {
		desc += " " + resolution
	}
	if mins, err := video.GetVideoDuration(path); err == nil {
		desc += fmt.Sprintf(" %.1fmin", mins)
	}
	if size, err := video.GetFileSize(path); err == nil {
		desc += fmt.Sprintf(" %.1f MB", float64(size)/(1024*1024))
	}

	return desc
}
