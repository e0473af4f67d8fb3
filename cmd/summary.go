package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videolabeler/labels"
	"github.com/lepinkainen/videolabeler/types"
	"github.com/lepinkainen/videolabeler/ui"
)

// SummaryCmd reports the label counts of a labels file. Records carrying a
// perceptual hash are also compared pairwise to spot near-identical videos.
type SummaryCmd struct {
	LabelsFile string `arg:"" name:"labels_file" help:"Labels file to summarize" type:"existingfile"`
	Threshold  int    `help:"Hamming distance threshold for similar first frames (0-64)" default:"10"`
	NoTUI      bool   `name:"no-tui" help:"Disable interactive TUI and just print the summary"`
}

// Run loads the labels file and prints or browses it
func (cmd *SummaryCmd) Run(appCtx *types.AppContext) error {
	if cmd.Threshold < 0 || cmd.Threshold > 64 {
		return fmt.Errorf("--threshold must be between 0 and 64, got %d", cmd.Threshold)
	}

	set, err := labels.Load(cmd.LabelsFile)
	if err != nil {
		return err
	}

	pairs := labels.FindSimilar(set, cmd.Threshold)

	if !cmd.NoTUI {
		p := tea.NewProgram(ui.NewSummaryModel(set, pairs), tea.WithAltScreen())
		_, err = p.Run()
		return err
	}

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Video Labeler %s", appCtx.VersionOrDefault())))
	summary := labels.Summarize(set)
	fmt.Printf("%s\n", ui.InfoStyle.Render(ui.SummaryLine(summary)))

	for _, r := range set {
		printRecord(r)
	}

	if summary.Hashed == 0 {
		return nil
	}

	if len(pairs) == 0 {
		fmt.Printf("\n%s\n", ui.SuccessStyle.Render("✅ No similar videos found within threshold"))
		return nil
	}

	fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Similar first frames (threshold: %d):", cmd.Threshold)))
	for _, p := range pairs {
		line := fmt.Sprintf("🎯 distance %d: %s ↔ %s", p.Distance, filepath.Base(p.A.VideoPath), filepath.Base(p.B.VideoPath))
		if p.Conflicting() {
			line = ui.ErrorStyle.Render(line + " (labeled differently)")
		}
		fmt.Println(line)
	}

	return nil
}
