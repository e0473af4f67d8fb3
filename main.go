package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lepinkainen/videolabeler/cmd"
	"github.com/lepinkainen/videolabeler/config"
	"github.com/lepinkainen/videolabeler/types"
	"github.com/lepinkainen/videolabeler/ui"
	"github.com/lepinkainen/videolabeler/utils"
)

var Version = "dev"

type CLI struct {
	Label   cmd.LabelCmd   `cmd:"" default:"withargs" help:"Play the videos in a directory and label each with a key press"`
	Probe   cmd.ProbeCmd   `cmd:"" help:"Check that every video in a directory decodes"`
	Summary cmd.SummaryCmd `cmd:"" help:"Summarize a labels file"`

	Version kong.VersionFlag `help:"Print version and exit"`
}

// kongVars merges the environment defaults with the build version
func kongVars(cfg *config.Config) kong.Vars {
	vars := kong.Vars{"version": Version}
	for k, v := range cfg.Vars() {
		vars[k] = v
	}
	return vars
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("videolabeler"),
		kong.Description("Play videos one at a time and label each with a key press: space marks, q skips."),
		kong.UsageOnError(),
		kongVars(cfg),
	)

	log, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	ctx.FatalIfErrorf(err)
	log = log.With(zap.String("run_id", uuid.NewString()))

	err = ctx.Run(&types.AppContext{
		Version: Version,
		Config:  cfg,
		Logger:  log,
	})
	_ = log.Sync()
	ctx.FatalIfErrorf(err)
}
