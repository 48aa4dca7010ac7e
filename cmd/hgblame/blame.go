package main

import (
	gocontext "context"
	"os"
	"os/signal"
	"time"

	"github.com/pescuma/hgblame/lib/importers/hg"
)

type BlameCmd struct {
	Paths      []string      `arg:"" help:"Paths to recursively search for mercurial repositories." type:"existingpath"`
	Include    []string      `help:"Only blame files matching these globs (relative to the repository root)."`
	Exclude    []string      `help:"Don't blame files matching these globs (relative to the repository root)."`
	Hgignore   bool          `default:"true" negatable:"" help:"Respect .hgignore file when listing files."`
	SkipVendor bool          `default:"true" negatable:"" help:"Don't blame vendored files."`
	MaxFiles   int           `help:"Max number of files to blame."`
	Executable string        `help:"Mercurial executable. Default comes from config hg.executable or 'hg'."`
	Timeout    time.Duration `help:"Max time to blame one file. Default comes from config hg.timeout or 1m."`
	Workers    int           `help:"Number of files blamed in parallel. Default comes from config blame.workers."`
}

func (c *BlameCmd) Run(ctx *context) error {
	sctx, stop := signal.NotifyContext(gocontext.Background(), os.Interrupt)
	defer stop()

	summary, err := ctx.ws.Blame(sctx, c.Paths, &hg.ImportOptions{
		BlameOptions: hg.BlameOptions{
			Executable: c.Executable,
			Timeout:    c.Timeout,
			Workers:    c.Workers,
		},
		FileFilterOptions: hg.FileFilterOptions{
			Include:         c.Include,
			Exclude:         c.Exclude,
			RespectHgignore: c.Hgignore,
			SkipVendor:      c.SkipVendor,
		},
		MaxFiles: toOption(c.MaxFiles),
	})
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		ctx.ws.Console().Warnf("%v files could not be blamed. Use 'show' to see why.\n", summary.Failed)
	}

	return nil
}
