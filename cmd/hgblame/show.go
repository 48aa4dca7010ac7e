package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/pescuma/hgblame/lib/model"
)

type ShowCmd struct {
	File   string `arg:"" help:"File to show." type:"path"`
	Author string `help:"Only show lines from authors matching this glob."`
	Simple bool   `short:"s" help:"Only show the author of each line."`
}

func (c *ShowCmd) Run(ctx *context) error {
	blame, err := ctx.ws.LoadFileBlame(c.File)
	if err != nil {
		return err
	}

	if blame.Failed() {
		return errors.Errorf("no blame data available for %v: %v", blame.Request.Path, blame.Diagnostic())
	}

	var filter glob.Glob
	if c.Author != "" {
		filter, err = glob.Compile(strings.ToLower(c.Author))
		if err != nil {
			return errors.Wrapf(err, "invalid author filter: %v", c.Author)
		}
	}

	width := len(fmt.Sprint(len(blame.Lines)))

	for i, l := range blame.Lines {
		if filter != nil && !filter.Match(strings.ToLower(l.Author)) {
			continue
		}

		if c.Simple {
			fmt.Printf("%*d %v\n", width, i+1, l.Author)
		} else {
			fmt.Printf("%*d %v %-16v %v\n", width, i+1, l.Revision, formatDate(l), l.Author)
		}
	}

	return nil
}

func formatDate(l model.BlameLine) string {
	if !l.HasDate() {
		return "?"
	}
	return humanize.Time(*l.Date)
}
