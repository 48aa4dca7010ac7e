package main

import (
	"github.com/alecthomas/kong"

	"github.com/pescuma/hgblame/lib/workspace"
)

var cli struct {
	Workspace string `short:"w" help:"Workspace to store data. Default is ./.hgblame or ~/.hgblame if that does not exist." type:"path"`

	Blame BlameCmd `cmd:"" help:"Blame all files inside mercurial repositories."`
	Show  ShowCmd  `cmd:"" help:"Show the blame of a file already blamed."`
	Serve ServeCmd `cmd:"" help:"Start a server to query the blame data."`

	Config struct {
		Set   ConfigSetCmd   `cmd:"" help:"Set configuration parameters."`
		Get   ConfigGetCmd   `cmd:"" help:"Show configuration parameters."`
		Unset ConfigUnsetCmd `cmd:"" help:"Remove configuration parameters."`
	} `cmd:""`

	Run RunHgCmd `cmd:"" help:"Run a mercurial command in all blamed repositories."`
}

type context struct {
	ws *workspace.Workspace
}

func main() {
	ctx := kong.Parse(&cli, kong.ShortUsageOnError())

	ws, err := workspace.NewWorkspace(cli.Workspace)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&context{
		ws: ws,
	})

	_ = ws.Close()

	ctx.FatalIfErrorf(err)
}

func toOption[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
