package main

type RunHgCmd struct {
	Args []string `arg:"" passthrough:"" help:"Arguments to pass to mercurial."`
}

func (c *RunHgCmd) Run(ctx *context) error {
	return ctx.ws.RunHg(c.Args...)
}
