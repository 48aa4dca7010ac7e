package main

import (
	"github.com/pescuma/hgblame/lib/server"
)

type ServeCmd struct {
	Port uint `default:"2724" help:"Port to listen to."`
}

func (c *ServeCmd) Run(ctx *context) error {
	return ctx.ws.StartServer(&server.Options{
		Port: c.Port,
	})
}
