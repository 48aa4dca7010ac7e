package main

import (
	"fmt"

	"github.com/pescuma/hgblame/lib/workspace"
)

type ConfigSetCmd struct {
	Config string `arg:"" help:"Configuration name to change."`
	Value  string `arg:"" help:"Configuration value to set."`
}

func (c *ConfigSetCmd) Run(ctx *context) error {
	changed, err := ctx.ws.SetConfigParameter(c.Config, c.Value)
	if err != nil {
		return err
	}

	if changed {
		fmt.Printf("Set '%v' = '%v'\n", c.Config, c.Value)
	} else {
		fmt.Printf("'%v' was already '%v'\n", c.Config, c.Value)
	}

	return nil
}

type ConfigGetCmd struct {
	Config string `arg:"" optional:"" help:"Configuration name to show. Shows all if empty."`
}

func (c *ConfigGetCmd) Run(ctx *context) error {
	cfg, err := ctx.ws.LoadConfig()
	if err != nil {
		return err
	}

	keys := workspace.ConfigKeys()
	if c.Config != "" {
		keys = []string{c.Config}
	}

	for _, k := range keys {
		if v, ok := cfg.Get(k); ok {
			fmt.Printf("%v = %v\n", k, v)
		} else {
			fmt.Printf("%v is not set\n", k)
		}
	}

	return nil
}

type ConfigUnsetCmd struct {
	Config string `arg:"" help:"Configuration name to remove."`
}

func (c *ConfigUnsetCmd) Run(ctx *context) error {
	changed, err := ctx.ws.UnsetConfigParameter(c.Config)
	if err != nil {
		return err
	}

	if changed {
		fmt.Printf("Removed '%v'\n", c.Config)
	}

	return nil
}
