package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/sessionkit-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration as YAML, secrets masked",
				Action: configShow,
			},
			{
				Name:  "path",
				Usage: "Print the config file location",
				Action: func(c *cli.Context) error {
					rt := runtimeFrom(c)
					_, err := fmt.Fprintln(c.App.Writer, rt.cfgPath)
					return err
				},
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt := runtimeFrom(c)
	data, err := yaml.Marshal(config.Sanitize(rt.cfg))
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func configInit(c *cli.Context) error {
	rt := runtimeFrom(c)
	if !c.Bool("force") {
		_, err := os.Stat(rt.cfgPath)
		if err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", rt.cfgPath)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := config.Save(rt.cfg, rt.cfgPath); err != nil {
		return err
	}
	return rt.out.Message("Wrote %s", rt.cfgPath)
}
