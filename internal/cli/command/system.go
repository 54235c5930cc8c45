package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/cli/repl"
	"github.com/yndnr/sessionkit-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return runtimeFrom(c).out.Print(buildinfo.Get())
		},
	}
}

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive mode sharing one session between commands",
		Description: "Global flags given to shell apply to every line. Type `help` for\n" +
			"commands, a prefix followed by ? to list matches, exit to leave.",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	rt := runtimeFrom(c)
	if rt.shell {
		return errors.New("already in the shell")
	}
	if _, _, err := sessionClient(c); err != nil {
		return err
	}
	rt.shell = true
	defer func() { rt.shell = false }()

	app := c.App
	history := repl.NewHistory(rt.historyPath(), repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		rt.log.Warn("shell history not loaded", "error", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			rt.log.Warn("shell history not saved", "error", err)
		}
	}()

	r := repl.New(
		func(ctx context.Context, args []string) error {
			line := newApp(rt.appOpts)
			line.Metadata = app.Metadata
			line.Reader, line.Writer, line.ErrWriter = app.Reader, app.Writer, app.ErrWriter
			if err := line.RunContext(ctx, append([]string{app.Name}, args...)); err != nil {
				return readable{err}
			}
			return nil
		},
		repl.WithIO(app.Reader, app.Writer),
		repl.WithPrompt("sessionkit("+rt.cfg.Profile.Kind+")> "),
		repl.WithCompleter(repl.NewCompleter(commandPaths(app.Commands))),
		repl.WithHistory(history),
	)
	return r.Run(c.Context)
}

// commandPaths lists commands and subcommands as "parent child".
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		paths = append(paths, cmd.Name)
		for _, sub := range commandPaths(cmd.Subcommands) {
			paths = append(paths, cmd.Name+" "+sub)
		}
	}
	return paths
}
