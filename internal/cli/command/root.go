package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/cli/config"
	"github.com/yndnr/sessionkit-go/internal/cli/output"
	"github.com/yndnr/sessionkit-go/internal/client"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/core/service"
	"github.com/yndnr/sessionkit-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

const runtimeKey = "sessionkit.runtime"

// errNotLoggedIn is returned by commands that need a confirmed session.
var errNotLoggedIn = domain.ErrNotAuthenticated.WithDetails("run `sessionkit login` first")

// Option configures App.
type Option func(*appOptions)

type appOptions struct {
	clientOpts []client.Option
}

// WithClientOptions passes extra options to the client the app opens.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *appOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return newApp(o)
}

func newApp(o *appOptions) *cli.App {
	return &cli.App{
		Name:    "sessionkit",
		Usage:   "Sign in to the vault or marketplace API and work with your data",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			ProfileCommand(),
			PasswordCommand(),
			TodoCommand(),
			ProductCommand(),
			PaymentCommand(),
			ConfigCommand(),
			ShellCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		Before: func(c *cli.Context) error {
			return setup(c, o)
		},
		After: teardown,
		// Errors are returned to the caller; main and the shell decide
		// what to do with them.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags returns the global CLI flags. Each one overrides a config key.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.sessionkit/config.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "API base URL (server.base_url)",
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"P"},
			Usage:   "Product profile: vault or market (profile.kind)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Credential store: file, badger, redis or memory (store.backend)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
	}
}

// flagOverrides maps the global flags that were set to their config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"server":  "server.base_url",
		"profile": "profile.kind",
		"store":   "store.backend",
		"output":  "output",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// runtime is the state shared by the commands of one App run, or of a whole
// shell session.
type runtime struct {
	cfg     *config.CLIConfig
	cfgPath string
	log     logger.Logger
	out     *output.Printer
	stderr  io.Writer

	appOpts *appOptions
	client  *client.Client

	// depth counts nested App runs; the shell runs each line as one.
	depth int
	shell bool
}

func setup(c *cli.Context, o *appOptions) error {
	if rt := runtimeFrom(c); rt != nil {
		rt.depth++
		return nil
	}

	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	cfgPath := c.String("config")
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	c.App.Metadata[runtimeKey] = &runtime{
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     log,
		out:     output.NewPrinter(c.App.Writer, output.Format(cfg.Output)),
		stderr:  c.App.ErrWriter,
		appOpts: o,
		depth:   1,
	}
	return nil
}

func teardown(c *cli.Context) error {
	rt := runtimeFrom(c)
	if rt == nil {
		return nil
	}
	rt.depth--
	if rt.depth > 0 {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	if rt.client != nil {
		return rt.client.Close()
	}
	return nil
}

func runtimeFrom(c *cli.Context) *runtime {
	rt, _ := c.App.Metadata[runtimeKey].(*runtime)
	return rt
}

// sessionClient returns the client of this run, opening it on first use.
// The session is not initialised; commands that need the principal call Init.
func sessionClient(c *cli.Context) (*client.Client, *runtime, error) {
	rt := runtimeFrom(c)
	if rt == nil {
		return nil, nil, errors.New("cli runtime not initialised")
	}
	if rt.client != nil {
		return rt.client, rt, nil
	}

	opts := append([]client.Option{
		client.WithLogger(rt.log),
		client.WithNavigator(service.NavigatorFunc(rt.navigate)),
	}, rt.appOpts.clientOpts...)
	cl, err := client.New(c.Context, rt.cfg.ClientConfig(), opts...)
	if err != nil {
		return nil, nil, err
	}
	rt.client = cl
	return cl, rt, nil
}

func (rt *runtime) navigate(_ context.Context, route string) {
	fmt.Fprintf(rt.stderr, "Your session has expired. Sign in again with `sessionkit login` (%s).\n", route)
}

// historyPath keeps the shell history next to the config file.
func (rt *runtime) historyPath() string {
	return filepath.Join(filepath.Dir(rt.cfgPath), "history")
}

// Describe renders err for the terminal. Domain errors show their message and
// the server's explanation without the error code.
func Describe(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return de.Message + ": " + de.Details
		}
		return de.Message
	}
	return err.Error()
}

// readable is an error whose text is Describe(err).
type readable struct{ err error }

func (r readable) Error() string { return Describe(r.err) }
func (r readable) Unwrap() error { return r.err }

// PrintError prints err to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", Describe(err))
}

// interactive reports whether w is a terminal.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
