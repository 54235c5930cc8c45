package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/api"
	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/cli/output"
	"github.com/yndnr/sessionkit-go/internal/client"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/core/vault"
)

// PasswordCommand returns the password subcommand group.
func PasswordCommand() *cli.Command {
	return &cli.Command{
		Name:    "password",
		Aliases: []string{"pw"},
		Usage:   "Manage stored passwords (vault)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored passwords",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "show", Usage: "Print passwords in clear text"},
				},
				Action: passwordList,
			},
			{
				Name:  "add",
				Usage: "Store a password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "app", Aliases: []string{"a"}, Required: true, Usage: "Application name"},
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account name at the application"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Usage: "Password to store"},
				},
				Action: passwordAdd,
			},
			{
				Name:   "audit",
				Usage:  "Score the strength of the stored passwords",
				Action: passwordAudit,
			},
		},
	}
}

func passwordList(c *cli.Context) error {
	cl, rt, err := vaultClient(c)
	if err != nil {
		return err
	}
	passwords, err := cl.Vault.ListPasswords(c.Context)
	if err != nil {
		return err
	}

	rows := make(passwordRows, len(passwords))
	for i, p := range passwords {
		rows[i] = passwordRow{
			AppName:  p.AppName,
			Username: p.Username,
			Password: p.Password,
			Strength: vault.Rate(p.Password).Level,
		}
		if !c.Bool("show") {
			rows[i].Password = maskPassword(p.Password)
		}
	}
	return rt.out.Print(rows)
}

func passwordAdd(c *cli.Context) error {
	cl, rt, err := vaultClient(c)
	if err != nil {
		return err
	}
	err = cl.Vault.AddPassword(c.Context, api.Password{
		AppName:  c.String("app"),
		Username: c.String("username"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	return rt.out.Message("Password saved for %s", c.String("app"))
}

func passwordAudit(c *cli.Context) error {
	cl, rt, err := vaultClient(c)
	if err != nil {
		return err
	}
	report, err := cl.Vault.Audit(c.Context)
	if err != nil {
		return err
	}
	return rt.out.Print(report)
}

type passwordRow struct {
	AppName  string `json:"appName"`
	Username string `json:"username"`
	Password string `json:"password"`
	Strength string `json:"strength"`
}

type passwordRows []passwordRow

// Table implements output.Tabular.
func (r passwordRows) Table() *output.Table {
	t := &output.Table{Headers: []string{"APP", "USERNAME", "PASSWORD", "STRENGTH"}}
	for _, p := range r {
		t.AddRow(p.AppName, dash(p.Username), p.Password, p.Strength)
	}
	return t
}

func maskPassword(p string) string {
	if p == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}

// TodoCommand returns the todo subcommand group.
func TodoCommand() *cli.Command {
	return &cli.Command{
		Name:  "todo",
		Usage: "Manage todos (vault)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List todos",
				Action: func(c *cli.Context) error {
					cl, rt, err := vaultClient(c)
					if err != nil {
						return err
					}
					todos, err := cl.Vault.ListTodos(c.Context)
					if err != nil {
						return err
					}
					return rt.out.Print(todoRows(todos))
				},
			},
			{
				Name:  "add",
				Usage: "Create a todo",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
				},
				Action: func(c *cli.Context) error {
					cl, rt, err := vaultClient(c)
					if err != nil {
						return err
					}
					msg, err := cl.Vault.AddTodo(c.Context, c.String("title"), c.String("description"))
					if err != nil {
						return err
					}
					if msg == "" {
						msg = "Todo created"
					}
					return rt.out.Message("%s", msg)
				},
			},
		},
	}
}

type todoRows []api.Todo

// Table implements output.Tabular.
func (r todoRows) Table() *output.Table {
	t := &output.Table{Headers: []string{"TITLE", "DESCRIPTION", "CREATED"}}
	for _, todo := range r {
		t.AddRow(todo.Title, dash(todo.Description), dash(todo.CreatedAt))
	}
	return t
}

// vaultClient opens the client and checks that the profile has vault routes.
func vaultClient(c *cli.Context) (*client.Client, *runtime, error) {
	return profileClient(c, auth.ProfileVault)
}

func profileClient(c *cli.Context, want string) (*client.Client, *runtime, error) {
	cl, rt, err := sessionClient(c)
	if err != nil {
		return nil, nil, err
	}
	if rt.cfg.Profile.Kind != want {
		return nil, nil, domain.ErrInvalidArgument.WithDetails(
			"`" + c.Command.FullName() + "` needs --profile " + want)
	}
	return cl, rt, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
