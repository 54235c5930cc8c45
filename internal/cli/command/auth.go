package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/cli/output"
	"github.com/yndnr/sessionkit-go/internal/client"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/core/service"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
		},
		Action: loginAction,
	}
}

func loginAction(c *cli.Context) error {
	cl, rt, err := sessionClient(c)
	if err != nil {
		return err
	}

	email, password := c.String("email"), c.String("password")
	if email == "" || password == "" {
		if rt.shell {
			return domain.ErrMissingArgument.WithDetails("--email and --password are required in the shell")
		}
		in := bufio.NewReader(c.App.Reader)
		if email == "" {
			if email, err = prompt(in, rt.stderr, "Email: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt(in, rt.stderr, "Password: "); err != nil {
				return err
			}
		}
	}

	var spinner *output.Spinner
	if interactive(rt.stderr) {
		spinner = output.NewSpinner(rt.stderr, "Signing in")
		spinner.Start()
	}
	err = cl.Session.Login(c.Context, email, password)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	p := cl.Session.Session().Principal
	return rt.out.Message("Logged in as %s", p.DisplayName)
}

func prompt(in *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", domain.ErrMissingArgument.WithDetails(strings.TrimSuffix(label, ": ") + " is required")
	}
	return strings.TrimSpace(line), nil
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Description: "Registration never signs in; run login afterwards. Profile fields the\n" +
			"server expects are passed with --field, e.g. --field matricNumber=123.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Usage: "Password"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (username, or agent name for market)"},
			&cli.StringSliceFlag{Name: "field", Aliases: []string{"f"}, Usage: "Extra profile field as KEY=VALUE (repeatable)"},
		},
		Action: registerAction,
	}
}

func registerAction(c *cli.Context) error {
	cl, rt, err := sessionClient(c)
	if err != nil {
		return err
	}

	form, err := registrationForm(rt.cfg.Profile.Kind, c.String("name"), c.StringSlice("field"))
	if err != nil {
		return err
	}
	form["email"] = c.String("email")
	form["password"] = c.String("password")

	if err := cl.Session.Register(c.Context, form); err != nil {
		return err
	}
	return rt.out.Message("Registration successful. Sign in with `sessionkit login`.")
}

// registrationForm builds the profile fields of a registration.
func registrationForm(profile, name string, fields []string) (service.RegistrationForm, error) {
	form := service.RegistrationForm{}
	if name != "" {
		if profile == auth.ProfileMarket {
			form[domain.AttrAgentName] = name
			form[domain.AttrFullName] = name
		} else {
			form[domain.AttrUsername] = name
		}
	}
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("--field %q: want KEY=VALUE", f))
		}
		form[strings.TrimSpace(key)] = value
	}
	return form, nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Sign out and forget the stored session",
		Action: func(c *cli.Context) error {
			cl, rt, err := sessionClient(c)
			if err != nil {
				return err
			}
			cl.Session.Logout(c.Context)
			return rt.out.Message("Logged out")
		},
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in account",
		Action: func(c *cli.Context) error {
			cl, rt, err := sessionClient(c)
			if err != nil {
				return err
			}
			if !cl.Session.Session().Authenticated() {
				if err := cl.Init(c.Context); err != nil {
					return err
				}
			}
			return printIdentity(cl, rt)
		},
	}
}

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Work with the account profile",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch the profile again, e.g. after a payment",
				Action: func(c *cli.Context) error {
					cl, rt, err := sessionClient(c)
					if err != nil {
						return err
					}
					if err := cl.Session.RefreshProfile(c.Context); err != nil {
						return err
					}
					return printIdentity(cl, rt)
				},
			},
		},
	}
}

func printIdentity(cl *client.Client, rt *runtime) error {
	s := cl.Session.Session()
	if !s.Authenticated() {
		return errNotLoggedIn
	}
	view := identity{
		ID:         s.Principal.ID,
		Name:       s.Principal.DisplayName,
		Email:      s.Principal.Email,
		Verified:   s.Principal.Verified,
		Profile:    rt.cfg.Profile.Kind,
		Attributes: s.Principal.Attributes,
	}
	if tok, err := cl.TokenSource().Token(); err == nil && !tok.Expiry.IsZero() {
		view.TokenExpires = &tok.Expiry
	}
	return rt.out.Print(view)
}

// identity is the whoami view of the principal.
type identity struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Verified     bool              `json:"verified"`
	Profile      string            `json:"profile"`
	TokenExpires *time.Time        `json:"token_expires,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Table implements output.Tabular.
func (v identity) Table() *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("id", v.ID)
	t.AddRow("name", v.Name)
	t.AddRow("email", v.Email)
	t.AddRow("verified", fmt.Sprint(v.Verified))
	t.AddRow("profile", v.Profile)
	if v.TokenExpires != nil {
		t.AddRow("token expires", v.TokenExpires.Local().Format(time.RFC3339))
	}
	keys := make([]string, 0, len(v.Attributes))
	for k := range v.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.AddRow(k, v.Attributes[k])
	}
	return t
}
