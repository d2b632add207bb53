package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/router"
	"github.com/harrylevesque/chirp/internal/session"
)

// done is the result of commands that only change state.
type done struct {
	Result  bool   `json:"result" yaml:"result"`
	Message string `json:"message" yaml:"message"`
}

func (d done) Text(w io.Writer) error {
	_, err := fmt.Fprintln(w, d.Message)
	return err
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <api-key>",
		Short: "Log in with an API key",
		Long: `Log in with an API key and open the home screen.

If an earlier "open" was sent to the login screen from a profile, login
continues to that profile instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			ctx, cancel := env.Context(cmd)
			defer cancel()
			view, err := env.App.Login(ctx, args[0])
			if err != nil {
				if code := api.StatusCode(err); code == 401 || code == 403 {
					return WrapExitError(ExitAuth, "login rejected", err)
				}
				return err
			}
			return env.Out.Render(view)
		},
	}
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.env.App.Logout()
			if err != nil {
				return err
			}
			return opts.env.Out.Render(view)
		},
	}
}

// whoami is the whoami command's output.
type whoami struct {
	Session session.Snapshot `json:"session" yaml:"session"`
	User    *api.User        `json:"user,omitempty" yaml:"user,omitempty"`
}

func (w whoami) Text(out io.Writer) error {
	if w.User == nil {
		_, err := fmt.Fprintln(out, "not logged in")
		return err
	}
	_, err := fmt.Fprintf(out, "logged in as %s (#%d)\n", w.User.Name, w.User.ID)
	return err
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			if !env.State.IsLoggedIn() {
				return env.Out.Render(whoami{Session: env.State.Snapshot()})
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			me, err := env.Client.Me(ctx)
			if err != nil {
				return err
			}
			return env.Out.Render(whoami{Session: env.State.Snapshot(), User: me})
		},
	}
}

func newOpenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a client path such as / or /profile/7",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			ctx, cancel := env.Context(cmd)
			defer cancel()
			view, err := env.App.Open(ctx, args[0])
			if err != nil {
				return err
			}
			return env.Out.Render(view)
		},
	}
}

type routeList []router.Route

func (rl routeList) Text(w io.Writer) error {
	for _, r := range rl {
		auth := ""
		if r.RequiresAuth {
			auth = "login required"
		}
		if _, err := fmt.Fprintf(w, "%-8s %-24s %s\n", r.Name, r.Path, auth); err != nil {
			return err
		}
	}
	return nil
}

func newRoutesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes [name]",
		Short: "List the client routes, or show one by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return opts.env.Out.Render(routeList(opts.env.App.Routes()))
			}
			r, ok := opts.env.App.Route(args[0])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown route %q", args[0]))
			}
			return opts.env.Out.Render(routeList{r})
		},
	}
}
