// Package cli implements the chirp command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/config"
)

// RootOptions holds state shared by all commands. env is built before any
// subcommand runs and released by Execute.
type RootOptions struct {
	env *Env
}

// NewRootCommand creates the root command for the chirp CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chirp",
		Short: "chirp - terminal client for the chirp social network",
		Long: `A terminal client for the chirp social network.

The session (API key, profile and last location) is kept between runs in a
sealed file under the chirp home directory (~/.chirp or $CHIRP_HOME).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "configuration", err)
			}
			env, err := NewEnv(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.env = env
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("server", "", "backend base URL")
	flags.String("format", "", fmt.Sprintf("output format %v", config.Formats))
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-file", "", "write JSON logs to this file instead of stderr")
	flags.String("session-file", "", "sealed session file")
	flags.String("key-file", "", "master key file")
	flags.Duration("timeout", 0, "per-command timeout")
	flags.String("ca-dir", "", "directory of extra CA certificates")
	flags.Int("page-size", 0, "feed entries per page")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newOpenCommand(opts))
	cmd.AddCommand(newRoutesCommand(opts))
	cmd.AddCommand(newFeedCommand(opts))
	cmd.AddCommand(newTrendsCommand(opts))
	cmd.AddCommand(newUserCommand(opts))
	cmd.AddCommand(newTweetCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))
	cmd.AddCommand(newMeCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

func (o *RootOptions) close() error {
	if o.env == nil {
		return nil
	}
	err := o.env.Close()
	o.env = nil
	return err
}

// Execute runs the root command and reports a failure on stderr in the
// chosen format. It returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	return execute(&RootOptions{}, args, stdout, stderr)
}

// execute releases opts.env whether or not the command failed; cobra skips
// post-run hooks after a RunE error.
func execute(opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if cerr := opts.close(); err == nil {
		err = cerr
	}
	if err != nil {
		PrintError(stderr, formatOf(cmd), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// formatOf reads --format without a loaded config, for error output.
func formatOf(cmd *cobra.Command) string {
	if f := cmd.PersistentFlags().Lookup("format"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return "text"
}
