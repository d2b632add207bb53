package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s id %q", kind, raw))
	}
	return id, nil
}

func newUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up and follow users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			u, err := env.Client.User(ctx, id)
			if err != nil {
				return err
			}
			return env.Out.Render(u)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			if err := env.Client.Follow(ctx, id); err != nil {
				return err
			}
			return env.Out.Render(done{Result: true, Message: fmt.Sprintf("following user %d", id)})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unfollow <user-id>",
		Short: "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			if err := env.Client.Unfollow(ctx, id); err != nil {
				return err
			}
			return env.Out.Render(done{Result: true, Message: fmt.Sprintf("unfollowed user %d", id)})
		},
	})

	return cmd
}

func newMeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Fetch your profile through the legacy /me endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := env.RequireLogin()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			u, err := env.Client.LegacyMe(ctx, id)
			if err != nil {
				return err
			}
			return env.Out.Render(u)
		},
	}
}
