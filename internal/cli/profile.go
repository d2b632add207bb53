package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/api"
)

type profileUpdated struct {
	api.ProfileUpdated `yaml:",inline"`
}

func (p profileUpdated) Text(w io.Writer) error {
	if _, err := fmt.Fprintln(w, p.Message); err != nil {
		return err
	}
	keys := make([]string, 0, len(p.Profile))
	for k := range p.Profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", k, p.Profile[k]); err != nil {
			return err
		}
	}
	return nil
}

func newProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var fields map[string]string
	update := &cobra.Command{
		Use:     "update --set key=value...",
		Short:   "Update profile fields",
		Example: "  chirp profile update --set name=Alice --set bio='likes go'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			if len(fields) == 0 {
				return NewExitError(ExitCommandError, "nothing to update: pass --set key=value")
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			out, err := env.Client.UpdateProfile(ctx, api.ProfileUpdate(fields))
			if err != nil {
				return err
			}
			return env.Out.Render(profileUpdated{*out})
		},
	}
	update.Flags().StringToStringVar(&fields, "set", nil, "profile field to set (repeatable)")
	cmd.AddCommand(update)
	return cmd
}
