package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newFeedCommand(opts *RootOptions) *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the home feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			if limit <= 0 {
				limit = env.Config.PageSize
			}
			q := url.Values{}
			q.Set("offset", strconv.Itoa(offset))
			q.Set("limit", strconv.Itoa(limit))

			ctx, cancel := env.Context(cmd)
			defer cancel()
			view, err := env.App.Open(ctx, "/?"+q.Encode())
			if err != nil {
				return err
			}
			return env.Out.Render(view)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many tweets")
	cmd.Flags().IntVar(&limit, "limit", 0, "tweets to show (default page_size)")
	return cmd
}

func newTrendsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show trending hashtags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			trends, err := env.Client.Trends(ctx)
			if err != nil {
				return err
			}
			return env.Out.Render(trends)
		},
	}
}
