package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/api"
)

type posted struct {
	Result  bool  `json:"result" yaml:"result"`
	TweetID int64 `json:"tweet_id" yaml:"tweet_id"`
}

func (p posted) Text(w io.Writer) error {
	_, err := fmt.Fprintf(w, "posted tweet %d\n", p.TweetID)
	return err
}

func newTweetCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweet",
		Short: "Post and manage tweets",
	}
	cmd.AddCommand(newTweetPostCommand(opts))
	cmd.AddCommand(newTweetActionCommand(opts, "delete", "Delete one of your tweets", "deleted tweet %d",
		func(ctx context.Context, c *api.Client, id int64) error { return c.DeleteTweet(ctx, id) }))
	cmd.AddCommand(newTweetActionCommand(opts, "like", "Like a tweet", "liked tweet %d",
		func(ctx context.Context, c *api.Client, id int64) error { return c.Like(ctx, id) }))
	cmd.AddCommand(newTweetActionCommand(opts, "unlike", "Remove your like from a tweet", "unliked tweet %d",
		func(ctx context.Context, c *api.Client, id int64) error { return c.Unlike(ctx, id) }))
	cmd.AddCommand(newTweetEditCommand(opts))
	cmd.AddCommand(newTweetListCommand(opts))
	return cmd
}

func newTweetPostCommand(opts *RootOptions) *cobra.Command {
	var media []string
	cmd := &cobra.Command{
		Use:   "post <text>...",
		Short: "Post a tweet, optionally with media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			id, err := env.App.Compose(ctx, strings.Join(args, " "), media)
			if err != nil {
				return err
			}
			return env.Out.Render(posted{Result: true, TweetID: id})
		},
	}
	cmd.Flags().StringSliceVarP(&media, "media", "m", nil, "media file to attach (repeatable)")
	return cmd
}

// newTweetActionCommand builds a command taking a single tweet id.
func newTweetActionCommand(opts *RootOptions, name, short, msg string, action func(context.Context, *api.Client, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <tweet-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := parseID("tweet", args[0])
			if err != nil {
				return err
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			if err := action(ctx, env.Client, id); err != nil {
				return err
			}
			return env.Out.Render(done{Result: true, Message: fmt.Sprintf(msg, id)})
		},
	}
}

func newTweetEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <tweet-id> <text>...",
		Short: "Replace the text of one of your tweets",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			id, err := parseID("tweet", args[0])
			if err != nil {
				return err
			}
			if _, err := env.RequireLogin(); err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			out, err := env.Client.EditTweet(ctx, api.TweetEdit{ID: id, Content: strings.Join(args[1:], " ")})
			if err != nil {
				return err
			}
			return env.Out.Render(done{Result: true, Message: fmt.Sprintf("edited tweet %d", out.ID)})
		},
	}
}

func newTweetListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [user-id]",
		Short: "List a user's tweets (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.env
			me, err := env.RequireLogin()
			if err != nil {
				return err
			}
			id := me
			if len(args) == 1 {
				if id, err = parseID("user", args[0]); err != nil {
					return err
				}
			}
			ctx, cancel := env.Context(cmd)
			defer cancel()
			tweets, err := env.Client.UserTweets(ctx, id)
			if err != nil {
				return err
			}
			return env.Out.Render(tweets)
		},
	}
}
