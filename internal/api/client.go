package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Client wraps the backend endpoints. Every method goes through the
// Dispatcher.
type Client struct {
	d *Dispatcher
}

func NewClient(d *Dispatcher) *Client {
	return &Client{d: d}
}

// Dispatcher returns the underlying dispatcher.
func (c *Client) Dispatcher() *Dispatcher {
	return c.d
}

// Me fetches the user owning the session's API key.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var env userEnvelope
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: "/api/users/me"}, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// User fetches a profile by id.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var env userEnvelope
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: userPath(id)}, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

func (c *Client) Follow(ctx context.Context, id int64) error {
	return c.call(ctx, Call{Method: http.MethodPost, Path: userPath(id) + "/follow"}, nil)
}

func (c *Client) Unfollow(ctx context.Context, id int64) error {
	return c.call(ctx, Call{Method: http.MethodDelete, Path: userPath(id) + "/follow"}, nil)
}

// Tweets lists the whole feed.
func (c *Client) Tweets(ctx context.Context) ([]Tweet, error) {
	var env tweetsEnvelope
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: "/api/tweets"}, &env); err != nil {
		return nil, err
	}
	return env.Tweets, nil
}

// TweetsPage lists one page of the feed.
func (c *Client) TweetsPage(ctx context.Context, offset, limit int) ([]Tweet, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var env tweetsEnvelope
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: "/api/tweets?" + q.Encode()}, &env); err != nil {
		return nil, err
	}
	return env.Tweets, nil
}

func (c *Client) Trends(ctx context.Context) ([]Trend, error) {
	var env trendsEnvelope
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: "/trends"}, &env); err != nil {
		return nil, err
	}
	return env.Trends, nil
}

// LegacyMe confirms the caller's own profile through the old POST /me
// endpoint, which replies with a bare user object.
func (c *Client) LegacyMe(ctx context.Context, id int64) (*User, error) {
	var u User
	body := map[string]int64{"id": id}
	if err := c.call(ctx, Call{Method: http.MethodPost, Path: "/me", Body: body}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PostTweet creates a tweet and returns its id.
func (c *Client) PostTweet(ctx context.Context, t NewTweet) (int64, error) {
	if t.MediaIDs == nil {
		t.MediaIDs = []int64{}
	}
	var env addTweetEnvelope
	if err := c.call(ctx, Call{Method: http.MethodPost, Path: "/api/tweets", Body: t}, &env); err != nil {
		return 0, err
	}
	return env.TweetID, nil
}

func (c *Client) DeleteTweet(ctx context.Context, id int64) error {
	return c.call(ctx, Call{Method: http.MethodDelete, Path: tweetPath(id)}, nil)
}

// EditTweet replaces a tweet's content.
func (c *Client) EditTweet(ctx context.Context, e TweetEdit) (*TweetEdited, error) {
	var out TweetEdited
	if err := c.call(ctx, Call{Method: http.MethodPatch, Path: "/tweets", Body: e}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserTweets lists the tweets authored by a user.
func (c *Client) UserTweets(ctx context.Context, userID int64) ([]Tweet, error) {
	var env tweetsEnvelope
	path := fmt.Sprintf("/tweets/%d", userID)
	if err := c.call(ctx, Call{Method: http.MethodGet, Path: path}, &env); err != nil {
		return nil, err
	}
	return env.Tweets, nil
}

// UpdateProfile sets fields of the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, fields ProfileUpdate) (*ProfileUpdated, error) {
	var out ProfileUpdated
	if err := c.call(ctx, Call{Method: http.MethodPut, Path: "/me", Body: fields}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Like(ctx context.Context, tweetID int64) error {
	return c.call(ctx, Call{Method: http.MethodPost, Path: tweetPath(tweetID) + "/likes"}, nil)
}

func (c *Client) Unlike(ctx context.Context, tweetID int64) error {
	return c.call(ctx, Call{Method: http.MethodDelete, Path: tweetPath(tweetID) + "/likes"}, nil)
}

// call dispatches and decodes into out (nil skips decoding). A 2xx reply
// whose envelope says "result": false is turned into a *RequestError.
func (c *Client) call(ctx context.Context, call Call, out any) error {
	resp, err := c.d.Do(ctx, call)
	if err != nil {
		return err
	}
	if env, ok := parseEnvelope(resp.Body); ok && env.Result != nil && !*env.Result {
		return &RequestError{
			Method:       call.Method,
			Path:         call.Path,
			Status:       resp.Status,
			Body:         resp.Body,
			ErrorType:    env.ErrorType,
			ErrorMessage: env.ErrorMessage,
			Message:      "backend reported failure",
		}
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", call.Method, call.Path, err)
	}
	return nil
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

func tweetPath(id int64) string {
	return "/api/tweets/" + strconv.FormatInt(id, 10)
}
