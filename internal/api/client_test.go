package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/mockapi"
	"github.com/harrylevesque/chirp/internal/session"
)

type fixture struct {
	backend *mockapi.Server
	srv     *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := mockapi.New()
	backend.AddUser("alice-key", "alice")
	backend.AddUser("bob-key", "bob")
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return &fixture{backend: backend, srv: srv}
}

func (f *fixture) client(key string) (*api.Client, *session.State) {
	st := session.New()
	st.SetAPIKey(key)
	return api.NewClient(api.NewDispatcher(f.srv.URL, st)), st
}

func TestClientMeAndUser(t *testing.T) {
	f := newFixture(t)
	c, st := f.client("alice-key")
	ctx := context.Background()

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), me.ID)
	assert.Equal(t, "alice", me.Name)
	assert.False(t, st.IsLoading())

	legacy, err := c.LegacyMe(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, me.ID, legacy.ID)

	_, err = c.User(ctx, 42)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestClientFollow(t *testing.T) {
	f := newFixture(t)
	c, _ := f.client("alice-key")
	ctx := context.Background()

	require.NoError(t, c.Follow(ctx, 2))
	bob, err := c.User(ctx, 2)
	require.NoError(t, err)
	assert.True(t, bob.IsFollowedBy(1))

	err = c.Follow(ctx, 2)
	assert.Equal(t, http.StatusMethodNotAllowed, api.StatusCode(err))

	require.NoError(t, c.Unfollow(ctx, 2))
	bob, err = c.User(ctx, 2)
	require.NoError(t, err)
	assert.False(t, bob.IsFollowedBy(1))
}

func TestClientTweets(t *testing.T) {
	f := newFixture(t)
	alice, st := f.client("alice-key")
	bob, _ := f.client("bob-key")
	ctx := context.Background()

	id, err := alice.PostTweet(ctx, api.NewTweet{Data: "hello #gophers"})
	require.NoError(t, err)
	_, err = alice.PostTweet(ctx, api.NewTweet{Data: "again #gophers"})
	require.NoError(t, err)

	tweets, err := bob.Tweets(ctx)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "alice", tweets[0].Author.Name)

	page, err := bob.TweetsPage(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)

	require.NoError(t, bob.Like(ctx, id))
	tweets, err = alice.UserTweets(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, tweets)
	var liked bool
	for _, tw := range tweets {
		if tw.ID == id {
			liked = tw.LikedBy(2)
		}
	}
	assert.True(t, liked)
	require.NoError(t, bob.Unlike(ctx, id))

	trends, err := bob.Trends(ctx)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, api.Trend{Name: "#gophers", TweetsCount: 2}, trends[0])

	edited, err := alice.EditTweet(ctx, api.TweetEdit{ID: id, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, id, edited.ID)

	err = bob.DeleteTweet(ctx, id)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))
	require.NoError(t, alice.DeleteTweet(ctx, id))
	assert.True(t, api.IsNotFound(alice.DeleteTweet(ctx, id)))

	assert.False(t, st.IsLoading())
}

func TestClientResultFalseIsAnError(t *testing.T) {
	f := newFixture(t)
	c, _ := f.client("alice-key")

	_, err := c.PostTweet(context.Background(), api.NewTweet{Data: strings.Repeat("x", 501)})
	require.Error(t, err)

	var re *api.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusOK, re.Status)
	assert.Equal(t, "DataError", re.ErrorType)
	assert.NotEmpty(t, re.ErrorMessage)
}

func TestClientMissingKey(t *testing.T) {
	f := newFixture(t)
	c, st := f.client("")

	_, err := c.Tweets(context.Background())
	require.Error(t, err)
	var re *api.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusForbidden, re.Status)
	assert.Equal(t, "API key missing", re.ErrorMessage)
	assert.False(t, st.IsLoading())
}

func TestClientUpdateProfile(t *testing.T) {
	f := newFixture(t)
	c, _ := f.client("alice-key")
	ctx := context.Background()

	out, err := c.UpdateProfile(ctx, api.ProfileUpdate{"name": "Alice", "bio": "gopher"})
	require.NoError(t, err)
	assert.Equal(t, "gopher", out.Profile["bio"])

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)
}

func TestClientUploadMedia(t *testing.T) {
	f := newFixture(t)
	c, _ := f.client("alice-key")
	ctx := context.Background()

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	mediaID, err := c.UploadMedia(ctx, "/tmp/anim.gif", bytes.NewReader(gif))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mediaID)

	id, err := c.PostTweet(ctx, api.NewTweet{Data: "look", MediaIDs: []int64{mediaID}})
	require.NoError(t, err)

	tweets, err := c.Tweets(ctx)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, id, tweets[0].ID)
	require.Len(t, tweets[0].Attachments, 1)

	resp, err := http.Get(tweets[0].Attachments[0])
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
}

func TestClientUploadMediaTooLarge(t *testing.T) {
	f := newFixture(t)
	c, _ := f.client("alice-key")

	big := bytes.NewReader(make([]byte, api.MaxMediaSize+1))
	_, err := c.UploadMedia(context.Background(), "big.bin", big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
