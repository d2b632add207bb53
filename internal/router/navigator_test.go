package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/chirp/internal/session"
)

func newNavigator(t *testing.T, st *session.State) *Navigator {
	t.Helper()
	table, err := NewTable(DefaultRoutes)
	require.NoError(t, err)
	return NewNavigator(table, NewGuard(st))
}

func TestTableResolve(t *testing.T) {
	table := MustTable(DefaultRoutes)

	loc, err := table.Resolve("/profile/42?tab=likes")
	require.NoError(t, err)
	assert.Equal(t, NameProfile, loc.Name)
	assert.Equal(t, "42", loc.Param(ParamProfileID))
	assert.Equal(t, "likes", loc.Query.Get("tab"))
	assert.Equal(t, "/profile/42?tab=likes", loc.String())

	loc, err = table.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, NameHome, loc.Name)

	loc, err = table.Resolve("/login/")
	require.NoError(t, err)
	assert.Equal(t, NameLogin, loc.Name)

	_, err = table.Resolve("/explore")
	assert.ErrorIs(t, err, ErrNoRoute)

	_, err = table.Resolve("/profile/abc")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestTableRoute(t *testing.T) {
	table := MustTable(DefaultRoutes)

	r, ok := table.Route(NameProfile)
	require.True(t, ok)
	assert.True(t, r.RequiresAuth)
	assert.Equal(t, "/profile/{profileId:[0-9]+}", r.Path)

	_, ok = table.Route("Bookmarks")
	assert.False(t, ok)
}

func TestTableBuild(t *testing.T) {
	table := MustTable(DefaultRoutes)

	loc, err := table.Build(NameProfile, map[string]string{ParamProfileID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "/profile/7", loc.Path)

	_, err = table.Build(NameProfile, map[string]string{ParamProfileID: "abc"})
	assert.Error(t, err)

	_, err = table.Build("Bookmarks", nil)
	assert.ErrorIs(t, err, ErrNoRoute)

	_, err = NewTable([]Route{{Path: "/", Name: NameHome}, {Path: "/x", Name: NameHome}})
	assert.Error(t, err)
}

func TestNavigatorLoggedOutProfileGoesToLogin(t *testing.T) {
	nav := newNavigator(t, session.New())

	loc, err := nav.Push("/profile/42")
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	require.NotNil(t, loc.RedirectedFrom)
	assert.Equal(t, "/profile/42", loc.RedirectedFrom.Path)
	assert.Equal(t, "/login", nav.Current().Path)
}

func TestNavigatorLoginReturnsToBouncedProfile(t *testing.T) {
	st := session.New()
	nav := newNavigator(t, st)

	_, err := nav.Push("/profile/42")
	require.NoError(t, err)

	st.SetAPIKey("test")
	st.MarkLoggedIn(1)

	loc, err := nav.Push("/")
	require.NoError(t, err)
	assert.Equal(t, NameProfile, loc.Name)
	assert.Equal(t, "42", loc.Param(ParamProfileID))
	require.NotNil(t, loc.RedirectedFrom)
	assert.Equal(t, NameHome, loc.RedirectedFrom.Name)

	// Once on the profile, Home is reachable again.
	loc, err = nav.Push("/")
	require.NoError(t, err)
	assert.Equal(t, NameHome, loc.Name)
}

func TestNavigatorLoggedInLoginGoesBack(t *testing.T) {
	st := loggedIn()
	nav := newNavigator(t, st)

	_, err := nav.PushNamed(NameProfile, map[string]string{ParamProfileID: "7"})
	require.NoError(t, err)

	loc, err := nav.Push("/login")
	require.NoError(t, err)
	assert.Equal(t, "/profile/7", loc.Path)
	require.NotNil(t, loc.RedirectedFrom)
	assert.Equal(t, NameLogin, loc.RedirectedFrom.Name)
}

func TestNavigatorRestore(t *testing.T) {
	st := session.New()
	nav := newNavigator(t, st)
	require.Nil(t, nav.Current())

	require.NoError(t, nav.Restore("/login", "/profile/5"))
	st.MarkLoggedIn(2)

	loc, err := nav.Push("/")
	require.NoError(t, err)
	assert.Equal(t, "/profile/5", loc.Path)

	assert.ErrorIs(t, nav.Restore("/nowhere", ""), ErrNoRoute)
}

func TestNavigatorRedirectToMissingRoute(t *testing.T) {
	table := MustTable([]Route{{Path: "/", Name: NameHome}})
	nav := NewNavigator(table, NewGuard(session.New()))

	_, err := nav.Push("/")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestNavigatorRedirectLoop(t *testing.T) {
	table := MustTable(DefaultRoutes)
	nav := NewNavigator(table, NewGuard(loggedIn(), WithFallback(login)))

	_, err := nav.Push("/login")
	assert.ErrorIs(t, err, ErrRedirectLoop)
	assert.Nil(t, nav.Current())
}
