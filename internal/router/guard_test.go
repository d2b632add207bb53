package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/chirp/internal/session"
)

var (
	home    = Location{Name: NameHome, Path: "/"}
	login   = Location{Name: NameLogin, Path: "/login"}
	profile = func(id string) Location {
		return Location{Name: NameProfile, Path: "/profile/" + id, Params: map[string]string{ParamProfileID: id}}
	}
)

func loggedIn() *session.State {
	st := session.New()
	st.SetAPIKey("test")
	st.MarkLoggedIn(1)
	return st
}

func TestGuardLoggedOutRedirectsEverythingButLogin(t *testing.T) {
	g := NewGuard(session.New())
	froms := []*Location{nil, &home, &login, ptr(profile("3"))}

	for _, to := range []Location{home, profile("42"), profile("1")} {
		for _, from := range froms {
			d := g.Check(to, from)
			require.False(t, d.Allowed(), "to %s", to.Path)
			assert.Equal(t, NameLogin, d.Redirect.Name)
			assert.Equal(t, "/login", d.Redirect.Path)
		}
	}
}

func TestGuardLoggedOutAllowsLogin(t *testing.T) {
	g := NewGuard(session.New())
	for _, from := range []*Location{nil, &home, ptr(profile("3"))} {
		assert.True(t, g.Check(login, from).Allowed())
	}
}

func TestGuardLoggedInLoginRedirectsToOrigin(t *testing.T) {
	g := NewGuard(loggedIn())
	from := profile("7")

	d := g.Check(login, &from)
	require.False(t, d.Allowed())
	assert.Equal(t, NameProfile, d.Redirect.Name)
	assert.Equal(t, "7", d.Redirect.Param(ParamProfileID))
	assert.Equal(t, "/profile/7", d.Redirect.Path)
}

func TestGuardLoggedInLoginFallbacks(t *testing.T) {
	g := NewGuard(loggedIn())

	d := g.Check(login, nil)
	require.False(t, d.Allowed())
	assert.Equal(t, NameHome, d.Redirect.Name)

	rf := profile("9")
	fromLogin := Location{Name: NameLogin, Path: "/login", RedirectedFrom: &rf}
	d = g.Check(login, &fromLogin)
	require.False(t, d.Allowed())
	assert.Equal(t, "/profile/9", d.Redirect.Path)

	custom := NewGuard(loggedIn(), WithFallback(profile("1")))
	d = custom.Check(login, &Location{Name: NameLogin, Path: "/login"})
	require.False(t, d.Allowed())
	assert.Equal(t, "/profile/1", d.Redirect.Path)
}

func TestGuardHomeReturnsToBouncedProfile(t *testing.T) {
	g := NewGuard(loggedIn())
	rf := profile("P")
	from := Location{Name: NameLogin, Path: "/login", RedirectedFrom: &rf}

	d := g.Check(home, &from)
	require.False(t, d.Allowed())
	assert.Equal(t, NameProfile, d.Redirect.Name)
	assert.Equal(t, "P", d.Redirect.Param(ParamProfileID))
}

func TestGuardLoggedInAllowsOtherwise(t *testing.T) {
	g := NewGuard(loggedIn())
	homeRF := home
	fromHomeRedirect := Location{Name: NameLogin, Path: "/login", RedirectedFrom: &homeRF}

	assert.True(t, g.Check(home, nil).Allowed())
	assert.True(t, g.Check(home, &fromHomeRedirect).Allowed())
	assert.True(t, g.Check(profile("3"), &home).Allowed())
	assert.True(t, g.Check(profile("3"), nil).Allowed())
}

func TestGuardAlwaysClosesMobileMenu(t *testing.T) {
	cases := []struct {
		name  string
		state *session.State
		to    Location
		from  *Location
	}{
		{"logged out redirect", session.New(), home, nil},
		{"logged out allow", session.New(), login, nil},
		{"logged in login redirect", loggedIn(), login, &home},
		{"logged in allow", loggedIn(), profile("2"), &home},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.state.SetMobileMenu(true)
			NewGuard(tc.state).Check(tc.to, tc.from)
			assert.False(t, tc.state.MobileMenuOpen())
		})
	}
}

func ptr(l Location) *Location { return &l }
