package router

import (
	"github.com/rs/zerolog"

	"github.com/harrylevesque/chirp/internal/session"
)

// Decision is the outcome of a guard check. A nil Redirect allows the
// navigation.
type Decision struct {
	Redirect *Location
}

// Allowed reports whether the navigation may proceed unchanged.
func (d Decision) Allowed() bool {
	return d.Redirect == nil
}

func allow() Decision {
	return Decision{}
}

func redirect(loc Location) Decision {
	return Decision{Redirect: &loc}
}

// Guard decides whether a route transition may proceed.
type Guard struct {
	state    *session.State
	fallback Location
	log      zerolog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithFallback sets where a logged in user is sent when they ask for the
// login screen and no origin is known. Defaults to Home.
func WithFallback(loc Location) GuardOption {
	return func(g *Guard) { g.fallback = loc }
}

// WithGuardLogger sets the logger used for redirect decisions.
func WithGuardLogger(l zerolog.Logger) GuardOption {
	return func(g *Guard) { g.log = l }
}

// NewGuard returns a guard reading login status from state.
func NewGuard(state *session.State, opts ...GuardOption) *Guard {
	g := &Guard{
		state:    state,
		fallback: Location{Name: NameHome, Path: "/"},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check runs for every transition from "from" (nil on the first navigation)
// to "to". It always closes the mobile menu.
func (g *Guard) Check(to Location, from *Location) Decision {
	g.state.SetMobileMenu(false)

	d := g.decide(to, from)
	if !d.Allowed() {
		g.log.Debug().
			Str("to", to.String()).
			Str("redirect", d.Redirect.String()).
			Msg("navigation redirected")
	}
	return d
}

func (g *Guard) decide(to Location, from *Location) Decision {
	if !g.state.IsLoggedIn() {
		if to.Name != NameLogin {
			return redirect(Location{Name: NameLogin, Path: "/login"})
		}
		return allow()
	}

	if to.Name == NameLogin {
		return redirect(g.origin(from))
	}

	if to.Name == NameHome && from != nil {
		if rf := from.RedirectedFrom; rf != nil && rf.Name == NameProfile && rf.Param(ParamProfileID) != "" {
			return redirect(Location{
				Name:   NameProfile,
				Path:   "/profile/" + rf.Param(ParamProfileID),
				Params: map[string]string{ParamProfileID: rf.Param(ParamProfileID)},
			})
		}
	}
	return allow()
}

// origin picks where a logged in user asking for login goes instead.
func (g *Guard) origin(from *Location) Location {
	if from != nil && from.Name != "" && from.Name != NameLogin {
		loc := from.clone()
		loc.RedirectedFrom = nil
		return loc
	}
	if from != nil && from.RedirectedFrom != nil && from.RedirectedFrom.Name != NameLogin {
		loc := from.RedirectedFrom.clone()
		loc.RedirectedFrom = nil
		return loc
	}
	return g.fallback.clone()
}
