package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// Route names and parameters of the client.
const (
	NameHome    = "Home"
	NameLogin   = "Login"
	NameProfile = "Profile"

	ParamProfileID = "profileId"
)

// ErrNoRoute is returned when a path or name matches no route.
var ErrNoRoute = errors.New("router: no route")

// Route describes one client screen.
type Route struct {
	Path         string `json:"path" yaml:"path"`
	Name         string `json:"name" yaml:"name"`
	RequiresAuth bool   `json:"requires_auth" yaml:"requires_auth"`
}

// DefaultRoutes is the client's route table.
var DefaultRoutes = []Route{
	{Path: "/", Name: NameHome, RequiresAuth: true},
	{Path: "/login", Name: NameLogin},
	{Path: "/profile/{" + ParamProfileID + ":[0-9]+}", Name: NameProfile, RequiresAuth: true},
}

// Location is a resolved route plus the parameters it was reached with.
type Location struct {
	Name   string            `json:"name" yaml:"name"`
	Path   string            `json:"path" yaml:"path"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Query  url.Values        `json:"query,omitempty" yaml:"query,omitempty"`
	// RedirectedFrom is the location originally requested when this one was
	// reached through a guard redirect.
	RedirectedFrom *Location `json:"redirected_from,omitempty" yaml:"redirected_from,omitempty"`
}

// Param returns the named route parameter, or "".
func (l Location) Param(key string) string {
	return l.Params[key]
}

// String returns the path with its query string.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

func (l Location) clone() Location {
	out := l
	if l.Params != nil {
		out.Params = make(map[string]string, len(l.Params))
		for k, v := range l.Params {
			out.Params[k] = v
		}
	}
	if l.RedirectedFrom != nil {
		rf := l.RedirectedFrom.clone()
		out.RedirectedFrom = &rf
	}
	return out
}

// Table matches paths against a fixed list of routes.
type Table struct {
	routes []Route
	mux    *mux.Router
}

// NewTable registers routes. Route names must be unique.
func NewTable(routes []Route) (*Table, error) {
	m := mux.NewRouter()
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		if r.Name == "" || seen[r.Name] {
			return nil, fmt.Errorf("router: invalid or duplicate route name %q", r.Name)
		}
		seen[r.Name] = true
		route := m.NewRoute().Path(r.Path).Name(r.Name)
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("router: route %s: %w", r.Name, err)
		}
	}
	return &Table{routes: append([]Route(nil), routes...), mux: m}, nil
}

// MustTable is NewTable for static tables.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the registered routes.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Route returns the descriptor registered under name.
func (t *Table) Route(name string) (Route, bool) {
	for _, r := range t.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve matches a client path such as "/profile/7?tab=likes".
func (t *Table) Resolve(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("router: parse %q: %w", raw, err)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	p = path.Clean("/" + p)
	u.Path = p

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("router: %q: %w", raw, err)
	}
	var match mux.RouteMatch
	if !t.mux.Match(req, &match) || match.Route == nil {
		return Location{}, fmt.Errorf("%w for %s", ErrNoRoute, p)
	}
	loc := Location{Name: match.Route.GetName(), Path: p}
	if len(match.Vars) > 0 {
		loc.Params = match.Vars
	}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
	}
	return loc, nil
}

// Build reverse-routes a named route with params.
func (t *Table) Build(name string, params map[string]string) (Location, error) {
	route := t.mux.Get(name)
	if route == nil {
		return Location{}, fmt.Errorf("%w named %s", ErrNoRoute, name)
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(params)*2)
	for _, k := range keys {
		pairs = append(pairs, k, params[k])
	}
	u, err := route.URL(pairs...)
	if err != nil {
		return Location{}, fmt.Errorf("router: build %s: %w", name, err)
	}
	loc := Location{Name: name, Path: u.Path}
	if len(params) > 0 {
		loc.Params = make(map[string]string, len(params))
		for k, v := range params {
			loc.Params[k] = v
		}
	}
	return loc, nil
}
