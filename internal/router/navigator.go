package router

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRedirectLoop is returned when guard redirects do not settle.
var ErrRedirectLoop = errors.New("router: too many redirects")

const defaultMaxRedirects = 5

// Navigator tracks the current location and sends every transition
// through the guard.
type Navigator struct {
	mu           sync.Mutex
	table        *Table
	guard        *Guard
	current      *Location
	maxRedirects int
}

// NewNavigator returns a navigator with no current location.
func NewNavigator(table *Table, guard *Guard) *Navigator {
	return &Navigator{table: table, guard: guard, maxRedirects: defaultMaxRedirects}
}

// Current returns a copy of the current location, or nil before the first
// navigation.
func (n *Navigator) Current() *Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	loc := n.current.clone()
	return &loc
}

// Restore sets the current location without running the guard, for a
// location persisted by an earlier process. redirectedFrom may be "".
func (n *Navigator) Restore(path, redirectedFrom string) error {
	loc, err := n.table.Resolve(path)
	if err != nil {
		return err
	}
	if redirectedFrom != "" {
		rf, err := n.table.Resolve(redirectedFrom)
		if err != nil {
			return err
		}
		loc.RedirectedFrom = &rf
	}
	n.mu.Lock()
	n.current = &loc
	n.mu.Unlock()
	return nil
}

// Push navigates to a client path.
func (n *Navigator) Push(path string) (Location, error) {
	to, err := n.table.Resolve(path)
	if err != nil {
		return Location{}, err
	}
	return n.navigate(to)
}

// PushNamed navigates to a named route.
func (n *Navigator) PushNamed(name string, params map[string]string) (Location, error) {
	to, err := n.table.Build(name, params)
	if err != nil {
		return Location{}, err
	}
	return n.navigate(to)
}

func (n *Navigator) navigate(to Location) (Location, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var from *Location
	if n.current != nil {
		c := n.current.clone()
		from = &c
	}

	requested := to.clone()
	requested.RedirectedFrom = nil
	for hops := 0; ; hops++ {
		d := n.guard.Check(to, from)
		if d.Allowed() {
			n.current = &to
			return to.clone(), nil
		}
		if hops >= n.maxRedirects {
			return Location{}, fmt.Errorf("%w: last target %s", ErrRedirectLoop, d.Redirect.String())
		}
		next, err := n.complete(*d.Redirect)
		if err != nil {
			return Location{}, err
		}
		rf := requested.clone()
		next.RedirectedFrom = &rf
		to = next
	}
}

// complete fills in a redirect target given by name or by path.
func (n *Navigator) complete(loc Location) (Location, error) {
	if loc.Name != "" {
		built, err := n.table.Build(loc.Name, loc.Params)
		if err != nil {
			return Location{}, err
		}
		built.Query = loc.Query
		return built, nil
	}
	return n.table.Resolve(loc.String())
}
