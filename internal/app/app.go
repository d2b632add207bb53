// Package app runs the client's screens without a UI: it navigates through
// the guarded route table and loads the data each screen shows.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/router"
	"github.com/harrylevesque/chirp/internal/session"
)

// ErrNotLoggedIn is returned by actions that need a session.
var ErrNotLoggedIn = errors.New("app: not logged in")

const defaultPageSize = 20

// App ties the session, the navigator and the backend client together.
type App struct {
	state    *session.State
	client   *api.Client
	table    *router.Table
	nav      *router.Navigator
	store    *session.FileStore
	pageSize int
	log      zerolog.Logger
}

// Option configures an App.
type Option func(*App)

// WithStore persists the session and location in fs.
func WithStore(fs *session.FileStore) Option {
	return func(a *App) { a.store = fs }
}

// WithPageSize sets how many feed entries the Home screen loads.
func WithPageSize(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.log = l }
}

// New returns an App using the client's session state and the default
// route table.
func New(client *api.Client, opts ...Option) *App {
	a := &App{
		state:    client.Dispatcher().State(),
		client:   client,
		table:    router.MustTable(router.DefaultRoutes),
		pageSize: defaultPageSize,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	guard := router.NewGuard(a.state, router.WithGuardLogger(a.log))
	a.nav = router.NewNavigator(a.table, guard)
	return a
}

func (a *App) State() *session.State { return a.state }

func (a *App) Client() *api.Client { return a.client }

func (a *App) Navigator() *router.Navigator { return a.nav }

// Routes lists the client route table.
func (a *App) Routes() []router.Route { return a.table.Routes() }

// Route looks up one route by name.
func (a *App) Route(name string) (router.Route, bool) { return a.table.Route(name) }

// Resume loads the persisted session and restores the last location.
func (a *App) Resume() error {
	if a.store == nil {
		return nil
	}
	rec, err := a.store.Load(a.state)
	if err != nil {
		return err
	}
	if rec.Location == "" {
		return nil
	}
	if err := a.nav.Restore(rec.Location, rec.RedirectedFrom); err != nil {
		a.log.Warn().Err(err).Str("location", rec.Location).Msg("discarding saved location")
	}
	return nil
}

// Login checks apiKey against the backend, marks the session logged in and
// opens Home, which the guard may turn into the profile that was requested
// before login. A rejected key leaves an existing session as it was.
func (a *App) Login(ctx context.Context, apiKey string) (View, error) {
	if apiKey == "" {
		return View{}, errors.New("app: empty api key")
	}
	prevKey, wasLoggedIn := a.state.APIKey(), a.state.IsLoggedIn()
	a.state.SetAPIKey(apiKey)
	me, err := a.client.Me(ctx)
	if err != nil {
		if wasLoggedIn {
			a.state.SetAPIKey(prevKey)
		} else {
			a.state.LogOut()
		}
		return View{}, fmt.Errorf("login: %w", err)
	}
	a.state.MarkLoggedIn(me.ID)
	a.log.Info().Int64("user_id", me.ID).Msg("logged in")

	loc, err := a.nav.PushNamed(router.NameHome, nil)
	if err != nil {
		return View{}, err
	}
	if err := a.persist(); err != nil {
		return View{}, err
	}
	v, err := a.load(ctx, loc)
	if err != nil {
		return View{Location: loc, Screen: screenOf(loc)}, fmt.Errorf("logged in, but loading %s failed: %w", loc.String(), err)
	}
	return v, nil
}

// Logout forgets the session and shows the login screen.
func (a *App) Logout() (View, error) {
	a.state.LogOut()
	if a.store != nil {
		if err := a.store.Clear(); err != nil {
			return View{}, fmt.Errorf("logout: %w", err)
		}
	}
	loc, err := a.nav.PushNamed(router.NameLogin, nil)
	if err != nil {
		return View{}, err
	}
	return View{Location: loc, Screen: ScreenLogin}, nil
}

// Open navigates to a client path and loads the screen the guard lets the
// user see.
func (a *App) Open(ctx context.Context, path string) (View, error) {
	loc, err := a.nav.Push(path)
	if err != nil {
		return View{}, err
	}
	if err := a.persist(); err != nil {
		return View{}, err
	}
	return a.load(ctx, loc)
}

// Compose uploads each media file and posts a tweet referencing them.
func (a *App) Compose(ctx context.Context, text string, mediaPaths []string) (int64, error) {
	if !a.state.IsLoggedIn() {
		return 0, ErrNotLoggedIn
	}
	ids := make([]int64, 0, len(mediaPaths))
	for _, p := range mediaPaths {
		id, err := a.upload(ctx, p)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	return a.client.PostTweet(ctx, api.NewTweet{Data: text, MediaIDs: ids})
}

func (a *App) upload(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("compose: %w", err)
	}
	defer f.Close()
	return a.client.UploadMedia(ctx, path, f)
}

func (a *App) persist() error {
	if a.store == nil {
		return nil
	}
	var location, redirectedFrom string
	if cur := a.nav.Current(); cur != nil {
		location = cur.String()
		if cur.RedirectedFrom != nil {
			redirectedFrom = cur.RedirectedFrom.String()
		}
	}
	if err := a.store.Save(a.state, location, redirectedFrom); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (a *App) load(ctx context.Context, loc router.Location) (View, error) {
	switch loc.Name {
	case router.NameHome:
		return a.loadHome(ctx, loc)
	case router.NameProfile:
		return a.loadProfile(ctx, loc)
	}
	return View{Location: loc, Screen: ScreenLogin}, nil
}

func (a *App) loadHome(ctx context.Context, loc router.Location) (View, error) {
	offset, err := queryInt(loc, "offset", 0)
	if err != nil {
		return View{}, err
	}
	limit, err := queryInt(loc, "limit", a.pageSize)
	if err != nil {
		return View{}, err
	}
	tweets, err := a.client.TweetsPage(ctx, offset, limit)
	if err != nil {
		return View{}, err
	}
	return View{Location: loc, Screen: ScreenHome, Tweets: tweets, Offset: offset, Limit: limit}, nil
}

func (a *App) loadProfile(ctx context.Context, loc router.Location) (View, error) {
	id, err := strconv.ParseInt(loc.Param(router.ParamProfileID), 10, 64)
	if err != nil {
		return View{}, fmt.Errorf("app: invalid profile id %q", loc.Param(router.ParamProfileID))
	}
	user, err := a.client.User(ctx, id)
	if err != nil {
		return View{}, err
	}
	feed, err := a.client.Tweets(ctx)
	if err != nil {
		return View{}, err
	}
	var own []api.Tweet
	for _, t := range feed {
		if t.Author.ID == id {
			own = append(own, t)
		}
	}
	v := View{Location: loc, Screen: ScreenProfile, User: user, Tweets: own}
	if me, ok := a.state.MyProfileID(); ok {
		v.Own = me == id
		v.Following = user.IsFollowedBy(me)
	}
	return v, nil
}

func screenOf(loc router.Location) string {
	switch loc.Name {
	case router.NameHome:
		return ScreenHome
	case router.NameProfile:
		return ScreenProfile
	}
	return ScreenLogin
}

func queryInt(loc router.Location, key string, def int) (int, error) {
	raw := loc.Query.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("app: invalid %s %q", key, raw)
	}
	return n, nil
}
