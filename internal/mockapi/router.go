// Package mockapi is an in-memory implementation of the social network
// backend, for local development and tests.
package mockapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server serves the backend HTTP API from memory.
type Server struct {
	store  *store
	router *mux.Router
	log    zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns an empty backend.
func New(opts ...Option) *Server {
	s := &Server{store: newStore(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser registers a user for key and returns its id.
func (s *Server) AddUser(key, name string) int64 {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if id, ok := s.store.byKey[key]; ok {
		return id
	}
	return s.store.addUser(key, name).ID
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"result": true})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/images/{name}", s.getImage).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAPIKey)

	api.HandleFunc("/api/users/me", s.getMe).Methods(http.MethodGet)
	api.HandleFunc("/api/users/{id:[0-9]+}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/api/users/{id:[0-9]+}/follow", s.follow).Methods(http.MethodPost)
	api.HandleFunc("/api/users/{id:[0-9]+}/follow", s.unfollow).Methods(http.MethodDelete)

	api.HandleFunc("/api/tweets", s.listTweets).Methods(http.MethodGet)
	api.HandleFunc("/api/tweets", s.createTweet).Methods(http.MethodPost)
	api.HandleFunc("/api/tweets/{id:[0-9]+}", s.deleteTweet).Methods(http.MethodDelete)
	api.HandleFunc("/api/tweets/{id:[0-9]+}/likes", s.like).Methods(http.MethodPost)
	api.HandleFunc("/api/tweets/{id:[0-9]+}/likes", s.unlike).Methods(http.MethodDelete)

	api.HandleFunc("/api/medias", s.uploadMedia).Methods(http.MethodPost)

	// Older endpoints still used by parts of the client.
	api.HandleFunc("/trends", s.trends).Methods(http.MethodGet)
	api.HandleFunc("/me", s.legacyMe).Methods(http.MethodPost)
	api.HandleFunc("/me", s.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/tweets", s.editTweet).Methods(http.MethodPatch)
	api.HandleFunc("/tweets/{id:[0-9]+}", s.userTweets).Methods(http.MethodGet)

	return r
}
