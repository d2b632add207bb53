package session

import "sync"

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	LoggedIn       bool   `json:"logged_in" yaml:"logged_in"`
	APIKey         string `json:"-" yaml:"-"`
	ProfileID      int64  `json:"profile_id,omitempty" yaml:"profile_id,omitempty"`
	Loading        bool   `json:"loading" yaml:"loading"`
	InFlight       int    `json:"in_flight" yaml:"in_flight"`
	MobileMenuOpen bool   `json:"mobile_menu_open" yaml:"mobile_menu_open"`
}

// State holds the login, loading and UI status shared by the navigation
// guard and the request dispatcher. A zero State is logged out.
type State struct {
	mu             sync.RWMutex
	loggedIn       bool
	apiKey         string
	profileID      int64
	inFlight       int
	mobileMenuOpen bool
}

// New returns an unauthenticated State.
func New() *State {
	return &State{}
}

// SetAPIKey sets the key sent with every request. It does not mark the
// session as logged in.
func (s *State) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// APIKey returns the current API key, or "" when none is set.
func (s *State) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// MarkLoggedIn flips the session to logged in for the given profile.
func (s *State) MarkLoggedIn(profileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	s.profileID = profileID
}

// LogOut clears the login status, API key and profile id. Requests already
// in flight keep counting until they finish.
func (s *State) LogOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	s.apiKey = ""
	s.profileID = 0
}

func (s *State) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// MyProfileID returns the logged in user's id. ok is false when no profile
// is known.
func (s *State) MyProfileID() (id int64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileID, s.profileID != 0
}

// BeginRequest records one more request in flight.
func (s *State) BeginRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
}

// EndRequest records that a request finished. Unbalanced calls never drive
// the counter below zero.
func (s *State) EndRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
}

// IsLoading reports whether any request is in flight.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *State) InFlight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

func (s *State) SetMobileMenu(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mobileMenuOpen = open
}

func (s *State) MobileMenuOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mobileMenuOpen
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		LoggedIn:       s.loggedIn,
		APIKey:         s.apiKey,
		ProfileID:      s.profileID,
		Loading:        s.inFlight > 0,
		InFlight:       s.inFlight,
		MobileMenuOpen: s.mobileMenuOpen,
	}
}
