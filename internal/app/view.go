package app

import (
	"fmt"
	"io"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/render"
	"github.com/harrylevesque/chirp/internal/router"
)

// Screens an App can show.
const (
	ScreenHome    = "home"
	ScreenLogin   = "login"
	ScreenProfile = "profile"
)

// View is the data behind one screen.
type View struct {
	Location router.Location `json:"location" yaml:"location"`
	Screen   string          `json:"screen" yaml:"screen"`

	// Home
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
	Limit  int `json:"limit,omitempty" yaml:"limit,omitempty"`

	// Profile
	User      *api.User `json:"user,omitempty" yaml:"user,omitempty"`
	Own       bool      `json:"own,omitempty" yaml:"own,omitempty"`
	Following bool      `json:"following,omitempty" yaml:"following,omitempty"`

	Tweets []api.Tweet `json:"tweets,omitempty" yaml:"tweets,omitempty"`
}

// Text implements render.Texter.
func (v View) Text(w io.Writer) error {
	header := v.Location.String()
	if v.Location.RedirectedFrom != nil {
		header += " (from " + v.Location.RedirectedFrom.String() + ")"
	}
	if _, err := fmt.Fprintf(w, "== %s %s\n", v.Screen, header); err != nil {
		return err
	}
	switch v.Screen {
	case ScreenLogin:
		_, err := fmt.Fprintln(w, "log in with: chirp login <api-key>")
		return err
	case ScreenProfile:
		if err := render.User(w, v.User); err != nil {
			return err
		}
		switch {
		case v.Own:
			if _, err := fmt.Fprintln(w, "  (you)"); err != nil {
				return err
			}
		case v.Following:
			if _, err := fmt.Fprintln(w, "  (following)"); err != nil {
				return err
			}
		}
	}
	return render.Tweets(w, v.Tweets)
}
