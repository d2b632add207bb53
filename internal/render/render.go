// Package render prints command results as text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/chirp/internal/api"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Texter is implemented by values with their own text form.
type Texter interface {
	Text(w io.Writer) error
}

// Renderer writes values in one format.
type Renderer struct {
	Format string
	Out    io.Writer
}

// New returns a renderer, rejecting unknown formats.
func New(format string, out io.Writer) (*Renderer, error) {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return &Renderer{Format: format, Out: out}, nil
	}
	return nil, fmt.Errorf("render: unknown format %q", format)
}

// Render writes v.
func (r *Renderer) Render(v any) error {
	switch r.Format {
	case FormatJSON:
		enc := json.NewEncoder(r.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return Text(r.Out, v)
}

// Text writes the human form of the client's value types, falling back to
// fmt for anything else.
func Text(w io.Writer, v any) error {
	switch x := v.(type) {
	case Texter:
		return x.Text(w)
	case *api.User:
		return User(w, x)
	case api.User:
		return User(w, &x)
	case []api.Tweet:
		return Tweets(w, x)
	case []api.Trend:
		return Trends(w, x)
	case string:
		_, err := fmt.Fprintln(w, x)
		return err
	}
	_, err := fmt.Fprintf(w, "%v\n", v)
	return err
}

// User writes a profile summary.
func User(w io.Writer, u *api.User) error {
	if _, err := fmt.Fprintf(w, "%s (#%d)\n", u.Name, u.ID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "  followers: %s\n  following: %s\n", names(u.Followers), names(u.Following))
	return err
}

// Tweets writes one block per tweet.
func Tweets(w io.Writer, tweets []api.Tweet) error {
	if len(tweets) == 0 {
		_, err := fmt.Fprintln(w, "no tweets")
		return err
	}
	for _, t := range tweets {
		if _, err := fmt.Fprintf(w, "[%d] %s: %s\n", t.ID, t.Author.Name, t.Content); err != nil {
			return err
		}
		for _, a := range t.Attachments {
			if _, err := fmt.Fprintf(w, "      %s\n", a); err != nil {
				return err
			}
		}
		if len(t.Likes) > 0 {
			if _, err := fmt.Fprintf(w, "      %d likes\n", len(t.Likes)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Trends writes one hashtag per line.
func Trends(w io.Writer, trends []api.Trend) error {
	if len(trends) == 0 {
		_, err := fmt.Fprintln(w, "no trends")
		return err
	}
	for _, t := range trends {
		if _, err := fmt.Fprintf(w, "%-24s %d\n", t.Name, t.TweetsCount); err != nil {
			return err
		}
	}
	return nil
}

func names(refs []api.UserRef) string {
	if len(refs) == 0 {
		return "-"
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return strings.Join(out, ", ")
}
