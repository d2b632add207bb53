package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrylevesque/chirp/internal/crypto"
)

// Record is what FileStore keeps between runs of the client.
type Record struct {
	APIKey    string `json:"api_key"`
	LoggedIn  bool   `json:"logged_in"`
	ProfileID int64  `json:"profile_id,omitempty"`
	Location  string `json:"location,omitempty"`

	// RedirectedFrom is the path that was redirected to Location, if any.
	RedirectedFrom string    `json:"redirected_from,omitempty"`
	SavedAt        time.Time `json:"saved_at"`
}

// FileStore persists a session record in a file sealed with Key.
type FileStore struct {
	Path string
	Key  []byte
}

// Save writes the state and the given location paths.
func (f *FileStore) Save(st *State, location, redirectedFrom string) error {
	snap := st.Snapshot()
	rec := Record{
		APIKey:         snap.APIKey,
		LoggedIn:       snap.LoggedIn,
		ProfileID:      snap.ProfileID,
		Location:       location,
		RedirectedFrom: redirectedFrom,
		SavedAt:        time.Now().UTC(),
	}
	plain, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	enc, err := crypto.Seal(f.Key, plain)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, enc, 0600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads the record and applies it to st. A missing file leaves st
// untouched and returns an empty record.
func (f *FileStore) Load(st *State) (Record, error) {
	blob, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}
	plain, err := crypto.Open(f.Key, blob)
	if err != nil {
		return Record{}, fmt.Errorf("open session %s: %w", f.Path, err)
	}
	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session %s: %w", f.Path, err)
	}
	st.SetAPIKey(rec.APIKey)
	if rec.LoggedIn {
		st.MarkLoggedIn(rec.ProfileID)
	}
	return rec, nil
}

// Clear removes the session file.
func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
