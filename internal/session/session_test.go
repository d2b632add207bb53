package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/chirp/internal/crypto"
)

func TestStateStartsLoggedOut(t *testing.T) {
	st := New()
	snap := st.Snapshot()
	assert.False(t, snap.LoggedIn)
	assert.Empty(t, snap.APIKey)
	assert.False(t, snap.Loading)
	_, ok := st.MyProfileID()
	assert.False(t, ok)
}

func TestStateLoginLogout(t *testing.T) {
	st := New()
	st.SetAPIKey("test")
	assert.False(t, st.IsLoggedIn())

	st.MarkLoggedIn(7)
	id, ok := st.MyProfileID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.True(t, st.IsLoggedIn())

	st.BeginRequest()
	st.LogOut()
	assert.False(t, st.IsLoggedIn())
	assert.Empty(t, st.APIKey())
	assert.True(t, st.IsLoading(), "logout must not drop in-flight requests")
}

func TestStateLoadingCounter(t *testing.T) {
	st := New()
	st.EndRequest()
	assert.Equal(t, 0, st.InFlight())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.BeginRequest()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, st.InFlight())

	for i := 0; i < 49; i++ {
		st.EndRequest()
	}
	assert.True(t, st.IsLoading())
	st.EndRequest()
	assert.False(t, st.IsLoading())
}

func TestFileStoreRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	fs := &FileStore{Path: filepath.Join(t.TempDir(), "state", "session.enc"), Key: key}

	st := New()
	st.SetAPIKey("test")
	st.MarkLoggedIn(3)
	require.NoError(t, fs.Save(st, "/login", "/profile/3"))

	info, err := os.Stat(fs.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	restored := New()
	rec, err := fs.Load(restored)
	require.NoError(t, err)
	assert.Equal(t, "/login", rec.Location)
	assert.Equal(t, "/profile/3", rec.RedirectedFrom)
	assert.True(t, restored.IsLoggedIn())
	assert.Equal(t, "test", restored.APIKey())

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())

	empty := New()
	rec, err = fs.Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)
	assert.False(t, empty.IsLoggedIn())
}

func TestFileStoreWrongKey(t *testing.T) {
	key, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	path := filepath.Join(t.TempDir(), "session.enc")

	require.NoError(t, (&FileStore{Path: path, Key: key}).Save(New(), "/", ""))
	_, err := (&FileStore{Path: path, Key: other}).Load(New())
	assert.Error(t, err)
}

func TestFileStoreSaveFailureRemovesTempFile(t *testing.T) {
	key, _ := crypto.GenerateKey()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "busy"), 0o700))

	err := (&FileStore{Path: path, Key: key}).Save(New(), "/", "")
	require.Error(t, err)
	assert.NoFileExists(t, path+".tmp")
	assert.DirExists(t, path)
}
