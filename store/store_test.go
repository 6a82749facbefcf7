package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelog/loupe/secrets"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	keeper, err := secrets.NewKeeper(dir)
	require.NoError(t, err)
	s, err := Open(filepath.Join(dir, "loupe.db"), keeper)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testServer() Server {
	return Server{
		Name:     "prod",
		URL:      "https://logs.example.com",
		Username: "admin",
		Password: "hunter2",
	}
}

func TestSaveAndGetServer(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveServer(testServer()))

	got, err := s.GetServer("prod")
	require.NoError(t, err)
	assert.Equal(t, "https://logs.example.com", got.URL)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, "hunter2", got.Password, "password must round-trip through sealing")
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveServerUpserts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveServer(testServer()))

	updated := testServer()
	updated.Password = "newpass"
	updated.URL = "https://logs2.example.com"
	require.NoError(t, s.SaveServer(updated))

	got, err := s.GetServer("prod")
	require.NoError(t, err)
	assert.Equal(t, "newpass", got.Password)
	assert.Equal(t, "https://logs2.example.com", got.URL)

	servers, err := s.ListServers()
	require.NoError(t, err)
	assert.Len(t, servers, 1)
}

func TestGetServerNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetServer("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListServersOmitsPasswords(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveServer(testServer()))

	servers, err := s.ListServers()
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Empty(t, servers[0].Password)
}

func TestSetDefaultIsExclusive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveServer(testServer()))

	staging := testServer()
	staging.Name = "staging"
	require.NoError(t, s.SaveServer(staging))

	require.NoError(t, s.SetDefault("prod"))
	require.NoError(t, s.SetDefault("staging"))

	def, err := s.DefaultServer()
	require.NoError(t, err)
	assert.Equal(t, "staging", def.Name)

	assert.ErrorIs(t, s.SetDefault("missing"), ErrNotFound)
}

func TestDeleteServerCascadesFavorites(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveServer(testServer()))
	require.NoError(t, s.AddFavorite("prod", "app"))

	require.NoError(t, s.DeleteServer("prod"))
	assert.ErrorIs(t, s.DeleteServer("prod"), ErrNotFound)

	favs, err := s.ListFavorites("prod")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveServer(testServer()))

	require.NoError(t, s.AddFavorite("prod", "audit"))
	require.NoError(t, s.AddFavorite("prod", "app"))
	require.NoError(t, s.AddFavorite("prod", "app"), "duplicate add is a no-op")

	favs, err := s.ListFavorites("prod")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "audit"}, favs)

	require.NoError(t, s.RemoveFavorite("prod", "app"))
	assert.ErrorIs(t, s.RemoveFavorite("prod", "app"), ErrNotFound)

	favs, err = s.ListFavorites("prod")
	require.NoError(t, err)
	assert.Equal(t, []string{"audit"}, favs)
}
