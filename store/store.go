// Package store persists saved server profiles and favorite streams in
// a local SQLite database. Plain key-value/table storage, no caching
// semantics. Passwords are sealed by the secrets package before they
// touch disk.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loupelog/loupe/secrets"
)

// ErrNotFound is returned when a server or favorite does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS servers (
	name       TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	username   TEXT NOT NULL,
	password   BLOB NOT NULL,
	skip_tls   INTEGER NOT NULL DEFAULT 0,
	is_default INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS favorites (
	server     TEXT NOT NULL,
	stream     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (server, stream),
	FOREIGN KEY (server) REFERENCES servers(name) ON DELETE CASCADE
);
`

// Server is a saved server profile. Password is plaintext in memory
// only; it is sealed on write and opened on read.
type Server struct {
	Name          string
	URL           string
	Username      string
	Password      string
	SkipTLSVerify bool
	Default       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	keeper *secrets.Keeper
}

// Open opens (and migrates) the database at path.
func Open(path string, keeper *secrets.Keeper) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db, keeper: keeper}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveServer inserts or updates a profile by name.
func (s *Store) SaveServer(srv Server) error {
	sealed, err := s.keeper.Seal([]byte(srv.Password))
	if err != nil {
		return fmt.Errorf("seal password: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO servers (name, url, username, password, skip_tls, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			url = excluded.url,
			username = excluded.username,
			password = excluded.password,
			skip_tls = excluded.skip_tls,
			updated_at = excluded.updated_at`,
		srv.Name, srv.URL, srv.Username, sealed, srv.SkipTLSVerify, srv.Default, now, now)
	if err != nil {
		return fmt.Errorf("save server %q: %w", srv.Name, err)
	}
	return nil
}

// GetServer returns one profile with its password opened.
func (s *Store) GetServer(name string) (*Server, error) {
	row := s.db.QueryRow(`
		SELECT name, url, username, password, skip_tls, is_default, created_at, updated_at
		FROM servers WHERE name = ?`, name)
	return s.scanServer(row)
}

// DefaultServer returns the profile marked as default.
func (s *Store) DefaultServer() (*Server, error) {
	row := s.db.QueryRow(`
		SELECT name, url, username, password, skip_tls, is_default, created_at, updated_at
		FROM servers WHERE is_default = 1 LIMIT 1`)
	return s.scanServer(row)
}

func (s *Store) scanServer(row *sql.Row) (*Server, error) {
	var srv Server
	var sealed []byte
	err := row.Scan(&srv.Name, &srv.URL, &srv.Username, &sealed,
		&srv.SkipTLSVerify, &srv.Default, &srv.CreatedAt, &srv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	plain, err := s.keeper.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("open password for %q: %w", srv.Name, err)
	}
	srv.Password = string(plain)
	return &srv, nil
}

// ListServers returns every profile ordered by name. Passwords are not
// opened for listings.
func (s *Store) ListServers() ([]Server, error) {
	rows, err := s.db.Query(`
		SELECT name, url, username, skip_tls, is_default, created_at, updated_at
		FROM servers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Server
	for rows.Next() {
		var srv Server
		if err := rows.Scan(&srv.Name, &srv.URL, &srv.Username,
			&srv.SkipTLSVerify, &srv.Default, &srv.CreatedAt, &srv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, srv)
	}
	return out, rows.Err()
}

// DeleteServer removes a profile and, via cascade, its favorites.
func (s *Store) DeleteServer(name string) error {
	res, err := s.db.Exec(`DELETE FROM servers WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault marks one profile as default and unmarks the rest.
func (s *Store) SetDefault(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE servers SET is_default = 0`); err != nil {
		return err
	}
	res, err := tx.Exec(`UPDATE servers SET is_default = 1 WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// AddFavorite records a favorite stream for a server. Adding the same
// pair twice is a no-op.
func (s *Store) AddFavorite(server, stream string) error {
	_, err := s.db.Exec(`
		INSERT INTO favorites (server, stream, created_at) VALUES (?, ?, ?)
		ON CONFLICT(server, stream) DO NOTHING`,
		server, stream, time.Now().UTC())
	return err
}

// RemoveFavorite deletes a favorite pair.
func (s *Store) RemoveFavorite(server, stream string) error {
	res, err := s.db.Exec(`DELETE FROM favorites WHERE server = ? AND stream = ?`, server, stream)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFavorites returns the favorite streams of a server, ordered by
// stream name.
func (s *Store) ListFavorites(server string) ([]string, error) {
	rows, err := s.db.Query(`SELECT stream FROM favorites WHERE server = ? ORDER BY stream`, server)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var stream string
		if err := rows.Scan(&stream); err != nil {
			return nil, err
		}
		out = append(out, stream)
	}
	return out, rows.Err()
}
