// Package session holds the investigator identity for the current session.
// The identity is trusted indefinitely once set: there is no expiry and no
// token refresh in the product's auth model.
package session

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

// FileName is the fixed key the identity is persisted under, relative to the
// data directory.
const FileName = "crimetryx_user.json"

var (
	ErrMissingCredentials = errors.NewSentinel("missing credentials")
	ErrInvalidCredentials = errors.NewSentinel("invalid credentials")
	ErrNotLoggedIn        = errors.NewSentinel("not logged in")
)

// Store is the session state for one process. Construct it explicitly, call
// Restore once at startup, and pass it to whatever needs the identity; there
// are no package-level globals.
type Store struct {
	path     string
	logger   *slog.Logger
	identity *models.Identity
}

// NewStore creates a session store persisting to dataDir.
func NewStore(dataDir string, logger *slog.Logger) *Store {
	return &Store{
		path:   filepath.Join(dataDir, FileName),
		logger: logger.With("source", "session.Store"),
	}
}

// Restore loads the persisted identity, if any. Call once at process start.
func (s *Store) Restore() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.identity = nil
			return nil
		}
		return errors.Wrap(err, "read session file", slog.String("path", s.path))
	}

	var identity models.Identity
	if err = json.Unmarshal(data, &identity); err != nil {
		return errors.Wrap(err, "decode session file", slog.String("path", s.path))
	}
	s.identity = &identity
	return nil
}

// Current returns the authenticated identity when one is set.
func (s *Store) Current() (models.Identity, bool) {
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Login authenticates through auth and persists the resulting identity.
// Missing credentials are rejected before the authenticator is consulted.
func (s *Store) Login(ctx context.Context, auth Authenticator, investigatorID, password string) (models.Identity, error) {
	if investigatorID == "" || password == "" {
		return models.Identity{}, errors.Wrap(ErrMissingCredentials, "login")
	}

	identity, err := auth.Authenticate(ctx, investigatorID, password)
	if err != nil {
		return models.Identity{}, err
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return models.Identity{}, errors.Wrap(err, "encode session file")
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return models.Identity{}, errors.Wrap(err, "create data directory", slog.String("path", s.path))
	}
	if err = os.WriteFile(s.path, data, 0o600); err != nil {
		return models.Identity{}, errors.Wrap(err, "write session file", slog.String("path", s.path))
	}

	s.identity = &identity
	return identity, nil
}

// Clear logs out and erases the persisted identity. Clearing an already
// empty session succeeds.
func (s *Store) Clear() error {
	s.identity = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "remove session file", slog.String("path", s.path))
	}
	return nil
}
