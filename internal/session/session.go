// Package session stores the bearer token handed out by the identity
// provider and derives the current user from it.
//
// The token is never verified here. The API server is the authority on
// whether a token is acceptable; the client only reads display claims.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecotrajet/carpool/internal/domain"
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token with a nil error means "send the request unauthenticated".
type TokenSource interface {
	Token() (string, error)
}

// Static is a fixed token, mostly useful in tests.
type Static string

// Token returns the static token.
func (s Static) Token() (string, error) {
	return string(s), nil
}

// FileStore keeps the session in a small JSON file, the command-line
// counterpart of browser local storage:
//
//	{"access_token": "<jwt>"}
type FileStore struct {
	path string
}

type fileContents struct {
	AccessToken string `json:"access_token"`
}

// NewFileStore returns a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Token reads the stored token. A missing file is not an error.
func (s *FileStore) Token() (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session.FileStore.Token: %w", err)
	}
	var c fileContents
	if err := json.Unmarshal(b, &c); err != nil {
		return "", fmt.Errorf("session.FileStore.Token: decode %s: %w", s.path, err)
	}
	return strings.TrimSpace(c.AccessToken), nil
}

// Save writes token to the store, creating parent directories as needed.
// The file is readable by the owner only.
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session.FileStore.Save: %w", err)
	}
	b, err := json.Marshal(fileContents{AccessToken: strings.TrimSpace(token)})
	if err != nil {
		return fmt.Errorf("session.FileStore.Save: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("session.FileStore.Save: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session.FileStore.Clear: %w", err)
	}
	return nil
}

// Claims are the token claims the client cares about. Identity providers
// disagree on names, so several spellings are accepted.
type Claims struct {
	UserID    any    `json:"user_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"prenom,omitempty"`
	LastName  string `json:"nom,omitempty"`
	jwt.RegisteredClaims
}

// UserFromToken extracts the current user from an unverified JWT.
// An empty token yields the anonymous user.
func UserFromToken(token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, nil
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.User{}, fmt.Errorf("session.UserFromToken: %w", err)
	}

	u := domain.User{
		Username: claims.Username,
		Name:     claims.Name,
	}
	if claims.UserID != nil {
		u.ID = fmt.Sprint(claims.UserID)
	} else {
		u.ID = claims.Subject
	}
	if u.Name == "" {
		u.Name = strings.TrimSpace(claims.FirstName + " " + claims.LastName)
	}
	if u.Username == "" {
		u.Username = claims.Subject
	}
	return u, nil
}

// CurrentUser reads the token from src and returns the user it names.
func CurrentUser(src TokenSource) (domain.User, error) {
	tok, err := src.Token()
	if err != nil {
		return domain.User{}, err
	}
	return UserFromToken(tok)
}
