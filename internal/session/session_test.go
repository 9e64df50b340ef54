package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/session"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFileStore_MissingFileIsAnonymous(t *testing.T) {
	s := session.NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json"))

	tok, err := s.Token()

	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileStore_SaveThenToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "session.json")
	s := session.NewFileStore(path)

	require.NoError(t, s.Save("  abc.def.ghi \n"))
	tok, err := s.Token()

	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_Clear(t *testing.T) {
	s := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, s.Save("tok"))

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewFileStore(path).Token()

	require.Error(t, err)
	assert.ErrorContains(t, err, "session.FileStore.Token")
}

func TestUserFromToken_Empty(t *testing.T) {
	u, err := session.UserFromToken("")

	require.NoError(t, err)
	assert.True(t, u.Anonymous())
	assert.Equal(t, "Moi", u.DisplayName())
}

func TestUserFromToken_SimpleJWTClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"user_id":  42,
		"username": "amed",
		"prenom":   "Amed",
		"nom":      "Ben Said",
	})

	u, err := session.UserFromToken(tok)

	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "amed", u.Username)
	assert.Equal(t, "Amed Ben Said", u.Name)
	assert.Equal(t, "AB", u.Initials())
}

func TestUserFromToken_SubjectFallback(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "lea"})

	u, err := session.UserFromToken(tok)

	require.NoError(t, err)
	assert.Equal(t, "lea", u.ID)
	assert.Equal(t, "lea", u.Username)
	assert.Equal(t, "lea", u.DisplayName())
}

func TestUserFromToken_Malformed(t *testing.T) {
	_, err := session.UserFromToken("not-a-jwt")

	require.Error(t, err)
}

func TestCurrentUser_Static(t *testing.T) {
	u, err := session.CurrentUser(session.Static(signed(t, jwt.MapClaims{"username": "sam", "name": "Sam Roux"})))

	require.NoError(t, err)
	assert.Equal(t, "Sam Roux", u.Name)
}
