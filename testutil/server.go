// Package testutil provides shared helpers for integration tests that need a
// running carpool API. The server is the in-memory fixture API seeded from
// the embedded fixtures, so no external service is required.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecotrajet/carpool/internal/handler"
	"github.com/ecotrajet/carpool/internal/repo"
	"github.com/ecotrajet/carpool/internal/service"
)

// NewAPIServer starts the fixture API on a freshly seeded store and returns
// the running server. Each call gets its own store, so tests never see each
// other's writes. The server is closed when the test finishes.
func NewAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := repo.NewSeededStore()
	if err != nil {
		t.Fatalf("testutil.NewAPIServer: seed store: %v", err)
	}

	trips := repo.NewTripRepo(store)
	reservations := repo.NewReservationRepo(store)
	communities := repo.NewCommunityRepo(store)

	srv := handler.NewServer(
		service.NewTripService(trips, time.Now),
		service.NewReservationService(reservations, trips, time.Now),
		service.NewCommunityService(communities, time.Now),
		service.NewExportService(trips, reservations),
	)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// Token returns a signed HS256 JWT carrying the display claims the API reads.
// The fixture API does not verify signatures; the key is arbitrary.
func Token(t *testing.T, userID int, username, name string) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"name":     name,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("testutil"))
	if err != nil {
		t.Fatalf("testutil.Token: %v", err)
	}
	return tok
}
