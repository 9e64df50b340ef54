package cli_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/cli"
	"github.com/ecotrajet/carpool/internal/config"
	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/testutil"
)

// ---- helpers ---------------------------------------------------------------

type harness struct {
	t   *testing.T
	cfg config.Config
}

func newHarness(t *testing.T, source string) *harness {
	t.Helper()
	srv := testutil.NewAPIServer(t)
	return &harness{t: t, cfg: config.Config{
		APIBaseURL:      srv.URL,
		SessionFile:     filepath.Join(t.TempDir(), "session.json"),
		HTTPTimeout:     5 * time.Second,
		CommunitySource: source,
	}}
}

// run executes one command line and returns its output.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := cli.NewApp(h.cfg, &out, logger).Run(context.Background(), args)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, strings.Join(args, " "))
	return out
}

func (h *harness) login(id int, username, name string) {
	h.t.Helper()
	h.mustRun("login", "--token", testutil.Token(h.t, id, username, name))
}

// ---- session ---------------------------------------------------------------

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	assert.Equal(t, "Not logged in\n", h.mustRun("whoami"))

	h.login(7, "lea", "Léa Martin")
	assert.Equal(t, "Léa Martin (@lea) (id 7)\n", h.mustRun("whoami"))

	assert.Equal(t, "Logged out\n", h.mustRun("logout"))
	assert.Equal(t, "Not logged in\n", h.mustRun("whoami"))
}

func TestLogin_RejectsGarbage(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	_, err := h.run("login", "--token", "not-a-jwt")
	require.Error(t, err)

	_, err = h.run("login")
	require.ErrorContains(t, err, "--token is required")
}

// ---- dispatch --------------------------------------------------------------

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	_, err := h.run("trips", "frobnicate")

	require.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestHelpListsSubcommands(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	out := h.mustRun("reservations", "--help")

	assert.Contains(t, out, "confirm")
	assert.Contains(t, out, "Usage:")
}

func TestBadFlag(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	_, err := h.run("trips", "search", "--when", "today")

	require.ErrorContains(t, err, "unknown flag")
}

// ---- trips -----------------------------------------------------------------

func TestTripsSearch(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	out := h.mustRun("trips", "search", "--origin", "toulouse")
	assert.Contains(t, out, "Bordeaux")
	assert.NotContains(t, out, "Part-Dieu")

	out = h.mustRun("trips", "search")
	assert.Contains(t, out, "Part-Dieu")

	assert.Equal(t, "No trips found\n", h.mustRun("trips", "search", "--destination", "Ajaccio"))

	_, err := h.run("trips", "search", "--date", "14/07/2025")
	require.ErrorContains(t, err, "YYYY-MM-DD")
}

// flakyAPI fronts the harness API and answers the first failures requests
// with 503. It returns the number of requests seen.
func (h *harness) flakyAPI(failures int32) *atomic.Int32 {
	h.t.Helper()
	target, err := url.Parse(h.cfg.APIBaseURL)
	require.NoError(h.t, err)
	proxy := httputil.NewSingleHostReverseProxy(target)
	var seen atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen.Add(1) <= failures {
			http.Error(w, `{"error":{"code":"unavailable","message":"try later"}}`, http.StatusServiceUnavailable)
			return
		}
		proxy.ServeHTTP(w, r)
	}))
	h.t.Cleanup(srv.Close)
	h.cfg.APIBaseURL = srv.URL
	return &seen
}

func TestTripsSearch_RetryAfterServerError(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	seen := h.flakyAPI(1)

	out := h.mustRun("trips", "search", "--origin", "toulouse", "--retry", "2")

	assert.Contains(t, out, "Bordeaux")
	assert.Equal(t, int32(2), seen.Load())
}

func TestTripsSearch_NoRetryByDefault(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	seen := h.flakyAPI(1)

	_, err := h.run("trips", "search")

	fe, ok := domain.AsFetchError(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
	assert.Equal(t, int32(1), seen.Load())
}

func TestTripsSearch_ClientErrorsAreNotRetried(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	var seen atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		seen.Add(1)
		http.Error(w, `{"error":{"code":"bad_request","message":"nope"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	h.cfg.APIBaseURL = srv.URL

	_, err := h.run("trips", "search", "--retry", "3")

	require.Error(t, err)
	assert.Equal(t, int32(1), seen.Load())
}

func TestTripsShow(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	out := h.mustRun("trips", "show", "1")
	assert.Contains(t, out, "Boulogne-Billancourt → La Défense")
	assert.Contains(t, out, "5.50 €")

	_, err := h.run("trips", "show", "9999")
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.Status)

	_, err = h.run("trips", "show", "abc")
	require.ErrorContains(t, err, "invalid trip id")
}

func TestTripsPublishAndCancel(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	h.login(30, "paul", "Paul Durand")
	dep := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	out := h.mustRun("trips", "publish",
		"--origin", "Rennes", "--destination", "Brest",
		"--departure", dep.Format(time.RFC3339),
		"--arrival", dep.Add(2*time.Hour).Format(time.RFC3339),
		"--price", "12.5", "--seats", "2")
	require.Regexp(t, `^Trip \d+ published\n$`, out)
	id := strings.Fields(out)[1]

	assert.Equal(t, "Trip "+id+" cancelled\n", h.mustRun("trips", "cancel", id))
	assert.Contains(t, h.mustRun("trips", "show", id), "CANCELLED")
}

// ---- reservations ----------------------------------------------------------

func TestReservationsFlow(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	h.login(7, "lea", "Léa Martin")

	assert.Equal(t, "No reservations\n", h.mustRun("reservations", "list"))

	assert.Equal(t, "Reservation 1 created (PENDING)\n", h.mustRun("reservations", "create", "--trip", "1", "--seats", "2"))
	assert.Contains(t, h.mustRun("reservations", "list"), "lea")
	assert.Contains(t, h.mustRun("reservations", "show", "1"), "PENDING")

	assert.Equal(t, "Reservation 1 CONFIRMED\n", h.mustRun("reservations", "confirm", "1"))
	assert.Contains(t, h.mustRun("trips", "show", "1"), "1 of 3 available")
	assert.Contains(t, h.mustRun("trips", "reservations", "1"), "CONFIRMED")

	assert.Equal(t, "Reservation 1 cancelled\n", h.mustRun("reservations", "cancel", "1"))
	assert.Contains(t, h.mustRun("trips", "show", "1"), "3 of 3 available")
}

func TestReservationsCreate_TooManySeats(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	h.login(7, "lea", "Léa Martin")

	_, err := h.run("reservations", "create", "--trip", "1", "--seats", "9")

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 422, fe.Status)
}

func TestReservations_RequireLogin(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	_, err := h.run("reservations", "list")

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 401, fe.Status)
}

// ---- communities -----------------------------------------------------------

func TestCommunities_Memory(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	out := h.mustRun("communities", "list")
	joined, available, _ := strings.Cut(out, "Available:")
	assert.Contains(t, joined, "Trajets Entreprise Paris")
	assert.Contains(t, available, "Week-end Montagne")

	assert.Equal(t, "Joined Week-end Montagne\n", h.mustRun("communities", "join", "3"))
	assert.Equal(t, "Left Trajets Entreprise Paris\n", h.mustRun("communities", "leave", "1"))

	_, err := h.run("communities", "join", "1")
	assert.ErrorIs(t, err, domain.ErrNotFoundLocal)

	_, err = h.run("communities", "create", "--name", "Covoit Nantes", "--type", "Loisirs")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out = h.mustRun("communities", "create", "--name", "Covoit Nantes", "--type", "loisirs",
		"--location", "Nantes", "--description", "Sorties du week-end")
	assert.Contains(t, out, "Community Covoit Nantes created")
}

func TestCommunitiesShow_Tabs(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	assert.Contains(t, h.mustRun("communities", "show", "1"), "Location")
	assert.Contains(t, h.mustRun("communities", "show", "1", "--tab", "members"), "USERNAME")
	assert.Contains(t, h.mustRun("communities", "show", "1", "--tab", "trips"), "Boulogne-Billancourt")
	assert.Contains(t, h.mustRun("communities", "show", "2", "--tab", "members"), "Join the community")

	_, err := h.run("communities", "show", "1", "--tab", "photos")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.run("communities", "show", "77")
	assert.ErrorIs(t, err, domain.ErrNotFoundLocal)
}

func TestCommunities_RemotePersistsAcrossRuns(t *testing.T) {
	h := newHarness(t, config.CommunitySourceRemote)
	h.login(42, "nina", "Nina Petit")

	h.mustRun("communities", "join", "2")

	out := h.mustRun("communities", "list")
	joined, _, _ := strings.Cut(out, "Available:")
	assert.Contains(t, joined, "Étudiants Université Lyon")
}

// ---- export ----------------------------------------------------------------

func TestExport_CSVToFile(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)
	path := filepath.Join(t.TempDir(), "trips.csv")

	assert.Empty(t, h.mustRun("export", "--origin", "Toulouse", "-o", path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "trip_id", records[0][0])
	assert.Equal(t, "Toulouse", records[1][2])
}

func TestExport_JSON(t *testing.T) {
	h := newHarness(t, config.CommunitySourceMemory)

	out := h.mustRun("export", "--format", "json", "--destination", "Part-Dieu")

	assert.Contains(t, out, `"destination": "Part-Dieu"`)

	_, err := h.run("export", "--format", "xml")
	require.ErrorContains(t, err, "--format must be csv or json")
}
