package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
	"github.com/ecotrajet/carpool/internal/service"
)

// reservationEnv wires a ReservationService over a fresh in-memory store
// holding one scheduled trip with three seats, driven by driver.
type reservationEnv struct {
	svc   *service.ReservationService
	trips repo.TripRepo
	trip  domain.Trip
}

func newReservationEnv(t *testing.T) reservationEnv {
	t.Helper()
	store := repo.NewStore()
	trips := repo.NewTripRepo(store)
	trip, err := trips.Create(context.Background(), storedTrip())
	require.NoError(t, err)
	return reservationEnv{
		svc:   service.NewReservationService(repo.NewReservationRepo(store), trips, clock),
		trips: trips,
		trip:  trip,
	}
}

func (e reservationEnv) seats(t *testing.T) int {
	t.Helper()
	tr, err := e.trips.GetByID(context.Background(), e.trip.ID)
	require.NoError(t, err)
	return tr.AvailableSeats
}

func (e reservationEnv) book(t *testing.T, seats int) domain.Reservation {
	t.Helper()
	r, err := e.svc.Create(context.Background(), rider, domain.ReservationDraft{TripID: e.trip.ID, SeatsReserved: seats})
	require.NoError(t, err)
	return r
}

func statusPtr(s domain.ReservationStatus) *domain.ReservationStatus { return &s }

// ---- Create ----------------------------------------------------------------

func TestReservationService_Create_Pending(t *testing.T) {
	env := newReservationEnv(t)

	r := env.book(t, 2)

	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.Equal(t, "lea", r.Passenger)
	assert.Equal(t, "7", r.PassengerID)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, 3, env.seats(t), "pending reservations hold no seats")
}

func TestReservationService_Create_Invalid(t *testing.T) {
	env := newReservationEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, rider, domain.ReservationDraft{TripID: env.trip.ID, SeatsReserved: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.Create(ctx, rider, domain.ReservationDraft{TripID: env.trip.ID, SeatsReserved: 4})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.Create(ctx, rider, domain.ReservationDraft{TripID: 99, SeatsReserved: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_Create_CancelledTrip(t *testing.T) {
	env := newReservationEnv(t)
	tr := env.trip
	tr.Status = domain.TripCancelled
	_, err := env.trips.Update(context.Background(), tr)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), rider, domain.ReservationDraft{TripID: tr.ID, SeatsReserved: 1})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- seat accounting -------------------------------------------------------

func TestReservationService_ConfirmTakesSeats(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 2)

	got, err := env.svc.Update(context.Background(), driver, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, got.Status)
	assert.Equal(t, 1, env.seats(t))
}

func TestReservationService_ConfirmBeyondAvailableRejected(t *testing.T) {
	env := newReservationEnv(t)
	first := env.book(t, 2)
	second := env.book(t, 2)
	ctx := context.Background()

	_, err := env.svc.Update(ctx, driver, first.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, driver, second.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, env.seats(t))
}

func TestReservationService_ResizeConfirmedAdjustsSeats(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 1)
	ctx := context.Background()
	_, err := env.svc.Update(ctx, rider, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	require.NoError(t, err)
	require.Equal(t, 2, env.seats(t))

	three := 3
	_, err = env.svc.Update(ctx, rider, r.ID, domain.ReservationPatch{SeatsReserved: &three})

	require.NoError(t, err)
	assert.Equal(t, 0, env.seats(t))
}

func TestReservationService_CancelConfirmedRestoresSeats(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 2)
	ctx := context.Background()
	_, err := env.svc.Update(ctx, driver, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, rider, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationCancelled)})

	require.NoError(t, err)
	assert.Equal(t, 3, env.seats(t))

	_, err = env.svc.Update(ctx, rider, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	assert.ErrorIs(t, err, domain.ErrValidation, "a cancelled reservation is final")
}

func TestReservationService_DeleteConfirmedRestoresSeats(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 2)
	ctx := context.Background()
	_, err := env.svc.Update(ctx, driver, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, rider, r.ID))

	assert.Equal(t, 3, env.seats(t))
	_, err = env.svc.GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_DeletePendingKeepsSeats(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 2)

	require.NoError(t, env.svc.Delete(context.Background(), rider, r.ID))

	assert.Equal(t, 3, env.seats(t))
}

// ---- permissions and listings ----------------------------------------------

func TestReservationService_StrangerForbidden(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 1)
	stranger := domain.User{ID: "99", Username: "eve"}
	ctx := context.Background()

	_, err := env.svc.Update(ctx, stranger, r.ID, domain.ReservationPatch{Status: statusPtr(domain.ReservationConfirmed)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, env.svc.Delete(ctx, stranger, r.ID), domain.ErrForbidden)
}

func TestReservationService_Listings(t *testing.T) {
	env := newReservationEnv(t)
	r := env.book(t, 1)
	ctx := context.Background()

	mine, err := env.svc.ListMine(ctx, rider)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, r.ID, mine[0].ID)

	others, err := env.svc.ListMine(ctx, driver)
	require.NoError(t, err)
	assert.Empty(t, others)

	onTrip, err := env.svc.ListForTrip(ctx, env.trip.ID)
	require.NoError(t, err)
	assert.Len(t, onTrip, 1)

	_, err = env.svc.ListForTrip(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
