package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
)

func reservationFixture(tripID int64, passengerID string) domain.Reservation {
	return domain.Reservation{
		TripID:        tripID,
		Passenger:     "user" + passengerID,
		PassengerID:   passengerID,
		SeatsReserved: 1,
		Status:        domain.ReservationPending,
	}
}

func TestReservationRepo_CreateGetDelete(t *testing.T) {
	r := repo.NewReservationRepo(repo.NewStore())
	ctx := context.Background()

	created, err := r.Create(ctx, reservationFixture(1, "7"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, r.Delete(ctx, created.ID))
	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestReservationRepo_Listings(t *testing.T) {
	r := repo.NewReservationRepo(repo.NewStore())
	ctx := context.Background()
	for _, res := range []domain.Reservation{
		reservationFixture(1, "7"),
		reservationFixture(2, "7"),
		reservationFixture(1, "8"),
	} {
		_, err := r.Create(ctx, res)
		require.NoError(t, err)
	}

	mine, err := r.ListByPassenger(ctx, "7")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(2), mine[1].ID)

	onTrip, err := r.ListByTrip(ctx, 1)
	require.NoError(t, err)
	require.Len(t, onTrip, 2)
	assert.Equal(t, "8", onTrip[1].PassengerID)

	none, err := r.ListByPassenger(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReservationRepo_Update(t *testing.T) {
	r := repo.NewReservationRepo(repo.NewStore())
	ctx := context.Background()
	created, err := r.Create(ctx, reservationFixture(1, "7"))
	require.NoError(t, err)

	created.Status = domain.ReservationConfirmed
	_, err = r.Update(ctx, created)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, got.Status)

	created.ID = 99
	_, err = r.Update(ctx, created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
