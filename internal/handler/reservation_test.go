package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/handler"
)

// ---- mock ReservationServicer ----------------------------------------------

type mockReservationServicer struct {
	create      func(ctx context.Context, user domain.User, draft domain.ReservationDraft) (domain.Reservation, error)
	getByID     func(ctx context.Context, id int64) (domain.Reservation, error)
	listMine    func(ctx context.Context, user domain.User) ([]domain.Reservation, error)
	listForTrip func(ctx context.Context, tripID int64) ([]domain.Reservation, error)
	update      func(ctx context.Context, user domain.User, id int64, patch domain.ReservationPatch) (domain.Reservation, error)
	delete      func(ctx context.Context, user domain.User, id int64) error
}

func (m *mockReservationServicer) Create(ctx context.Context, user domain.User, draft domain.ReservationDraft) (domain.Reservation, error) {
	return m.create(ctx, user, draft)
}
func (m *mockReservationServicer) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationServicer) ListMine(ctx context.Context, user domain.User) ([]domain.Reservation, error) {
	return m.listMine(ctx, user)
}
func (m *mockReservationServicer) ListForTrip(ctx context.Context, tripID int64) ([]domain.Reservation, error) {
	return m.listForTrip(ctx, tripID)
}
func (m *mockReservationServicer) Update(ctx context.Context, user domain.User, id int64, patch domain.ReservationPatch) (domain.Reservation, error) {
	return m.update(ctx, user, id, patch)
}
func (m *mockReservationServicer) Delete(ctx context.Context, user domain.User, id int64) error {
	return m.delete(ctx, user, id)
}

// compile-time check: mockReservationServicer must satisfy handler.ReservationServicer.
var _ handler.ReservationServicer = (*mockReservationServicer)(nil)

func reservationRoutes(svc handler.ReservationServicer) http.Handler {
	return handler.NewServer(nil, svc, nil, nil).Routes()
}

func reservationFixture(id int64) domain.Reservation {
	return domain.Reservation{ID: id, TripID: 1, Passenger: "lea", PassengerID: "7", SeatsReserved: 2, Status: domain.ReservationPending}
}

// ---- tests -----------------------------------------------------------------

func TestListReservations_OnlyCallers(t *testing.T) {
	var gotUser domain.User
	svc := &mockReservationServicer{
		listMine: func(_ context.Context, u domain.User) ([]domain.Reservation, error) {
			gotUser = u
			return []domain.Reservation{reservationFixture(3)}, nil
		},
	}

	rec := serve(reservationRoutes(svc), http.MethodGet, "/reservations/", bearer(t), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", gotUser.ID)
	var got []domain.Reservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].TripID)
}

func TestListReservations_RequiresToken(t *testing.T) {
	rec := serve(reservationRoutes(&mockReservationServicer{}), http.MethodGet, "/reservations/", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservation(t *testing.T) {
	var gotDraft domain.ReservationDraft
	svc := &mockReservationServicer{
		create: func(_ context.Context, _ domain.User, d domain.ReservationDraft) (domain.Reservation, error) {
			gotDraft = d
			return reservationFixture(3), nil
		},
	}

	rec := serve(reservationRoutes(svc), http.MethodPost, "/reservations/", bearer(t), `{"trip":1,"seats_reserved":2}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.ReservationDraft{TripID: 1, SeatsReserved: 2}, gotDraft)
}

func TestCreateReservation_TooManySeats(t *testing.T) {
	svc := &mockReservationServicer{
		create: func(_ context.Context, _ domain.User, _ domain.ReservationDraft) (domain.Reservation, error) {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w: only 1 seat(s) available", domain.ErrValidation)
		},
	}

	rec := serve(reservationRoutes(svc), http.MethodPost, "/reservations/", bearer(t), `{"trip":1,"seats_reserved":2}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "only 1 seat(s) available", decodeError(t, rec).Error.Message)
}

func TestGetReservation_NotFound(t *testing.T) {
	svc := &mockReservationServicer{
		getByID: func(_ context.Context, _ int64) (domain.Reservation, error) {
			return domain.Reservation{}, domain.ErrNotFound
		},
	}

	rec := serve(reservationRoutes(svc), http.MethodGet, "/reservations/9/", bearer(t), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "reservation not found", decodeError(t, rec).Error.Message)
}

func TestUpdateReservation_Confirm(t *testing.T) {
	var gotPatch domain.ReservationPatch
	svc := &mockReservationServicer{
		update: func(_ context.Context, _ domain.User, id int64, p domain.ReservationPatch) (domain.Reservation, error) {
			gotPatch = p
			r := reservationFixture(id)
			r.Status = *p.Status
			return r, nil
		},
	}

	rec := serve(reservationRoutes(svc), http.MethodPatch, "/reservations/3/", bearer(t), `{"status":"CONFIRMED"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPatch.Status)
	assert.Equal(t, domain.ReservationConfirmed, *gotPatch.Status)
	assert.Nil(t, gotPatch.SeatsReserved)
}

func TestDeleteReservation(t *testing.T) {
	svc := &mockReservationServicer{
		delete: func(_ context.Context, _ domain.User, id int64) error {
			if id == 3 {
				return nil
			}
			return fmt.Errorf("%w: reservation %d", domain.ErrForbidden, id)
		},
	}
	h := reservationRoutes(svc)

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodDelete, "/reservations/3/", bearer(t), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodDelete, "/reservations/4/", bearer(t), "").Code)
}

func TestListTripReservations(t *testing.T) {
	svc := &mockReservationServicer{
		listForTrip: func(_ context.Context, tripID int64) ([]domain.Reservation, error) {
			if tripID != 1 {
				return nil, domain.ErrNotFound
			}
			return []domain.Reservation{}, nil
		},
	}
	h := handler.NewServer(nil, svc, nil, nil).Routes()

	rec := serve(h, http.MethodGet, "/trips/1/reservations/", bearer(t), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/trips/2/reservations/", bearer(t), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodGet, "/trips/1/reservations/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
