package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
)

// ReservationService implements booking rules. Seats are taken from a trip
// when a reservation is confirmed and given back when a confirmed
// reservation is cancelled or deleted.
type ReservationService struct {
	reservations repo.ReservationRepo
	trips        repo.TripRepo
	now          func() time.Time

	// mu serializes seat accounting across reservations of the same trip.
	mu sync.Mutex
}

// NewReservationService constructs a ReservationService. A nil now defaults
// to time.Now.
func NewReservationService(reservations repo.ReservationRepo, trips repo.TripRepo, now func() time.Time) *ReservationService {
	if now == nil {
		now = time.Now
	}
	return &ReservationService{reservations: reservations, trips: trips, now: now}
}

// Create books draft.SeatsReserved seats on a scheduled trip for user. The
// reservation starts pending and does not hold seats yet.
func (s *ReservationService) Create(ctx context.Context, user domain.User, draft domain.ReservationDraft) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, err := s.trips.GetByID(ctx, draft.TripID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	if trip.Status != domain.TripScheduled {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w: trip %d is not open for booking", domain.ErrValidation, trip.ID)
	}
	if err := checkSeats(draft.SeatsReserved, trip.AvailableSeats); err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	created, err := s.reservations.Create(ctx, domain.Reservation{
		TripID:        trip.ID,
		Passenger:     passengerName(user),
		PassengerID:   userKey(user),
		SeatsReserved: draft.SeatsReserved,
		Status:        domain.ReservationPending,
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns one reservation.
func (s *ReservationService) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	return r, nil
}

// ListMine returns the reservations made by user.
func (s *ReservationService) ListMine(ctx context.Context, user domain.User) ([]domain.Reservation, error) {
	out, err := s.reservations.ListByPassenger(ctx, userKey(user))
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListMine: %w", err)
	}
	return out, nil
}

// ListForTrip returns every reservation on the trip with tripID.
func (s *ReservationService) ListForTrip(ctx context.Context, tripID int64) ([]domain.Reservation, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForTrip: %w", err)
	}
	out, err := s.reservations.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForTrip: %w", err)
	}
	return out, nil
}

// Update changes the seat count or status of a reservation. The passenger
// and the trip's driver may both edit it. Seat changes on a confirmed
// reservation and status transitions adjust the trip's available seats.
func (s *ReservationService) Update(ctx context.Context, user domain.User, id int64, patch domain.ReservationPatch) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, trip, err := s.editable(ctx, user, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
	}
	if res.Status == domain.ReservationCancelled {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w: reservation %d is cancelled", domain.ErrValidation, id)
	}

	next := res
	if patch.SeatsReserved != nil {
		next.SeatsReserved = *patch.SeatsReserved
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w: unknown status %q", domain.ErrValidation, *patch.Status)
		}
		next.Status = *patch.Status
	}

	// Seats the trip would have if this reservation held none.
	free := trip.AvailableSeats + held(res)
	if next.Status != domain.ReservationCancelled {
		if err := checkSeats(next.SeatsReserved, free); err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}
	}

	if delta := held(res) - held(next); delta != 0 {
		trip.AvailableSeats += delta
		if _, err := s.trips.Update(ctx, trip); err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}
	}
	updated, err := s.reservations.Update(ctx, next)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a reservation, giving back its seats if it was confirmed.
func (s *ReservationService) Delete(ctx context.Context, user domain.User, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, trip, err := s.editable(ctx, user, id)
	if err != nil {
		return fmt.Errorf("service.ReservationService.Delete: %w", err)
	}
	if n := held(res); n > 0 {
		trip.AvailableSeats = min(trip.AvailableSeats+n, trip.TotalSeats)
		if _, err := s.trips.Update(ctx, trip); err != nil {
			return fmt.Errorf("service.ReservationService.Delete: %w", err)
		}
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ReservationService.Delete: %w", err)
	}
	return nil
}

// editable loads a reservation and its trip and checks that user is either
// the passenger or the driver.
func (s *ReservationService) editable(ctx context.Context, user domain.User, id int64) (domain.Reservation, domain.Trip, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, domain.Trip{}, err
	}
	trip, err := s.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return domain.Reservation{}, domain.Trip{}, err
	}
	key := userKey(user)
	if res.PassengerID != key && trip.DriverID != key {
		return domain.Reservation{}, domain.Trip{}, fmt.Errorf("%w: reservation %d", domain.ErrForbidden, id)
	}
	return res, trip, nil
}

// held is the number of trip seats a reservation currently occupies.
func held(r domain.Reservation) int {
	if r.Status == domain.ReservationConfirmed {
		return r.SeatsReserved
	}
	return 0
}

func checkSeats(requested, available int) error {
	switch {
	case requested < 1:
		return fmt.Errorf("%w: seats_reserved must be at least 1", domain.ErrValidation)
	case requested > available:
		return fmt.Errorf("%w: only %d seat(s) available", domain.ErrValidation, available)
	}
	return nil
}

func passengerName(u domain.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.DisplayName()
}
