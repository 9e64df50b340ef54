package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ReservationRepo defines the storage operations for Reservations.
type ReservationRepo interface {
	// Create stores a new reservation and returns it with its assigned id.
	Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// GetByID returns domain.ErrNotFound if the reservation does not exist.
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)

	// ListByPassenger returns the reservations made by passengerID, oldest first.
	ListByPassenger(ctx context.Context, passengerID string) ([]domain.Reservation, error)

	// ListByTrip returns the reservations on tripID, oldest first.
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Reservation, error)

	// Update overwrites an existing reservation.
	// Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// Delete removes a reservation. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

type memReservationRepo struct {
	s *Store
}

// NewReservationRepo constructs a ReservationRepo backed by s.
func NewReservationRepo(s *Store) ReservationRepo {
	return &memReservationRepo{s: s}
}

func (r *memReservationRepo) Create(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = r.s.nextReservation
	r.s.nextReservation++
	r.s.reservations[res.ID] = res
	return res, nil
}

func (r *memReservationRepo) GetByID(_ context.Context, id int64) (domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return res, nil
}

func (r *memReservationRepo) ListByPassenger(_ context.Context, passengerID string) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool { return res.PassengerID == passengerID }), nil
}

func (r *memReservationRepo) ListByTrip(_ context.Context, tripID int64) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool { return res.TripID == tripID }), nil
}

func (r *memReservationRepo) Update(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[res.ID]; !ok {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.reservations[res.ID] = res
	return res, nil
}

func (r *memReservationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return fmt.Errorf("repo.ReservationRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.reservations, id)
	return nil
}

func (r *memReservationRepo) filter(keep func(domain.Reservation) bool) []domain.Reservation {
	r.s.mu.RLock()
	out := []domain.Reservation{}
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, res)
		}
	}
	r.s.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.Reservation) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
