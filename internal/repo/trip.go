package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ecotrajet/carpool/internal/domain"
)

// TripRepo defines the storage operations for Trips.
// The service layer depends on this interface, not the in-memory
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create stores a new trip and returns it with its assigned id.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Trip, error)

	// ListPaged returns one page of the trips matching f, ordered by
	// departure time, and the total number of matches.
	ListPaged(ctx context.Context, f domain.TripFilters, p domain.PaginationParams) ([]domain.Trip, int, error)

	// Update overwrites an existing trip and returns the stored record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

type memTripRepo struct {
	s *Store
}

// NewTripRepo constructs a TripRepo backed by s.
func NewTripRepo(s *Store) TripRepo {
	return &memTripRepo{s: s}
}

func (r *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip.ID = r.s.nextTrip
	r.s.nextTrip++
	r.s.trips[trip.ID] = trip
	return trip, nil
}

func (r *memTripRepo) GetByID(_ context.Context, id int64) (domain.Trip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (r *memTripRepo) ListPaged(_ context.Context, f domain.TripFilters, p domain.PaginationParams) ([]domain.Trip, int, error) {
	r.s.mu.RLock()
	matches := make([]domain.Trip, 0, len(r.s.trips))
	for _, t := range r.s.trips {
		if matchTrip(t, f) {
			matches = append(matches, t)
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b domain.Trip) int {
		if c := a.DepartureTime.Compare(b.DepartureTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	start, end := p.Window(len(matches))
	return matches[start:end], len(matches), nil
}

func (r *memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[trip.ID]; !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.trips[trip.ID] = trip
	return trip, nil
}

// matchTrip applies the listing filters: case-insensitive substring on the
// places, same calendar day on the departure date, exact status.
func matchTrip(t domain.Trip, f domain.TripFilters) bool {
	if f.Origin != "" && !containsFold(t.Origin, f.Origin) {
		return false
	}
	if f.Destination != "" && !containsFold(t.Destination, f.Destination) {
		return false
	}
	if f.DepartureDate != nil {
		dep := t.DepartureTime.In(f.DepartureDate.Location())
		if dep.Format(domain.DateLayout) != f.DepartureDate.Format(domain.DateLayout) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
