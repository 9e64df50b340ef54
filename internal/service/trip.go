// Package service contains the business logic of the fixture API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. Storage details stay behind the repo interfaces.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
	now  func() time.Time
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// A nil now defaults to time.Now.
func NewTripService(r repo.TripRepo, now func() time.Time) *TripService {
	if now == nil {
		now = time.Now
	}
	return &TripService{repo: r, now: now}
}

// Create validates draft and publishes it as a scheduled trip driven by user.
// All seats start available.
func (s *TripService) Create(ctx context.Context, user domain.User, draft domain.TripDraft) (domain.Trip, error) {
	trip := domain.Trip{
		Driver:         domain.Driver{Name: user.DisplayName()},
		DriverID:       userKey(user),
		CommunityID:    draft.CommunityID,
		Origin:         strings.TrimSpace(draft.Origin),
		Destination:    strings.TrimSpace(draft.Destination),
		DepartureTime:  draft.DepartureTime,
		ArrivalTime:    draft.ArrivalTime,
		Price:          draft.Price,
		TotalSeats:     draft.TotalSeats,
		AvailableSeats: draft.TotalSeats,
		Status:         domain.TripScheduled,
		Preferences:    draft.Preferences,
		CreatedAt:      s.now().UTC(),
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if !trip.DepartureTime.After(s.now()) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: departure_time must be in the future", domain.ErrValidation)
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip.
func (s *TripService) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return t, nil
}

// ListPaged returns a page of trips matching f plus the total match count.
func (s *TripService) ListPaged(ctx context.Context, f domain.TripFilters, p domain.PaginationParams) ([]domain.Trip, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w: unknown status %q", domain.ErrValidation, f.Status)
	}
	trips, total, err := s.repo.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	return trips, total, nil
}

// Update applies patch to the trip with id. Only its driver may edit it.
func (s *TripService) Update(ctx context.Context, user domain.User, id int64, patch domain.TripPatch) (domain.Trip, error) {
	current, err := s.ownedTrip(ctx, user, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	next := patch.Apply(current)
	next.Origin = strings.TrimSpace(next.Origin)
	next.Destination = strings.TrimSpace(next.Destination)
	if err := validateTrip(next); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// Cancel soft-deletes the trip with id by marking it cancelled. Only its
// driver may cancel it; cancelling twice is a no-op.
func (s *TripService) Cancel(ctx context.Context, user domain.User, id int64) error {
	trip, err := s.ownedTrip(ctx, user, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	if trip.Status == domain.TripCancelled {
		return nil
	}
	trip.Status = domain.TripCancelled
	if _, err := s.repo.Update(ctx, trip); err != nil {
		return fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	return nil
}

func (s *TripService) ownedTrip(ctx context.Context, user domain.User, id int64) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.DriverID != "" && trip.DriverID != userKey(user) {
		return domain.Trip{}, fmt.Errorf("%w: trip %d belongs to another driver", domain.ErrForbidden, id)
	}
	return trip, nil
}

// validateTrip enforces the rules shared by create and update.
func validateTrip(t domain.Trip) error {
	switch {
	case t.Origin == "":
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	case t.Destination == "":
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	case t.DepartureTime.IsZero():
		return fmt.Errorf("%w: departure_time is required", domain.ErrValidation)
	case !t.ArrivalTime.After(t.DepartureTime):
		return fmt.Errorf("%w: arrival_time must be after departure_time", domain.ErrValidation)
	case t.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case t.TotalSeats < 1:
		return fmt.Errorf("%w: total_seats must be at least 1", domain.ErrValidation)
	case t.AvailableSeats < 0 || t.AvailableSeats > t.TotalSeats:
		return fmt.Errorf("%w: available_seats must be between 0 and total_seats", domain.ErrValidation)
	case !t.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	return nil
}

// userKey is the identifier stored as owner of trips and reservations.
func userKey(u domain.User) string {
	if u.ID != "" {
		return u.ID
	}
	return u.Username
}
