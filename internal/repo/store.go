// Package repo contains the storage layer of the fixture API.
// Each resource has its own file with an interface and an in-memory
// implementation over a shared Store. No business logic lives here, only
// lookups, filtering and copying.
package repo

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/ecotrajet/carpool/fixtures"
	"github.com/ecotrajet/carpool/internal/domain"
)

// Store is the in-memory backing of every repo. State lives for the life of
// the process; nothing is written to disk.
type Store struct {
	mu sync.RWMutex

	trips        map[int64]domain.Trip
	reservations map[int64]domain.Reservation
	communities  map[int64]domain.CommunityRecord
	// members is keyed by community id, in join order.
	members map[int64][]domain.CommunityMember

	nextTrip        int64
	nextReservation int64
	nextCommunity   int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		trips:           map[int64]domain.Trip{},
		reservations:    map[int64]domain.Reservation{},
		communities:     map[int64]domain.CommunityRecord{},
		members:         map[int64][]domain.CommunityMember{},
		nextTrip:        1,
		nextReservation: 1,
		nextCommunity:   1,
	}
}

// NewSeededStore returns a store holding the embedded fixture trips and
// communities. Members of joined fixture communities are seeded as accepted.
func NewSeededStore() (*Store, error) {
	s := NewStore()

	trips, err := fixtures.Trips()
	if err != nil {
		return nil, fmt.Errorf("repo.NewSeededStore: %w", err)
	}
	for _, t := range trips {
		s.trips[t.ID] = t
		s.nextTrip = max(s.nextTrip, t.ID+1)
	}

	joined, available, err := fixtures.Communities()
	if err != nil {
		return nil, fmt.Errorf("repo.NewSeededStore: %w", err)
	}
	for _, c := range append(joined, available...) {
		id, err := strconv.ParseInt(c.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("repo.NewSeededStore: community id %q: %w", c.ID, err)
		}
		rec := domain.CommunityRecord{
			ID:          id,
			Name:        c.Title,
			Description: c.Description,
			Theme:       string(c.Type),
			ActiveTrips: c.ActiveTrips,
		}
		if c.Membership != nil {
			rec.ZoneGeo = c.Membership.Location
			rec.CreatedAt = c.Membership.CreatedAt
			for i, m := range c.Membership.MembersList {
				s.members[id] = append(s.members[id], domain.CommunityMember{
					UserID:   m.ID,
					Username: trimAt(m.Username),
					Status:   domain.MembershipAccepted,
					IsAdmin:  i == 0,
					JoinedAt: rec.CreatedAt,
				})
			}
			if len(c.Membership.MembersList) > 0 {
				rec.Admin = c.Membership.MembersList[0].ID
			}
		}
		s.communities[id] = rec
		s.nextCommunity = max(s.nextCommunity, id+1)
	}
	return s, nil
}

func trimAt(username string) string {
	if len(username) > 0 && username[0] == '@' {
		return username[1:]
	}
	return username
}
