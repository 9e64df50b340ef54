package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ecotrajet/carpool/internal/domain"
)

// CommunityRepo defines the storage operations for community records and
// their memberships.
type CommunityRepo interface {
	// Create stores a new community and returns it with its assigned id.
	Create(ctx context.Context, c domain.CommunityRecord) (domain.CommunityRecord, error)

	// GetByID returns domain.ErrNotFound if the community does not exist.
	GetByID(ctx context.Context, id int64) (domain.CommunityRecord, error)

	// List returns every community ordered by id. MemberCount holds the
	// number of accepted members.
	List(ctx context.Context) ([]domain.CommunityRecord, error)

	// AddMember records m in community id. Returns domain.ErrConflict if the
	// user already has a membership there, domain.ErrNotFound if the
	// community does not exist.
	AddMember(ctx context.Context, id int64, m domain.CommunityMember) error

	// RemoveMember deletes userID's membership in community id. Returns
	// domain.ErrNotFound if either the community or the membership is missing.
	RemoveMember(ctx context.Context, id int64, userID string) error

	// Members returns every membership of community id in join order.
	Members(ctx context.Context, id int64) ([]domain.CommunityMember, error)
}

type memCommunityRepo struct {
	s *Store
}

// NewCommunityRepo constructs a CommunityRepo backed by s.
func NewCommunityRepo(s *Store) CommunityRepo {
	return &memCommunityRepo{s: s}
}

func (r *memCommunityRepo) Create(_ context.Context, c domain.CommunityRecord) (domain.CommunityRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextCommunity
	r.s.nextCommunity++
	r.s.communities[c.ID] = c
	return r.withCountLocked(c), nil
}

func (r *memCommunityRepo) GetByID(_ context.Context, id int64) (domain.CommunityRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.communities[id]
	if !ok {
		return domain.CommunityRecord{}, fmt.Errorf("repo.CommunityRepo.GetByID: %w", domain.ErrNotFound)
	}
	return r.withCountLocked(c), nil
}

func (r *memCommunityRepo) List(_ context.Context) ([]domain.CommunityRecord, error) {
	r.s.mu.RLock()
	out := make([]domain.CommunityRecord, 0, len(r.s.communities))
	for _, c := range r.s.communities {
		out = append(out, r.withCountLocked(c))
	}
	r.s.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.CommunityRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *memCommunityRepo) AddMember(_ context.Context, id int64, m domain.CommunityMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[id]; !ok {
		return fmt.Errorf("repo.CommunityRepo.AddMember: %w", domain.ErrNotFound)
	}
	if memberIndex(r.s.members[id], m.UserID) >= 0 {
		return fmt.Errorf("repo.CommunityRepo.AddMember: %w: user %s", domain.ErrConflict, m.UserID)
	}
	r.s.members[id] = append(r.s.members[id], m)
	return nil
}

func (r *memCommunityRepo) RemoveMember(_ context.Context, id int64, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[id]; !ok {
		return fmt.Errorf("repo.CommunityRepo.RemoveMember: %w", domain.ErrNotFound)
	}
	i := memberIndex(r.s.members[id], userID)
	if i < 0 {
		return fmt.Errorf("repo.CommunityRepo.RemoveMember: %w: user %s is not a member", domain.ErrNotFound, userID)
	}
	r.s.members[id] = slices.Delete(r.s.members[id], i, i+1)
	return nil
}

func (r *memCommunityRepo) Members(_ context.Context, id int64) ([]domain.CommunityMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.communities[id]; !ok {
		return nil, fmt.Errorf("repo.CommunityRepo.Members: %w", domain.ErrNotFound)
	}
	return slices.Clone(r.s.members[id]), nil
}

// withCountLocked fills MemberCount. Callers hold s.mu.
func (r *memCommunityRepo) withCountLocked(c domain.CommunityRecord) domain.CommunityRecord {
	n := 0
	for _, m := range r.s.members[c.ID] {
		if m.Status == domain.MembershipAccepted {
			n++
		}
	}
	c.MemberCount = n
	return c
}

func memberIndex(list []domain.CommunityMember, userID string) int {
	return slices.IndexFunc(list, func(m domain.CommunityMember) bool { return m.UserID == userID })
}
