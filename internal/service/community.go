package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
)

// CommunityService implements community membership rules.
type CommunityService struct {
	repo repo.CommunityRepo
	now  func() time.Time
}

// NewCommunityService constructs a CommunityService. A nil now defaults to
// time.Now.
func NewCommunityService(r repo.CommunityRepo, now func() time.Time) *CommunityService {
	if now == nil {
		now = time.Now
	}
	return &CommunityService{repo: r, now: now}
}

// List returns every community.
func (s *CommunityService) List(ctx context.Context) ([]domain.CommunityRecord, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CommunityService.List: %w", err)
	}
	return out, nil
}

// Create validates in and stores a new community administered by user, who
// becomes its first accepted member.
func (s *CommunityService) Create(ctx context.Context, user domain.User, in domain.CommunityInput) (domain.CommunityRecord, error) {
	rec := domain.CommunityRecord{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		ZoneGeo:     strings.TrimSpace(in.ZoneGeo),
		IsPrivate:   in.IsPrivate,
		Admin:       userKey(user),
		CreatedAt:   s.now().UTC(),
	}
	if rec.Name == "" {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.Create: %w: name is required", domain.ErrValidation)
	}
	if theme := strings.TrimSpace(in.Theme); theme != "" {
		t, err := domain.ParseCommunityType(theme)
		if err != nil {
			return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.Create: %w", err)
		}
		rec.Theme = string(t)
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.Create: %w", err)
	}
	err = s.repo.AddMember(ctx, created.ID, domain.CommunityMember{
		UserID:   userKey(user),
		Username: passengerName(user),
		Status:   domain.MembershipAccepted,
		IsAdmin:  true,
		JoinedAt: rec.CreatedAt,
	})
	if err != nil {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.Create: %w", err)
	}
	created.MemberCount = 1
	return created, nil
}

// Join adds user to the community with id. Private communities record the
// request as pending. Returns domain.ErrConflict if user already has a
// membership there.
func (s *CommunityService) Join(ctx context.Context, user domain.User, id int64) (domain.CommunityRecord, domain.MembershipStatus, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.CommunityRecord{}, "", fmt.Errorf("service.CommunityService.Join: %w", err)
	}
	status := domain.MembershipAccepted
	if c.IsPrivate {
		status = domain.MembershipPending
	}
	err = s.repo.AddMember(ctx, id, domain.CommunityMember{
		UserID:   userKey(user),
		Username: passengerName(user),
		Status:   status,
		JoinedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.CommunityRecord{}, "", fmt.Errorf("service.CommunityService.Join: %w", err)
	}
	return c, status, nil
}

// RemoveMember removes userID from the community with id. The admin may
// remove anyone; other users may only remove themselves.
func (s *CommunityService) RemoveMember(ctx context.Context, user domain.User, id int64, userID string) (domain.CommunityRecord, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.RemoveMember: %w", err)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.RemoveMember: %w: user_id is required", domain.ErrValidation)
	}
	caller := userKey(user)
	if c.Admin != caller && userID != caller {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.RemoveMember: %w: you are not the admin of this community", domain.ErrForbidden)
	}
	if err := s.repo.RemoveMember(ctx, id, userID); err != nil {
		return domain.CommunityRecord{}, fmt.Errorf("service.CommunityService.RemoveMember: %w", err)
	}
	return c, nil
}

// Members returns the accepted members of the community with id.
func (s *CommunityService) Members(ctx context.Context, id int64) ([]domain.CommunityMember, error) {
	all, err := s.repo.Members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.CommunityService.Members: %w", err)
	}
	out := make([]domain.CommunityMember, 0, len(all))
	for _, m := range all {
		if m.Status == domain.MembershipAccepted {
			out = append(out, m)
		}
	}
	return out, nil
}
