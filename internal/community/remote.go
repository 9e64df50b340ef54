package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecotrajet/carpool/internal/apiclient"
	"github.com/ecotrajet/carpool/internal/domain"
)

// RemoteClient is the subset of *apiclient.Client the remote source needs.
type RemoteClient interface {
	ListCommunities(ctx context.Context) ([]apiclient.RemoteCommunity, error)
	CreateCommunity(ctx context.Context, body apiclient.NewCommunity) (apiclient.RemoteCommunity, error)
	JoinCommunity(ctx context.Context, id string) error
	LeaveCommunity(ctx context.Context, id, userID string) error
	ListCommunityMembers(ctx context.Context, id string) ([]apiclient.RemoteMember, error)
}

var _ RemoteClient = (*apiclient.Client)(nil)

// RemoteSource keeps community membership on the API server. Membership of
// the current user is derived from each community's member list.
type RemoteSource struct {
	client RemoteClient
	user   domain.User
}

// NewRemoteSource returns a source acting on behalf of user.
func NewRemoteSource(client RemoteClient, user domain.User) *RemoteSource {
	return &RemoteSource{client: client, user: user}
}

// Load lists every community and splits them by whether the current user
// appears among the members. An anonymous user has joined nothing, so the
// member lists are not fetched.
func (s *RemoteSource) Load(ctx context.Context) ([]domain.Community, []domain.Community, error) {
	remote, err := s.client.ListCommunities(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("community.RemoteSource.Load: %w", err)
	}

	joined := []domain.Community{}
	available := []domain.Community{}
	for _, rc := range remote {
		c := fromRemote(rc)
		if s.user.Anonymous() {
			available = append(available, c)
			continue
		}
		members, err := s.client.ListCommunityMembers(ctx, c.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("community.RemoteSource.Load: members of %s: %w", c.ID, err)
		}
		if !s.isMember(members) {
			available = append(available, c)
			continue
		}
		c.Membership = membershipFromRemote(rc, members)
		joined = append(joined, c)
	}
	return joined, available, nil
}

// Join adds the current user to c.
func (s *RemoteSource) Join(ctx context.Context, c domain.Community) error {
	if err := s.client.JoinCommunity(ctx, c.ID); err != nil {
		return fmt.Errorf("community.RemoteSource.Join: %w", err)
	}
	return nil
}

// Leave removes the current user from c.
func (s *RemoteSource) Leave(ctx context.Context, c domain.Community) error {
	if err := s.client.LeaveCommunity(ctx, c.ID, s.user.ID); err != nil {
		return fmt.Errorf("community.RemoteSource.Leave: %w", err)
	}
	return nil
}

// Create publishes draft and returns the server's record. The local
// membership details are kept since the creator is the only member.
func (s *RemoteSource) Create(ctx context.Context, c domain.Community, draft domain.CommunityDraft) (domain.Community, error) {
	rc, err := s.client.CreateCommunity(ctx, apiclient.NewCommunity{
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		ZoneGeo:     strings.TrimSpace(draft.Location),
		Theme:       string(draft.Type),
	})
	if err != nil {
		return domain.Community{}, fmt.Errorf("community.RemoteSource.Create: %w", err)
	}
	created := fromRemote(rc)
	if created.Members == 0 {
		created.Members = 1
	}
	created.Membership = c.Clone().Membership
	if created.Membership != nil && !rc.CreatedAt.IsZero() {
		created.Membership.CreatedAt = rc.CreatedAt
	}
	return created, nil
}

func (s *RemoteSource) isMember(members []apiclient.RemoteMember) bool {
	for _, m := range members {
		if s.user.ID != "" && string(m.ID) == s.user.ID {
			return true
		}
		if s.user.Username != "" && strings.EqualFold(m.Username, s.user.Username) {
			return true
		}
	}
	return false
}

func fromRemote(rc apiclient.RemoteCommunity) domain.Community {
	t, err := domain.ParseCommunityType(rc.Theme)
	if err != nil {
		t = ""
	}
	return domain.Community{
		ID:          string(rc.ID),
		Title:       rc.Name,
		Description: rc.Description,
		Members:     rc.MemberCount,
		ActiveTrips: rc.ActiveTrips,
		Type:        t,
		Icon:        t.Icon(),
		Color:       t.Color(),
	}
}

func membershipFromRemote(rc apiclient.RemoteCommunity, members []apiclient.RemoteMember) *domain.Membership {
	m := &domain.Membership{
		Location:    rc.ZoneGeo,
		CreatedAt:   rc.CreatedAt,
		MembersList: make([]domain.Member, 0, len(members)),
		TripsList:   []domain.TripSummary{},
	}
	for i, rm := range members {
		u := domain.User{ID: string(rm.ID), Username: rm.Username}
		m.MembersList = append(m.MembersList, domain.Member{
			ID:       u.ID,
			Name:     u.DisplayName(),
			Username: "@" + rm.Username,
			Avatar:   u.Initials(),
		})
		if i < maxAvatars {
			m.Avatars = append(m.Avatars, domain.Avatar{ID: u.ID, Name: u.Initials()})
		}
	}
	total := max(rc.MemberCount, len(members))
	m.AdditionalMembers = max(total-len(m.Avatars), 0)
	return m
}
