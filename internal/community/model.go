// Package community holds the community membership model: two disjoint
// collections (joined and available) plus the detail-view selection.
//
// Every operation is total. It either applies a transition or returns an
// error and leaves state untouched. Mutations are optimistic: the local move
// is visible immediately and is reverted if the Source rejects it.
package community

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrajet/carpool/internal/domain"
)

// DefaultLocation is the location shown on communities joined from the
// catalogue, which carries no location of its own.
const DefaultLocation = "Paris, Île-de-France"

const maxAvatars = 3

// Tab is a section of the community detail view.
type Tab string

const (
	TabOverview Tab = "overview"
	TabMembers  Tab = "members"
	TabTrips    Tab = "trips"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabOverview, TabMembers, TabTrips:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown tab %q", domain.ErrValidation, s)
}

// State is a snapshot of the model. Slices and records are copies.
type State struct {
	Joined    []domain.Community
	Available []domain.Community
	// Selected is the community shown in the detail view, or nil.
	Selected *domain.Community
	Tab      Tab
}

// Model is the community membership state container. It is safe for
// concurrent use; the lock is never held across Source calls.
type Model struct {
	src   Source
	user  domain.User
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	joined    []domain.Community
	available []domain.Community
	selected  string
	tab       Tab
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for no-op warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithClock overrides time.Now, for deterministic membership dates.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithIDGenerator overrides the generator of ids for created communities.
func WithIDGenerator(f func() string) Option {
	return func(m *Model) { m.newID = f }
}

// NewModel returns an empty model acting for user. Call Load to ingest the
// source's collections.
func NewModel(src Source, user domain.User, opts ...Option) *Model {
	m := &Model{
		src:   src,
		user:  user,
		log:   slog.Default(),
		now:   time.Now,
		newID: uuid.NewString,
		tab:   TabOverview,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces both collections with the source's. Duplicate ids are
// dropped (first one wins, joined before available) so the collections stay
// disjoint. A selection that no longer resolves is cleared.
func (m *Model) Load(ctx context.Context) error {
	joined, available, err := m.src.Load(ctx)
	if err != nil {
		return fmt.Errorf("community.Model.Load: %w", err)
	}

	seen := make(map[string]bool, len(joined)+len(available))
	keep := func(in []domain.Community, isJoined bool) []domain.Community {
		out := make([]domain.Community, 0, len(in))
		for _, c := range in {
			if seen[c.ID] {
				m.log.WarnContext(ctx, "dropping duplicate community", "id", c.ID, "title", c.Title)
				continue
			}
			seen[c.ID] = true
			if isJoined && c.Membership == nil {
				c.Membership = m.joinedMembership(c)
			}
			if !isJoined {
				c = c.Base()
			}
			out = append(out, c.Clone())
		}
		return out
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.joined = keep(joined, true)
	m.available = keep(available, false)
	if m.selected != "" && !seen[m.selected] {
		m.selected = ""
	}
	return nil
}

// Join moves the community with id from available to joined, synthesizing
// the membership details. An id not in available is a no-op that returns
// domain.ErrNotFoundLocal.
func (m *Model) Join(ctx context.Context, id string) (domain.Community, error) {
	m.mu.Lock()
	idx := indexOf(m.available, id)
	if idx < 0 {
		m.mu.Unlock()
		m.log.WarnContext(ctx, "join ignored: community not available", "id", id)
		return domain.Community{}, fmt.Errorf("community.Model.Join: %w: %s", domain.ErrNotFoundLocal, id)
	}
	base := m.available[idx]
	rec := base.Clone()
	rec.Membership = m.joinedMembership(base)
	m.available = slices.Delete(m.available, idx, idx+1)
	m.joined = append(m.joined, rec)
	m.mu.Unlock()

	if err := m.src.Join(ctx, rec.Clone()); err != nil {
		m.mu.Lock()
		if j := indexOf(m.joined, id); j >= 0 {
			m.joined = slices.Delete(m.joined, j, j+1)
			m.available = slices.Insert(m.available, min(idx, len(m.available)), base)
		}
		m.mu.Unlock()
		return domain.Community{}, fmt.Errorf("community.Model.Join: %w", err)
	}
	return rec.Clone(), nil
}

// Leave moves the community with id from joined back to available,
// discarding its membership details. If it is selected, the detail view is
// closed. An id not in joined is a no-op returning domain.ErrNotFoundLocal.
func (m *Model) Leave(ctx context.Context, id string) (domain.Community, error) {
	m.mu.Lock()
	idx := indexOf(m.joined, id)
	if idx < 0 {
		m.mu.Unlock()
		m.log.WarnContext(ctx, "leave ignored: community not joined", "id", id)
		return domain.Community{}, fmt.Errorf("community.Model.Leave: %w: %s", domain.ErrNotFoundLocal, id)
	}
	rec := m.joined[idx]
	base := rec.Base()
	m.joined = slices.Delete(m.joined, idx, idx+1)
	m.available = append(m.available, base)
	wasSelected := m.selected == id
	if wasSelected {
		m.selected = ""
	}
	m.mu.Unlock()

	if err := m.src.Leave(ctx, rec.Clone()); err != nil {
		m.mu.Lock()
		if a := indexOf(m.available, id); a >= 0 {
			m.available = slices.Delete(m.available, a, a+1)
			m.joined = slices.Insert(m.joined, min(idx, len(m.joined)), rec)
			if wasSelected && m.selected == "" {
				m.selected = id
			}
		}
		m.mu.Unlock()
		return domain.Community{}, fmt.Errorf("community.Model.Leave: %w", err)
	}
	return base.Clone(), nil
}

// Create validates draft and inserts a new community into joined with the
// current user as its single member. An invalid draft returns
// domain.ErrValidation and changes nothing.
func (m *Model) Create(ctx context.Context, draft domain.CommunityDraft) (domain.Community, error) {
	if err := draft.Validate(); err != nil {
		return domain.Community{}, fmt.Errorf("community.Model.Create: %w", err)
	}

	m.mu.Lock()
	id := m.newID()
	for m.exists(id) {
		id = m.newID()
	}
	rec := domain.Community{
		ID:          id,
		Title:       strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Members:     1,
		ActiveTrips: 0,
		Type:        draft.Type,
		Icon:        draft.Type.Icon(),
		Color:       draft.Type.Color(),
		Membership: &domain.Membership{
			Avatars:           []domain.Avatar{m.userAvatar()},
			AdditionalMembers: 0,
			Location:          strings.TrimSpace(draft.Location),
			CreatedAt:         m.now(),
			MembersList:       []domain.Member{m.userMember()},
			TripsList:         []domain.TripSummary{},
		},
	}
	m.joined = append(m.joined, rec)
	m.mu.Unlock()

	created, err := m.src.Create(ctx, rec.Clone(), draft)
	if err != nil {
		m.mu.Lock()
		m.dropLocked(id)
		m.mu.Unlock()
		return domain.Community{}, fmt.Errorf("community.Model.Create: %w", err)
	}
	if created.Membership == nil {
		created.Membership = rec.Clone().Membership
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if created.ID == "" || (created.ID != id && m.exists(created.ID)) {
		m.log.WarnContext(ctx, "source returned unusable community id, keeping local id",
			"local_id", id, "source_id", created.ID)
		created.ID = id
	}
	if m.selected == id {
		m.selected = created.ID
	}
	if j := indexOf(m.joined, id); j >= 0 {
		m.joined[j] = created
		return created.Clone(), nil
	}
	// Left before the source answered: the record sits in available and
	// still needs the source's id.
	if a := indexOf(m.available, id); a >= 0 {
		m.available[a].ID = created.ID
	}
	return created.Base(), nil
}

// dropLocked removes id from whichever collection holds it and closes the
// detail view if it was selected.
func (m *Model) dropLocked(id string) {
	if j := indexOf(m.joined, id); j >= 0 {
		m.joined = slices.Delete(m.joined, j, j+1)
	}
	if a := indexOf(m.available, id); a >= 0 {
		m.available = slices.Delete(m.available, a, a+1)
	}
	if m.selected == id {
		m.selected = ""
	}
}

// View selects the community with id for the detail view and resets the tab
// to overview. Joined and available communities can both be viewed.
func (m *Model) View(id string) (domain.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.find(id)
	if !ok {
		m.log.Warn("view ignored: unknown community", "id", id)
		return domain.Community{}, fmt.Errorf("community.Model.View: %w: %s", domain.ErrNotFoundLocal, id)
	}
	m.selected = id
	m.tab = TabOverview
	return c.Clone(), nil
}

// Close clears the detail-view selection.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = ""
}

// SetTab switches the detail view tab. Only joined communities have
// member and trip data; for available ones those tabs render empty.
func (m *Model) SetTab(t Tab) error {
	if _, err := ParseTab(string(t)); err != nil {
		return fmt.Errorf("community.Model.SetTab: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tab = t
	return nil
}

// State returns a snapshot of the model.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := State{
		Joined:    cloneAll(m.joined),
		Available: cloneAll(m.available),
		Tab:       m.tab,
	}
	if c, ok := m.find(m.selected); ok && m.selected != "" {
		c = c.Clone()
		s.Selected = &c
	}
	return s
}

// Lookup returns the community with id from either collection.
func (m *Model) Lookup(id string) (domain.Community, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.find(id)
	return c.Clone(), ok
}

func (m *Model) find(id string) (domain.Community, bool) {
	if i := indexOf(m.joined, id); i >= 0 {
		return m.joined[i], true
	}
	if i := indexOf(m.available, id); i >= 0 {
		return m.available[i], true
	}
	return domain.Community{}, false
}

func (m *Model) exists(id string) bool {
	return indexOf(m.joined, id) >= 0 || indexOf(m.available, id) >= 0
}

// joinedMembership synthesizes the details shown once the current user has
// joined c from the catalogue.
func (m *Model) joinedMembership(c domain.Community) *domain.Membership {
	return &domain.Membership{
		Avatars:           []domain.Avatar{m.userAvatar()},
		AdditionalMembers: max(c.Members-1, 0),
		Location:          DefaultLocation,
		CreatedAt:         m.now(),
		MembersList:       []domain.Member{m.userMember()},
		TripsList:         []domain.TripSummary{},
	}
}

func (m *Model) userAvatar() domain.Avatar {
	return domain.Avatar{ID: m.user.ID, Name: m.user.Initials()}
}

func (m *Model) userMember() domain.Member {
	username := m.user.Username
	if username != "" && !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return domain.Member{
		ID:       m.user.ID,
		Name:     m.user.DisplayName(),
		Username: username,
		Avatar:   m.user.Initials(),
	}
}

func indexOf(list []domain.Community, id string) int {
	return slices.IndexFunc(list, func(c domain.Community) bool { return c.ID == id })
}
