package community

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ecotrajet/carpool/fixtures"
	"github.com/ecotrajet/carpool/internal/domain"
)

// MemorySource is client-local demo state: nothing leaves the process and
// everything is lost on exit. It mirrors the Model's moves so a later Load
// returns what the user did during the session.
type MemorySource struct {
	mu        sync.Mutex
	joined    []domain.Community
	available []domain.Community
}

// NewMemorySource returns a source seeded with the given collections.
func NewMemorySource(joined, available []domain.Community) *MemorySource {
	return &MemorySource{
		joined:    cloneAll(joined),
		available: cloneAll(available),
	}
}

// NewFixtureSource returns a MemorySource seeded from the embedded fixtures.
func NewFixtureSource() (*MemorySource, error) {
	joined, available, err := fixtures.Communities()
	if err != nil {
		return nil, fmt.Errorf("community.NewFixtureSource: %w", err)
	}
	return NewMemorySource(joined, available), nil
}

// Load returns copies of both collections.
func (s *MemorySource) Load(_ context.Context) ([]domain.Community, []domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.joined), cloneAll(s.available), nil
}

// Join moves c into the joined collection.
func (s *MemorySource) Join(_ context.Context, c domain.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = slices.DeleteFunc(s.available, func(x domain.Community) bool { return x.ID == c.ID })
	s.joined = append(s.joined, c.Clone())
	return nil
}

// Leave moves c back into the available collection without membership details.
func (s *MemorySource) Leave(_ context.Context, c domain.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = slices.DeleteFunc(s.joined, func(x domain.Community) bool { return x.ID == c.ID })
	s.available = append(s.available, c.Base())
	return nil
}

// Create stores c as joined and returns it unchanged.
func (s *MemorySource) Create(_ context.Context, c domain.Community, _ domain.CommunityDraft) (domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = append(s.joined, c.Clone())
	return c.Clone(), nil
}

func cloneAll(in []domain.Community) []domain.Community {
	out := make([]domain.Community, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
