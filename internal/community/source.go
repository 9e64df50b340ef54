package community

import (
	"context"

	"github.com/ecotrajet/carpool/internal/domain"
)

// Source is the backing store for community membership. The Model applies
// every change locally first and then reports it here; a Source error makes
// the Model roll the local change back.
//
// Two implementations exist: MemorySource keeps demo state in process, and
// RemoteSource forwards to the API's /communities/ endpoints.
type Source interface {
	// Load returns the communities the current user has joined and the ones
	// still available to them.
	Load(ctx context.Context) (joined, available []domain.Community, err error)

	// Join records that the current user joined c.
	Join(ctx context.Context, c domain.Community) error

	// Leave records that the current user left c.
	Leave(ctx context.Context, c domain.Community) error

	// Create persists a new community built from draft. c is the record the
	// Model synthesized; the returned record replaces it and may carry a
	// different, source-assigned ID.
	Create(ctx context.Context, c domain.Community, draft domain.CommunityDraft) (domain.Community, error)
}
