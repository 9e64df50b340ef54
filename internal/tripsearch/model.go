// Package tripsearch holds the trip search state: the current criteria, the
// last successful results and the loading/error flags a view renders.
//
// Searches are sequenced. Starting a search cancels the one in flight, and a
// response that is no longer the latest never touches state.
package tripsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ErrSuperseded is returned by Search when a newer search started before
// this one answered. Its result was discarded.
var ErrSuperseded = errors.New("tripsearch: superseded by a newer search")

// ErrClosed is returned by operations on a closed model.
var ErrClosed = errors.New("tripsearch: model closed")

// TripLister lists trips matching the given filters.
// *apiclient.Client satisfies this interface.
type TripLister interface {
	ListTrips(ctx context.Context, f domain.TripFilters) ([]domain.Trip, error)
}

// State is a snapshot of the model.
type State struct {
	Criteria domain.SearchCriteria
	// Trips holds the results of the last successful search. A failed search
	// keeps the previous results.
	Trips   []domain.Trip
	Loading bool
	Err     error
	// Loaded is set once any search has completed.
	Loaded bool
}

// VisibleTrips is what a view should list: nothing while a search is in
// flight, so stale results are never shown next to new criteria.
func (s State) VisibleTrips() []domain.Trip {
	if s.Loading {
		return nil
	}
	return s.Trips
}

// Model is the trip search state container. It is safe for concurrent use;
// the state lock is never held across the listing call.
type Model struct {
	lister TripLister
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	cancel    context.CancelFunc
	mounted   bool
	closed    bool
	listeners []listener
	nextID    uint64
	version   uint64

	// notifyMu serializes deliveries. A state older than one already
	// delivered is dropped, so listeners only ever see newer states.
	notifyMu  sync.Mutex
	delivered uint64
}

type listener struct {
	id uint64
	fn func(State)
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// NewModel returns a model with no results that lists trips through lister.
func NewModel(lister TripLister, opts ...Option) *Model {
	m := &Model{
		lister: lister,
		log:    slog.Default(),
		state:  State{Trips: []domain.Trip{}},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn to receive every new state. Listeners run on the
// goroutine that changed the state and must not call Search, Load or Retry
// synchronously. The returned func removes the listener.
func (m *Model) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners = slices.DeleteFunc(m.listeners, func(l listener) bool { return l.id == id })
	}
}

// Load runs the initial unfiltered search. Only the first call fetches;
// later calls return nil without touching state.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.mounted {
		m.mu.Unlock()
		return nil
	}
	m.mounted = true
	m.mu.Unlock()

	_, err := m.Search(ctx, domain.SearchCriteria{})
	return err
}

// Search lists scheduled trips matching criteria. On success the results
// replace the current list; on failure the list is kept and the error is
// recorded in State.Err. A search overtaken by a newer one returns
// ErrSuperseded and leaves state to the newer search.
func (m *Model) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Trip, error) {
	criteria = criteria.Normalize()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.seq++
	seq := m.seq
	reqCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state.Criteria = criteria
	m.state.Loading = true
	m.state.Err = nil
	m.publishLocked()

	m.log.DebugContext(ctx, "trip search started",
		"seq", seq,
		"origin", criteria.Origin,
		"destination", criteria.Destination,
		"date", formatDate(criteria.Date),
	)

	trips, err := m.lister.ListTrips(reqCtx, criteria.Filters())
	cancel()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if seq != m.seq {
		m.mu.Unlock()
		m.log.DebugContext(ctx, "trip search superseded", "seq", seq)
		return nil, ErrSuperseded
	}
	m.cancel = nil
	m.state.Loading = false
	m.state.Loaded = true
	if err != nil {
		m.state.Err = err
		m.publishLocked()
		m.log.WarnContext(ctx, "trip search failed", "seq", seq, "error", err)
		return nil, fmt.Errorf("tripsearch.Model.Search: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	m.state.Trips = slices.Clone(trips)
	m.publishLocked()
	return slices.Clone(trips), nil
}

// Retry re-issues the last search with identical criteria.
func (m *Model) Retry(ctx context.Context) ([]domain.Trip, error) {
	m.mu.Lock()
	criteria := m.state.Criteria
	m.mu.Unlock()
	return m.Search(ctx, criteria)
}

// Close cancels any search in flight and detaches listeners. Responses that
// arrive afterwards never change state.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state.Loading = false
	m.listeners = nil
}

// State returns a snapshot of the model.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() State {
	s := m.state
	s.Trips = slices.Clone(m.state.Trips)
	return s
}

// publishLocked hands the current state to the listeners. It must be called
// with mu held and releases it.
func (m *Model) publishLocked() {
	m.version++
	v := m.version
	s := m.snapshotLocked()
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if v <= m.delivered {
		return
	}
	m.delivered = v
	for _, l := range listeners {
		l.fn(s)
	}
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(domain.DateLayout)
}
