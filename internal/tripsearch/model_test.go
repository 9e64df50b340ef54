package tripsearch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/tripsearch"
)

// ---- mock ------------------------------------------------------------------

// mockLister records every call and delegates to list.
type mockLister struct {
	mu    sync.Mutex
	calls []domain.TripFilters
	list  func(ctx context.Context, f domain.TripFilters) ([]domain.Trip, error)
}

func (m *mockLister) ListTrips(ctx context.Context, f domain.TripFilters) ([]domain.Trip, error) {
	m.mu.Lock()
	m.calls = append(m.calls, f)
	m.mu.Unlock()
	return m.list(ctx, f)
}

func (m *mockLister) Calls() []domain.TripFilters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TripFilters(nil), m.calls...)
}

var _ tripsearch.TripLister = (*mockLister)(nil)

// ---- helpers ---------------------------------------------------------------

func trips(ids ...int64) []domain.Trip {
	out := make([]domain.Trip, len(ids))
	for i, id := range ids {
		out[i] = domain.Trip{ID: id, Origin: "Paris", Destination: "Lyon", Status: domain.TripScheduled}
	}
	return out
}

func tripIDs(list []domain.Trip) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func newModel(l tripsearch.TripLister) *tripsearch.Model {
	return tripsearch.NewModel(l, tripsearch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// gate is a lister that blocks every call until released, or until the
// request context is cancelled.
type gate struct {
	started chan domain.TripFilters
	release chan result
}

type result struct {
	trips []domain.Trip
	err   error
}

func newGate() *gate {
	return &gate{started: make(chan domain.TripFilters, 8), release: make(chan result, 8)}
}

func (g *gate) lister() *mockLister {
	return &mockLister{list: func(ctx context.Context, f domain.TripFilters) ([]domain.Trip, error) {
		g.started <- f
		select {
		case r := <-g.release:
			return r.trips, r.err
		case <-ctx.Done():
			return nil, &domain.FetchError{Message: "request cancelled", Err: ctx.Err()}
		}
	}}
}

func waitStarted(t *testing.T, g *gate) domain.TripFilters {
	t.Helper()
	select {
	case f := <-g.started:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("search never reached the lister")
		return domain.TripFilters{}
	}
}

// ---- Load / Search ---------------------------------------------------------

func TestModel_Load_YieldsTripsInOrderWithLoadingFlag(t *testing.T) {
	g := newGate()
	m := newModel(g.lister())

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()

	f := waitStarted(t, g)
	assert.Equal(t, domain.TripFilters{Status: domain.TripScheduled}, f)

	s := m.State()
	assert.True(t, s.Loading)
	assert.False(t, s.Loaded)
	assert.Nil(t, s.VisibleTrips())

	g.release <- result{trips: trips(3, 1, 2)}
	require.NoError(t, <-done)

	s = m.State()
	assert.False(t, s.Loading)
	assert.True(t, s.Loaded)
	assert.NoError(t, s.Err)
	assert.Equal(t, []int64{3, 1, 2}, tripIDs(s.VisibleTrips()))
}

func TestModel_Load_OnlyFetchesOnce(t *testing.T) {
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return trips(1), nil
	}}
	m := newModel(l)

	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.Load(context.Background()))

	assert.Len(t, l.Calls(), 1)
}

func TestModel_Search_SendsNormalizedFilters(t *testing.T) {
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return nil, nil
	}}
	m := newModel(l)
	when := time.Date(2025, 7, 14, 18, 30, 0, 0, time.UTC)

	got, err := m.Search(context.Background(), domain.SearchCriteria{
		Origin: "  Paris ", Destination: "Lyon", Date: &when,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, m.State().Trips, "nil results are stored as an empty list")
	calls := l.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Paris", calls[0].Origin)
	assert.Equal(t, "Lyon", calls[0].Destination)
	assert.Equal(t, domain.TripScheduled, calls[0].Status)
	require.NotNil(t, calls[0].DepartureDate)
	assert.Equal(t, "2025-07-14", calls[0].DepartureDate.Format(domain.DateLayout))
	assert.Equal(t, 0, calls[0].DepartureDate.Hour())
}

func TestModel_Search_ErrorKeepsPreviousResults(t *testing.T) {
	fail := false
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		if fail {
			return nil, &domain.FetchError{Status: 500, Message: "boom"}
		}
		return trips(1, 2), nil
	}}
	m := newModel(l)
	_, err := m.Search(context.Background(), domain.SearchCriteria{})
	require.NoError(t, err)

	fail = true
	_, err = m.Search(context.Background(), domain.SearchCriteria{Origin: "Lille"})

	fe, ok := domain.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, 500, fe.Status)
	s := m.State()
	assert.False(t, s.Loading)
	require.Error(t, s.Err)
	assert.Equal(t, "Lille", s.Criteria.Origin)
	assert.Equal(t, []int64{1, 2}, tripIDs(s.Trips))
}

func TestModel_Retry_ReissuesIdenticalRequest(t *testing.T) {
	attempts := 0
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		attempts++
		if attempts == 1 {
			return nil, &domain.FetchError{Status: 503, Message: "unavailable"}
		}
		return trips(9), nil
	}}
	m := newModel(l)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	criteria := domain.SearchCriteria{Origin: "Paris", Destination: "Lyon", Date: &day}

	_, err := m.Search(context.Background(), criteria)
	require.Error(t, err)
	require.Error(t, m.State().Err)

	got, err := m.Retry(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{9}, tripIDs(got))
	calls := l.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	s := m.State()
	assert.NoError(t, s.Err, "a successful retry clears the error")
	assert.True(t, s.Criteria.Equal(criteria))
}

// ---- sequencing ------------------------------------------------------------

func TestModel_Search_NewerSearchSupersedesOlder(t *testing.T) {
	g := newGate()
	m := newModel(g.lister())

	first := make(chan error, 1)
	go func() {
		_, err := m.Search(context.Background(), domain.SearchCriteria{Origin: "Paris"})
		first <- err
	}()
	waitStarted(t, g)

	second := make(chan error, 1)
	go func() {
		_, err := m.Search(context.Background(), domain.SearchCriteria{Origin: "Lyon"})
		second <- err
	}()

	// The first request is cancelled as soon as the second starts.
	assert.ErrorIs(t, <-first, tripsearch.ErrSuperseded)

	waitStarted(t, g)
	g.release <- result{trips: trips(5)}
	require.NoError(t, <-second)

	s := m.State()
	assert.Equal(t, "Lyon", s.Criteria.Origin)
	assert.Equal(t, []int64{5}, tripIDs(s.Trips))
	assert.NoError(t, s.Err, "the cancelled request must not record its error")
}

func TestModel_Search_LateResponseIsDiscarded(t *testing.T) {
	// A lister that ignores cancellation and answers after the newer search.
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})
	l := &mockLister{list: func(_ context.Context, f domain.TripFilters) ([]domain.Trip, error) {
		if f.Origin == "slow" {
			close(slowStarted)
			<-slowRelease
			return trips(1), nil
		}
		return trips(2), nil
	}}
	m := newModel(l)

	slow := make(chan error, 1)
	go func() {
		_, err := m.Search(context.Background(), domain.SearchCriteria{Origin: "slow"})
		slow <- err
	}()
	<-slowStarted

	_, err := m.Search(context.Background(), domain.SearchCriteria{Origin: "fast"})
	require.NoError(t, err)
	close(slowRelease)

	assert.ErrorIs(t, <-slow, tripsearch.ErrSuperseded)
	s := m.State()
	assert.Equal(t, []int64{2}, tripIDs(s.Trips))
	assert.Equal(t, "fast", s.Criteria.Origin)
}

// ---- Close -----------------------------------------------------------------

func TestModel_Close_CancelsInFlightAndFreezesState(t *testing.T) {
	g := newGate()
	m := newModel(g.lister())

	done := make(chan error, 1)
	go func() {
		_, err := m.Search(context.Background(), domain.SearchCriteria{})
		done <- err
	}()
	waitStarted(t, g)

	m.Close()

	assert.ErrorIs(t, <-done, tripsearch.ErrClosed)
	s := m.State()
	assert.False(t, s.Loaded)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Trips)

	_, err := m.Search(context.Background(), domain.SearchCriteria{})
	assert.ErrorIs(t, err, tripsearch.ErrClosed)
	_, err = m.Retry(context.Background())
	assert.ErrorIs(t, err, tripsearch.ErrClosed)
	m.Close()
}

// ---- Subscribe -------------------------------------------------------------

func TestModel_Subscribe_ReceivesLoadingThenResults(t *testing.T) {
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return trips(4, 7), nil
	}}
	m := newModel(l)

	var seen []tripsearch.State
	unsubscribe := m.Subscribe(func(s tripsearch.State) {
		seen = append(seen, s)
		// Reading state from a listener must not deadlock.
		_ = m.State()
	})

	require.NoError(t, m.Load(context.Background()))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.Nil(t, seen[0].VisibleTrips())
	assert.False(t, seen[1].Loading)
	assert.Equal(t, []int64{4, 7}, tripIDs(seen[1].VisibleTrips()))

	unsubscribe()
	_, err := m.Retry(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestModel_Subscribe_ReceivesErrors(t *testing.T) {
	boom := errors.New("network down")
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return nil, &domain.FetchError{Message: boom.Error(), Err: boom}
	}}
	m := newModel(l)

	var last tripsearch.State
	m.Subscribe(func(s tripsearch.State) { last = s })

	_, err := m.Search(context.Background(), domain.SearchCriteria{})

	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, last.Err, boom)
	assert.False(t, last.Loading)
}

func TestModel_Subscribe_UnsubscribeRemovesOnlyItsListener(t *testing.T) {
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return trips(1), nil
	}}
	m := newModel(l)

	var a, b, c int
	unsubA := m.Subscribe(func(tripsearch.State) { a++ })
	unsubB := m.Subscribe(func(tripsearch.State) { b++ })
	unsubA()
	m.Subscribe(func(tripsearch.State) { c++ })
	unsubA()

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, 0, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, c)

	unsubB()
	_, err := m.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b)
	assert.Equal(t, 4, c)
}

func TestModel_State_ReturnsCopies(t *testing.T) {
	l := &mockLister{list: func(context.Context, domain.TripFilters) ([]domain.Trip, error) {
		return trips(1), nil
	}}
	m := newModel(l)
	require.NoError(t, m.Load(context.Background()))

	s := m.State()
	s.Trips[0].Origin = "Marseille"

	assert.Equal(t, "Paris", m.State().Trips[0].Origin)
}
