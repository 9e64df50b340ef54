package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ecotrajet/carpool/internal/domain"
)

// tripList accepts either the paginated envelope or a bare array.
type tripList []domain.Trip

func (l *tripList) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		return json.Unmarshal(t, (*[]domain.Trip)(l))
	}
	var page domain.Page[domain.Trip]
	if err := json.Unmarshal(b, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}

// ListTrips handles GET /trips/. Empty filters are not sent.
func (c *Client) ListTrips(ctx context.Context, f domain.TripFilters) ([]domain.Trip, error) {
	var out tripList
	if err := c.do(ctx, http.MethodGet, "/trips/", filterQuery(f), nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ListTrips: %w", err)
	}
	if out == nil {
		return []domain.Trip{}, nil
	}
	return out, nil
}

// GetTrip handles GET /trips/{id}/.
func (c *Client) GetTrip(ctx context.Context, id int64) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/", id), nil, nil, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("apiclient.GetTrip: %w", err)
	}
	return out, nil
}

// CreateTrip handles POST /trips/.
func (c *Client) CreateTrip(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodPost, "/trips/", nil, draft, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("apiclient.CreateTrip: %w", err)
	}
	return out, nil
}

// UpdateTrip handles PATCH /trips/{id}/.
func (c *Client) UpdateTrip(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/trips/%d/", id), nil, patch, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("apiclient.UpdateTrip: %w", err)
	}
	return out, nil
}

// CancelTrip handles DELETE /trips/{id}/. The server soft-cancels the trip.
func (c *Client) CancelTrip(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/trips/%d/", id), nil, nil, nil); err != nil {
		return fmt.Errorf("apiclient.CancelTrip: %w", err)
	}
	return nil
}

// ListTripReservations handles GET /trips/{id}/reservations/.
func (c *Client) ListTripReservations(ctx context.Context, tripID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/reservations/", tripID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ListTripReservations: %w", err)
	}
	if out == nil {
		return []domain.Reservation{}, nil
	}
	return out, nil
}

func filterQuery(f domain.TripFilters) url.Values {
	q := url.Values{}
	if f.Origin != "" {
		q.Set("origin", f.Origin)
	}
	if f.Destination != "" {
		q.Set("destination", f.Destination)
	}
	if f.DepartureDate != nil {
		q.Set("departure_time", f.DepartureDate.Format(domain.DateLayout))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	return q
}
