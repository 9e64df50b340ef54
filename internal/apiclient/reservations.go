package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ListReservations handles GET /reservations/ (the caller's own bookings).
func (c *Client) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ListReservations: %w", err)
	}
	if out == nil {
		return []domain.Reservation{}, nil
	}
	return out, nil
}

// CreateReservation handles POST /reservations/.
func (c *Client) CreateReservation(ctx context.Context, draft domain.ReservationDraft) (domain.Reservation, error) {
	var out domain.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations/", nil, draft, &out); err != nil {
		return domain.Reservation{}, fmt.Errorf("apiclient.CreateReservation: %w", err)
	}
	return out, nil
}

// GetReservation handles GET /reservations/{id}/.
func (c *Client) GetReservation(ctx context.Context, id int64) (domain.Reservation, error) {
	var out domain.Reservation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reservations/%d/", id), nil, nil, &out); err != nil {
		return domain.Reservation{}, fmt.Errorf("apiclient.GetReservation: %w", err)
	}
	return out, nil
}

// UpdateReservation handles PATCH /reservations/{id}/.
func (c *Client) UpdateReservation(ctx context.Context, id int64, patch domain.ReservationPatch) (domain.Reservation, error) {
	var out domain.Reservation
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/reservations/%d/", id), nil, patch, &out); err != nil {
		return domain.Reservation{}, fmt.Errorf("apiclient.UpdateReservation: %w", err)
	}
	return out, nil
}

// CancelReservation handles DELETE /reservations/{id}/.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/reservations/%d/", id), nil, nil, nil); err != nil {
		return fmt.Errorf("apiclient.CancelReservation: %w", err)
	}
	return nil
}
