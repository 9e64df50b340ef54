package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ExportRow is one line of GET /export/?format=json. Reservation fields are
// absent for trips nobody booked.
type ExportRow struct {
	TripID            int64                    `json:"trip_id"`
	TripDate          string                   `json:"trip_date"`
	Origin            string                   `json:"origin"`
	Destination       string                   `json:"destination"`
	DepartureTime     string                   `json:"departure_time"`
	Driver            string                   `json:"driver"`
	Price             string                   `json:"price"`
	TotalSeats        int                      `json:"total_seats"`
	AvailableSeats    int                      `json:"available_seats"`
	TripStatus        domain.TripStatus        `json:"trip_status"`
	ReservationID     *int64                   `json:"reservation_id,omitempty"`
	Passenger         *string                  `json:"passenger,omitempty"`
	SeatsReserved     *int                     `json:"seats_reserved,omitempty"`
	ReservationStatus domain.ReservationStatus `json:"reservation_status,omitempty"`
}

// ExportTrips handles GET /export/?format=json.
func (c *Client) ExportTrips(ctx context.Context, f domain.TripFilters) ([]ExportRow, error) {
	q := filterQuery(f)
	q.Set("format", "json")

	var out []ExportRow
	if err := c.do(ctx, http.MethodGet, "/export/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ExportTrips: %w", err)
	}
	if out == nil {
		return []ExportRow{}, nil
	}
	return out, nil
}

// ExportTripsCSV handles GET /export/?format=csv and copies the file to w.
// It returns the number of bytes written.
func (c *Client) ExportTripsCSV(ctx context.Context, f domain.TripFilters, w io.Writer) (int64, error) {
	q := filterQuery(f)
	q.Set("format", "csv")

	resp, err := c.send(ctx, http.MethodGet, "/export/", q, nil, "text/csv")
	if err != nil {
		return 0, fmt.Errorf("apiclient.ExportTripsCSV: %w", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("apiclient.ExportTripsCSV: %w", &domain.FetchError{
			Status: resp.StatusCode, Message: transportMessage(err), Err: err,
		})
	}
	return n, nil
}
