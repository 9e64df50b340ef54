package service

import (
	"context"
	"fmt"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/repo"
)

// ExportService assembles a flat export of trips and their reservations.
type ExportService struct {
	trips        repo.TripRepo
	reservations repo.ReservationRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, reservations repo.ReservationRepo) *ExportService {
	return &ExportService{trips: trips, reservations: reservations}
}

// exportLimit is the page size used to walk every trip.
const exportLimit = 100

// Export returns one ExportRow per reservation across all trips matching f,
// in departure order. Trips with no reservations contribute one row with
// empty reservation fields.
func (s *ExportService) Export(ctx context.Context, f domain.TripFilters) ([]domain.ExportRow, error) {
	var rows []domain.ExportRow
	limit := exportLimit
	for page := 1; ; page++ {
		p := domain.NewPaginationParams(&page, &limit)
		trips, total, err := s.trips.ListPaged(ctx, f, p)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: list trips: %w", err)
		}
		for _, t := range trips {
			res, err := s.reservations.ListByTrip(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: reservations of trip %d: %w", t.ID, err)
			}
			rows = append(rows, exportRows(t, res)...)
		}
		if p.Offset()+len(trips) >= total || len(trips) == 0 {
			break
		}
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	return rows, nil
}

func exportRows(t domain.Trip, reservations []domain.Reservation) []domain.ExportRow {
	base := domain.ExportRow{
		TripID:         t.ID,
		TripDate:       t.DepartureTime.Format(domain.DateLayout),
		Origin:         t.Origin,
		Destination:    t.Destination,
		DepartureTime:  t.DepartureTime,
		Driver:         t.Driver.Name,
		Price:          t.Price.StringFixed(2),
		TotalSeats:     t.TotalSeats,
		AvailableSeats: t.AvailableSeats,
		TripStatus:     t.Status,
	}
	if len(reservations) == 0 {
		return []domain.ExportRow{base}
	}
	out := make([]domain.ExportRow, 0, len(reservations))
	for _, r := range reservations {
		row := base
		row.ReservationID = r.ID
		row.Passenger = r.Passenger
		row.SeatsReserved = r.SeatsReserved
		row.ReservationStatus = r.Status
		out = append(out, row)
	}
	return out
}
