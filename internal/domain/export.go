package domain

import "time"

// ExportRow is a single row in the trip export.
// It is a flat, denormalized view: one row per reservation, with trip fields
// repeated for every reservation on that trip. Trips with no reservations
// yield one row with zero values for all reservation fields.
type ExportRow struct {
	// Trip fields, repeated for every reservation on the trip.
	TripID         int64
	TripDate       string // DateLayout formatted departure date
	Origin         string
	Destination    string
	DepartureTime  time.Time
	Driver         string
	Price          string
	TotalSeats     int
	AvailableSeats int
	TripStatus     TripStatus

	// Reservation fields, zero values when the trip has no reservations.
	ReservationID     int64
	Passenger         string
	SeatsReserved     int
	ReservationStatus ReservationStatus
}
