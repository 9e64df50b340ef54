package domain

import "time"

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a booking of seats on a trip by a passenger.
// A reservation always belongs to exactly one trip.
type Reservation struct {
	ID            int64             `json:"id"`
	TripID        int64             `json:"trip"`
	Passenger     string            `json:"passenger"`
	PassengerID   string            `json:"passenger_id,omitempty"`
	SeatsReserved int               `json:"seats_reserved"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ReservationDraft is the body of a new booking request.
type ReservationDraft struct {
	TripID        int64 `json:"trip"`
	SeatsReserved int   `json:"seats_reserved"`
}

// ReservationPatch is a partial update; nil fields are left untouched.
type ReservationPatch struct {
	SeatsReserved *int               `json:"seats_reserved,omitempty"`
	Status        *ReservationStatus `json:"status,omitempty"`
}
