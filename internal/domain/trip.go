// Package domain contains the core data types shared by the carpool client,
// its state models, and the fixture API. Apart from decimal prices and uuid
// identifiers it has no external dependencies.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus is the lifecycle state of a trip as reported by the server.
type TripStatus string

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripScheduled, TripInProgress, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// ChatPreference describes how talkative a driver is during a trip.
type ChatPreference string

const (
	ChatQuiet  ChatPreference = "quiet"
	ChatOK     ChatPreference = "ok"
	ChatChatty ChatPreference = "chatty"
)

// Driver is the public summary of the user offering a trip.
type Driver struct {
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	TripCount int     `json:"trip_count"`
}

// Initials returns up to two upper-case initials for avatar rendering.
func (d Driver) Initials() string {
	return initials(d.Name)
}

// Preferences are the driver's travel rules for a trip.
type Preferences struct {
	SmokingAllowed bool           `json:"smoking_allowed"`
	MusicAllowed   bool           `json:"music_allowed"`
	Chat           ChatPreference `json:"chat"`
}

// Trip is a scheduled ride offer. Trips are created server-side and are
// read-only on the client; a changed trip is only ever observed by re-fetching.
type Trip struct {
	ID             int64           `json:"id"`
	Driver         Driver          `json:"driver"`
	DriverID       string          `json:"driver_id,omitempty"`
	CommunityID    string          `json:"community_id,omitempty"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DepartureTime  time.Time       `json:"departure_time"`
	ArrivalTime    time.Time       `json:"arrival_time"`
	Price          decimal.Decimal `json:"price"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Status         TripStatus      `json:"status"`
	Preferences    Preferences     `json:"preferences"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Full reports whether no seat is left on the trip.
func (t Trip) Full() bool {
	return t.AvailableSeats <= 0
}

// Duration is the planned travel time between departure and arrival.
func (t Trip) Duration() time.Duration {
	return t.ArrivalTime.Sub(t.DepartureTime)
}

// TripDraft carries the fields a driver supplies when publishing a trip.
type TripDraft struct {
	CommunityID   string          `json:"community_id,omitempty"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	Price         decimal.Decimal `json:"price"`
	TotalSeats    int             `json:"total_seats"`
	Preferences   Preferences     `json:"preferences"`
}

// TripPatch is a partial update; nil fields are left untouched.
type TripPatch struct {
	Origin         *string          `json:"origin,omitempty"`
	Destination    *string          `json:"destination,omitempty"`
	DepartureTime  *time.Time       `json:"departure_time,omitempty"`
	ArrivalTime    *time.Time       `json:"arrival_time,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	AvailableSeats *int             `json:"available_seats,omitempty"`
	Status         *TripStatus      `json:"status,omitempty"`
	Preferences    *Preferences     `json:"preferences,omitempty"`
}

// Apply returns a copy of t with every non-nil field of p applied.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Origin != nil {
		t.Origin = *p.Origin
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.DepartureTime != nil {
		t.DepartureTime = *p.DepartureTime
	}
	if p.ArrivalTime != nil {
		t.ArrivalTime = *p.ArrivalTime
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.AvailableSeats != nil {
		t.AvailableSeats = *p.AvailableSeats
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Preferences != nil {
		t.Preferences = *p.Preferences
	}
	return t
}
