package domain

import "time"

// MembershipStatus is the state of a user's membership in a community
// record held by the API. Private communities accept members as pending.
type MembershipStatus string

const (
	MembershipAccepted MembershipStatus = "ACCEPTED"
	MembershipPending  MembershipStatus = "PENDING"
)

// CommunityRecord is a community as the API stores and serializes it.
// It is the server-side counterpart of Community, which only exists in the
// client model.
type CommunityRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ZoneGeo     string    `json:"zone_geo"`
	Theme       string    `json:"theme"`
	IsPrivate   bool      `json:"is_private"`
	Admin       string    `json:"admin"`
	CreatedAt   time.Time `json:"date_creation"`
	MemberCount int       `json:"member_count"`
	ActiveTrips int       `json:"active_trips"`
}

// CommunityMember is one user's membership in a CommunityRecord.
type CommunityMember struct {
	UserID   string
	Username string
	Status   MembershipStatus
	IsAdmin  bool
	JoinedAt time.Time
}

// CommunityInput is the body of a create-community request.
type CommunityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ZoneGeo     string `json:"zone_geo"`
	Theme       string `json:"theme"`
	IsPrivate   bool   `json:"is_private"`
}
