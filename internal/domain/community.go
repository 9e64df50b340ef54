package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CommunityType is the fixed category picked when a community is created.
// Each type maps to one icon and one color.
type CommunityType string

const (
	CommunityEnterprise CommunityType = "Entreprise"
	CommunityStudents   CommunityType = "Étudiants"
	CommunityLeisure    CommunityType = "Loisirs"
	CommunityGeneral    CommunityType = "Général"
)

// CommunityTypes lists every accepted type in display order.
var CommunityTypes = []CommunityType{CommunityEnterprise, CommunityStudents, CommunityLeisure, CommunityGeneral}

type communityStyle struct {
	icon  string
	color string
}

var communityStyles = map[CommunityType]communityStyle{
	CommunityEnterprise: {icon: "building-2", color: "bg-blue-500"},
	CommunityStudents:   {icon: "graduation-cap", color: "bg-green-500"},
	CommunityLeisure:    {icon: "mountain", color: "bg-orange-500"},
	CommunityGeneral:    {icon: "users", color: "bg-purple-500"},
}

// Valid reports whether t is one of CommunityTypes.
func (t CommunityType) Valid() bool {
	_, ok := communityStyles[t]
	return ok
}

// Icon returns the icon name for t, or the enterprise icon for unknown types.
func (t CommunityType) Icon() string {
	if s, ok := communityStyles[t]; ok {
		return s.icon
	}
	return communityStyles[CommunityEnterprise].icon
}

// Color returns the background color class for t, or the enterprise color
// for unknown types.
func (t CommunityType) Color() string {
	if s, ok := communityStyles[t]; ok {
		return s.color
	}
	return communityStyles[CommunityEnterprise].color
}

// ParseCommunityType matches s against the known types, ignoring case and
// surrounding whitespace.
func ParseCommunityType(s string) (CommunityType, error) {
	s = strings.TrimSpace(s)
	for _, t := range CommunityTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown community type %q", ErrValidation, s)
}

// Community is a named group of users sharing trips.
//
// Membership is nil while the current user has not joined. It is populated
// on join and discarded on leave, so the remaining fields are the base record
// that survives a join/leave round trip.
type Community struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Members     int           `json:"members"`
	ActiveTrips int           `json:"active_trips"`
	Type        CommunityType `json:"type,omitempty"`
	Icon        string        `json:"icon"`
	Color       string        `json:"color"`
	Membership  *Membership   `json:"membership,omitempty"`
}

// Joined reports whether the record carries membership details.
func (c Community) Joined() bool {
	return c.Membership != nil
}

// Base returns c without its membership details.
func (c Community) Base() Community {
	c.Membership = nil
	return c
}

// Clone returns a deep copy of c so callers can't alias model state.
func (c Community) Clone() Community {
	if c.Membership != nil {
		m := *c.Membership
		m.Avatars = slices.Clone(m.Avatars)
		m.MembersList = slices.Clone(m.MembersList)
		m.TripsList = slices.Clone(m.TripsList)
		c.Membership = &m
	}
	return c
}

// Membership holds the details only visible to members of a community.
type Membership struct {
	Avatars           []Avatar      `json:"avatars"`
	AdditionalMembers int           `json:"additional_members"`
	Location          string        `json:"location"`
	CreatedAt         time.Time     `json:"created_at"`
	MembersList       []Member      `json:"members_list"`
	TripsList         []TripSummary `json:"trips_list"`
}

// Avatar is a single bubble in a community's member strip.
type Avatar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is one row of a community's member tab.
type Member struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Avatar   string  `json:"avatar"`
	Rating   float64 `json:"rating"`
	Trips    int     `json:"trips"`
}

// TripSummary is one row of a community's trip tab.
type TripSummary struct {
	ID             int64     `json:"id"`
	Driver         string    `json:"driver"`
	Date           time.Time `json:"date"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Price          string    `json:"price"`
	AvailableSeats int       `json:"available_seats"`
}

// CommunityDraft is the content of the create-community form.
type CommunityDraft struct {
	Name        string
	Type        CommunityType
	Location    string
	Description string
}

// Validate requires every field to be non-blank and the type to be known.
// The first failing field is reported wrapped in ErrValidation.
func (d CommunityDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(string(d.Type)) == "":
		return fmt.Errorf("%w: type is required", ErrValidation)
	case !d.Type.Valid():
		return fmt.Errorf("%w: unknown community type %q", ErrValidation, d.Type)
	case strings.TrimSpace(d.Location) == "":
		return fmt.Errorf("%w: location is required", ErrValidation)
	case strings.TrimSpace(d.Description) == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	return nil
}
