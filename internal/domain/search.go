package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates in query strings.
const DateLayout = "2006-01-02"

// SearchCriteria is the trip search form. Empty fields mean "no filter".
type SearchCriteria struct {
	Origin      string
	Destination string
	Date        *time.Time
}

// Normalize trims surrounding whitespace and truncates Date to the day.
func (c SearchCriteria) Normalize() SearchCriteria {
	c.Origin = strings.TrimSpace(c.Origin)
	c.Destination = strings.TrimSpace(c.Destination)
	if c.Date != nil {
		d := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, c.Date.Location())
		c.Date = &d
	}
	return c
}

// Empty reports whether no filter is set.
func (c SearchCriteria) Empty() bool {
	n := c.Normalize()
	return n.Origin == "" && n.Destination == "" && n.Date == nil
}

// Equal compares two criteria after normalization.
func (c SearchCriteria) Equal(o SearchCriteria) bool {
	a, b := c.Normalize(), o.Normalize()
	if a.Origin != b.Origin || a.Destination != b.Destination {
		return false
	}
	if a.Date == nil || b.Date == nil {
		return a.Date == nil && b.Date == nil
	}
	return a.Date.Format(DateLayout) == b.Date.Format(DateLayout)
}

// TripFilters are the query parameters sent to the trip listing endpoint.
type TripFilters struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	Status        TripStatus
}

// Filters converts the form into listing filters restricted to scheduled trips.
func (c SearchCriteria) Filters() TripFilters {
	n := c.Normalize()
	return TripFilters{
		Origin:        n.Origin,
		Destination:   n.Destination,
		DepartureDate: n.Date,
		Status:        TripScheduled,
	}
}
