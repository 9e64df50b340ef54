package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ecotrajet/carpool/internal/community"
	"github.com/ecotrajet/carpool/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderTrips(w io.Writer, trips []domain.Trip) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDEPARTURE\tFROM\tTO\tPRICE\tSEATS\tDRIVER\tSTATUS")
	for _, t := range trips {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s €\t%d/%d\t%s\t%s\n",
			t.ID, t.DepartureTime.Format(timeLayout), t.Origin, t.Destination,
			t.Price.StringFixed(2), t.AvailableSeats, t.TotalSeats, t.Driver.Name, t.Status)
	}
	tw.Flush()
}

func renderTrip(w io.Writer, t domain.Trip) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Trip\t%d\n", t.ID)
	fmt.Fprintf(tw, "Route\t%s → %s\n", t.Origin, t.Destination)
	fmt.Fprintf(tw, "Departure\t%s\n", t.DepartureTime.Format(timeLayout))
	fmt.Fprintf(tw, "Arrival\t%s (%s)\n", t.ArrivalTime.Format(timeLayout), t.Duration())
	fmt.Fprintf(tw, "Driver\t%s [%s] %.1f★, %d trips\n", t.Driver.Name, t.Driver.Initials(), t.Driver.Rating, t.Driver.TripCount)
	fmt.Fprintf(tw, "Price\t%s €\n", t.Price.StringFixed(2))
	seats := fmt.Sprintf("%d of %d available", t.AvailableSeats, t.TotalSeats)
	if t.Full() {
		seats = "full"
	}
	fmt.Fprintf(tw, "Seats\t%s\n", seats)
	fmt.Fprintf(tw, "Status\t%s\n", t.Status)
	fmt.Fprintf(tw, "Smoking\t%s\n", yesNo(t.Preferences.SmokingAllowed))
	fmt.Fprintf(tw, "Music\t%s\n", yesNo(t.Preferences.MusicAllowed))
	if t.Preferences.Chat != "" {
		fmt.Fprintf(tw, "Chat\t%s\n", t.Preferences.Chat)
	}
	tw.Flush()
}

func renderReservations(w io.Writer, list []domain.Reservation) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTRIP\tPASSENGER\tSEATS\tSTATUS\tCREATED")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			r.ID, r.TripID, r.Passenger, r.SeatsReserved, r.Status, r.CreatedAt.Format(timeLayout))
	}
	tw.Flush()
}

func renderCommunities(w io.Writer, list []domain.Community) {
	if len(list) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "  ID\tTITLE\tTYPE\tMEMBERS\tACTIVE TRIPS")
	for _, c := range list {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%d\n", c.ID, c.Title, c.Type, c.Members, c.ActiveTrips)
	}
	tw.Flush()
}

func renderCommunityDetail(w io.Writer, st community.State) {
	c := st.Selected
	if c == nil {
		return
	}
	fmt.Fprintf(w, "%s [%s, %s]\n%s\n\n", c.Title, c.Type, c.Icon, c.Description)

	if !c.Joined() {
		fmt.Fprintf(w, "%d members, %d active trips\n", c.Members, c.ActiveTrips)
		if st.Tab != community.TabOverview {
			fmt.Fprintln(w, "Join the community to see its members and trips.")
		}
		return
	}

	ms := c.Membership
	switch st.Tab {
	case community.TabMembers:
		tw := newTable(w)
		fmt.Fprintln(tw, "NAME\tUSERNAME\tRATING\tTRIPS")
		for _, m := range ms.MembersList {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\n", m.Name, m.Username, m.Rating, m.Trips)
		}
		tw.Flush()
	case community.TabTrips:
		if len(ms.TripsList) == 0 {
			fmt.Fprintln(w, "No trips yet")
			return
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tDATE\tFROM\tTO\tDRIVER\tPRICE\tSEATS")
		for _, t := range ms.TripsList {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
				t.ID, t.Date.Format(timeLayout), t.Origin, t.Destination, t.Driver, t.Price, t.AvailableSeats)
		}
		tw.Flush()
	default:
		tw := newTable(w)
		fmt.Fprintf(tw, "Location\t%s\n", ms.Location)
		fmt.Fprintf(tw, "Created\t%s\n", ms.CreatedAt.Format("2006-01-02"))
		others := ""
		if ms.AdditionalMembers > 0 {
			others = fmt.Sprintf(" +%d", ms.AdditionalMembers)
		}
		names := ""
		for i, av := range ms.Avatars {
			if i > 0 {
				names += " "
			}
			names += av.Name
		}
		fmt.Fprintf(tw, "Members\t%d (%s%s)\n", c.Members, names, others)
		fmt.Fprintf(tw, "Active trips\t%d\n", c.ActiveTrips)
		tw.Flush()
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
