package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/tripsearch"
)

func (a *App) tripsCommand() *Command {
	return &Command{
		Name:    "trips",
		Summary: "Search and inspect trips",
		Subcommands: []*Command{
			a.tripsSearchCommand(),
			a.tripsShowCommand(),
			a.tripsReservationsCommand(),
			a.tripsPublishCommand(),
			a.tripsCancelCommand(),
		},
	}
}

func (a *App) tripsSearchCommand() *Command {
	var origin, destination, date string
	var retries int
	return &Command{
		Name:    "search",
		Summary: "List scheduled trips, optionally filtered",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
			fs.StringVar(&origin, "origin", "", "departure city (substring)")
			fs.StringVar(&destination, "destination", "", "arrival city (substring)")
			fs.StringVar(&date, "date", "", "departure day, YYYY-MM-DD")
			fs.IntVar(&retries, "retry", 0, "retry a failed search up to N times on network or server errors")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			m := tripsearch.NewModel(client, tripsearch.WithLogger(a.log))
			defer m.Close()
			unsubscribe := m.Subscribe(func(s tripsearch.State) {
				a.log.Debug("trip search state", "loading", s.Loading, "results", len(s.Trips), "error", s.Err)
			})
			defer unsubscribe()

			criteria := domain.SearchCriteria{Origin: origin, Destination: destination, Date: day}
			if criteria.Empty() {
				err = m.Load(ctx)
			} else {
				_, err = m.Search(ctx, criteria)
			}
			for attempt := 1; err != nil && attempt <= retries; attempt++ {
				fe, ok := domain.AsFetchError(err)
				if !ok || !fe.Temporary() {
					break
				}
				a.log.Info("retrying trip search", "attempt", attempt, "error", err)
				_, err = m.Retry(ctx)
			}
			if err != nil {
				return err
			}

			trips := m.State().VisibleTrips()
			if len(trips) == 0 {
				fmt.Fprintln(a.out, "No trips found")
				return nil
			}
			renderTrips(a.out, trips)
			return nil
		},
	}
}

func (a *App) tripsShowCommand() *Command {
	return &Command{
		Name:    "show",
		Summary: "Show one trip",
		Usage:   "ecotrajet trips show <id>",
		Run: func(ctx context.Context, args []string) error {
			id, err := parseID(args, "trip")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			trip, err := client.GetTrip(ctx, id)
			if err != nil {
				return err
			}
			renderTrip(a.out, trip)
			return nil
		},
	}
}

func (a *App) tripsReservationsCommand() *Command {
	return &Command{
		Name:    "reservations",
		Summary: "List the reservations on a trip",
		Usage:   "ecotrajet trips reservations <id>",
		Run: func(ctx context.Context, args []string) error {
			id, err := parseID(args, "trip")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			list, err := client.ListTripReservations(ctx, id)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No reservations")
				return nil
			}
			renderReservations(a.out, list)
			return nil
		},
	}
}

func (a *App) tripsPublishCommand() *Command {
	var (
		origin, destination, departure, arrival, price string
		seats                                          int
		community                                      string
	)
	return &Command{
		Name:    "publish",
		Summary: "Offer a trip as the logged-in driver",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("publish", pflag.ContinueOnError)
			fs.StringVar(&origin, "origin", "", "departure city")
			fs.StringVar(&destination, "destination", "", "arrival city")
			fs.StringVar(&departure, "departure", "", "departure time, RFC 3339")
			fs.StringVar(&arrival, "arrival", "", "arrival time, RFC 3339")
			fs.StringVar(&price, "price", "0", "price per seat in euros")
			fs.IntVar(&seats, "seats", 1, "seats offered")
			fs.StringVar(&community, "community", "", "community id the trip belongs to")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			dep, err := time.Parse(time.RFC3339, departure)
			if err != nil {
				return errors.New("--departure must be an RFC 3339 time")
			}
			arr, err := time.Parse(time.RFC3339, arrival)
			if err != nil {
				return errors.New("--arrival must be an RFC 3339 time")
			}
			amount, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q", price)
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			trip, err := client.CreateTrip(ctx, domain.TripDraft{
				CommunityID:   community,
				Origin:        origin,
				Destination:   destination,
				DepartureTime: dep,
				ArrivalTime:   arr,
				Price:         amount,
				TotalSeats:    seats,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Trip %d published\n", trip.ID)
			return nil
		},
	}
}

func (a *App) tripsCancelCommand() *Command {
	return &Command{
		Name:    "cancel",
		Summary: "Cancel one of your trips",
		Usage:   "ecotrajet trips cancel <id>",
		Run: func(ctx context.Context, args []string) error {
			id, err := parseID(args, "trip")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.CancelTrip(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Trip %d cancelled\n", id)
			return nil
		},
	}
}
