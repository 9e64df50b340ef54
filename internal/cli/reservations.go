package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ecotrajet/carpool/internal/domain"
)

func (a *App) reservationsCommand() *Command {
	return &Command{
		Name:    "reservations",
		Summary: "Book seats and manage your reservations",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List your reservations",
				Run:     a.listReservations,
			},
			a.reservationsCreateCommand(),
			{
				Name:    "show",
				Summary: "Show one reservation",
				Usage:   "ecotrajet reservations show <id>",
				Run:     a.showReservation,
			},
			{
				Name:    "cancel",
				Summary: "Cancel a reservation; confirmed seats go back to the trip",
				Usage:   "ecotrajet reservations cancel <id>",
				Run:     a.cancelReservation,
			},
			{
				Name:    "confirm",
				Summary: "Confirm a pending reservation",
				Usage:   "ecotrajet reservations confirm <id>",
				Run:     a.confirmReservation,
			},
		},
	}
}

func (a *App) listReservations(ctx context.Context, _ []string) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	list, err := client.ListReservations(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No reservations")
		return nil
	}
	renderReservations(a.out, list)
	return nil
}

func (a *App) reservationsCreateCommand() *Command {
	var trip int64
	var seats int
	return &Command{
		Name:    "create",
		Summary: "Reserve seats on a trip",
		Usage:   "ecotrajet reservations create --trip <id> [--seats n]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.Int64Var(&trip, "trip", 0, "trip id")
			fs.IntVar(&seats, "seats", 1, "number of seats")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if trip < 1 {
				return fmt.Errorf("--trip is required")
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.CreateReservation(ctx, domain.ReservationDraft{TripID: trip, SeatsReserved: seats})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Reservation %d created (%s)\n", res.ID, res.Status)
			return nil
		},
	}
}

func (a *App) showReservation(ctx context.Context, args []string) error {
	id, err := parseID(args, "reservation")
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	res, err := client.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	renderReservations(a.out, []domain.Reservation{res})
	return nil
}

func (a *App) cancelReservation(ctx context.Context, args []string) error {
	id, err := parseID(args, "reservation")
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	if err := client.CancelReservation(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reservation %d cancelled\n", id)
	return nil
}

func (a *App) confirmReservation(ctx context.Context, args []string) error {
	id, err := parseID(args, "reservation")
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	confirmed := domain.ReservationConfirmed
	res, err := client.UpdateReservation(ctx, id, domain.ReservationPatch{Status: &confirmed})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reservation %d %s\n", res.ID, res.Status)
	return nil
}
