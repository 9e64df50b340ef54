package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ecotrajet/carpool/internal/domain"
)

func (a *App) exportCommand() *Command {
	var format, output, origin, destination, date, status string
	return &Command{
		Name:    "export",
		Summary: "Download trips and their reservations as CSV or JSON",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
			fs.StringVar(&format, "format", "csv", "csv or json")
			fs.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
			fs.StringVar(&origin, "origin", "", "departure city (substring)")
			fs.StringVar(&destination, "destination", "", "arrival city (substring)")
			fs.StringVar(&date, "date", "", "departure day, YYYY-MM-DD")
			fs.StringVar(&status, "status", "", "trip status")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			f := domain.TripFilters{
				Origin:        origin,
				Destination:   destination,
				DepartureDate: day,
				Status:        domain.TripStatus(status),
			}
			if status != "" && !f.Status.Valid() {
				return fmt.Errorf("unknown trip status %q", status)
			}
			if format != "csv" && format != "json" {
				return fmt.Errorf("--format must be csv or json, got %q", format)
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			w := a.out
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				defer file.Close()
				w = file
			}

			if format == "csv" {
				_, err = client.ExportTripsCSV(ctx, f, w)
				return err
			}
			rows, err := client.ExportTrips(ctx, f)
			if err != nil {
				return err
			}
			return writeJSON(w, rows)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
