// GET /export/ returns every trip and its reservations as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ecotrajet/carpool/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_date", "origin", "destination", "departure_time",
	"driver", "price", "total_seats", "available_seats", "trip_status",
	"reservation_id", "passenger", "seats_reserved", "reservation_status",
}

// ExportRow is the JSON form of one export line. Reservation fields are
// omitted for trips without reservations.
type ExportRow struct {
	TripID            int64                    `json:"trip_id"`
	TripDate          openapi_types.Date       `json:"trip_date"`
	Origin            string                   `json:"origin"`
	Destination       string                   `json:"destination"`
	DepartureTime     time.Time                `json:"departure_time"`
	Driver            string                   `json:"driver"`
	Price             string                   `json:"price"`
	TotalSeats        int                      `json:"total_seats"`
	AvailableSeats    int                      `json:"available_seats"`
	TripStatus        domain.TripStatus        `json:"trip_status"`
	ReservationID     *int64                   `json:"reservation_id,omitempty"`
	Passenger         *string                  `json:"passenger,omitempty"`
	SeatsReserved     *int                     `json:"seats_reserved,omitempty"`
	ReservationStatus domain.ReservationStatus `json:"reservation_status,omitempty"`
}

// GetExport implements GET /export/.
// It accepts the same filters as GET /trips/.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	f, ok := bindTripFilters(w, r)
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid format: "+err.Error())
		return
	}
	wantCSV := format != nil && *format == "csv"
	if format != nil && !wantCSV && *format != "json" {
		writeError(w, http.StatusBadRequest, "bad_request", "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes domain rows as CSV with a header line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToJSON maps a domain.ExportRow to its JSON form.
func domainRowToJSON(r domain.ExportRow) ExportRow {
	row := ExportRow{
		TripID:         r.TripID,
		TripDate:       mustParseDate(r.TripDate),
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureTime:  r.DepartureTime,
		Driver:         r.Driver,
		Price:          r.Price,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		TripStatus:     r.TripStatus,
	}
	if r.ReservationID != 0 {
		row.ReservationID = &r.ReservationID
		row.Passenger = &r.Passenger
		row.SeatsReserved = &r.SeatsReserved
		row.ReservationStatus = r.ReservationStatus
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Reservation columns are empty for trips without reservations.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	rec := []string{
		strconv.FormatInt(r.TripID, 10),
		r.TripDate,
		r.Origin,
		r.Destination,
		r.DepartureTime.UTC().Format(time.RFC3339),
		r.Driver,
		r.Price,
		strconv.Itoa(r.TotalSeats),
		strconv.Itoa(r.AvailableSeats),
		string(r.TripStatus),
		"", "", "", "",
	}
	if r.ReservationID != 0 {
		rec[10] = strconv.FormatInt(r.ReservationID, 10)
		rec[11] = r.Passenger
		rec[12] = strconv.Itoa(r.SeatsReserved)
		rec[13] = string(r.ReservationStatus)
	}
	return rec
}

// mustParseDate parses a "2006-01-02" string into an openapi_types.Date.
// Panics on malformed input; callers are expected to pass service-generated dates.
func mustParseDate(s string) openapi_types.Date {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic("handler: malformed date from service: " + s)
	}
	return openapi_types.Date{Time: t}
}
