package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ListTrips handles GET /trips/.
// Supports ?origin=, ?destination=, ?departure_time=YYYY-MM-DD and ?status=
// filters, and ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	f, ok := bindTripFilters(w, r)
	if !ok {
		return
	}
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid page: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid limit: "+err.Error())
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), f, params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	body := domain.Page[domain.Trip]{Count: total, Results: trips}
	if params.Offset()+len(trips) < total {
		next := pageURL(r, params.Page+1)
		body.Next = &next
	}
	if params.Page > 1 {
		prev := pageURL(r, params.Page-1)
		body.Previous = &prev
	}
	writeJSON(w, http.StatusOK, body)
}

// GetTrip handles GET /trips/{id}/.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// CreateTrip handles POST /trips/. The caller becomes the driver.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var draft domain.TripDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	created, err := s.trips.Create(r.Context(), currentUser(r.Context()), draft)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTrip handles PATCH /trips/{id}/. Only the driver may edit a trip.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch domain.TripPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.trips.Update(r.Context(), currentUser(r.Context()), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CancelTrip handles DELETE /trips/{id}/. The trip is kept with status
// CANCELLED rather than removed.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Cancel(r.Context(), currentUser(r.Context()), id); err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTripReservations handles GET /trips/{id}/reservations/.
func (s *Server) ListTripReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := s.reservations.ListForTrip(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- binding helpers ---------------------------------------------------------

// pathID binds the {id} path segment as an int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid id %q", chi.URLParam(r, "id")))
		return 0, false
	}
	return id, true
}

// bindTripFilters reads the trip listing filters shared by /trips/ and
// /export/.
func bindTripFilters(w http.ResponseWriter, r *http.Request) (domain.TripFilters, bool) {
	q := r.URL.Query()
	var (
		origin, destination, status *string
		date                        *openapi_types.Date
	)
	for name, dst := range map[string]**string{"origin": &origin, "destination": &destination, "status": &status} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dst); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s: %v", name, err))
			return domain.TripFilters{}, false
		}
	}
	if err := runtime.BindQueryParameter("form", true, false, "departure_time", q, &date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "departure_time must be a date (YYYY-MM-DD)")
		return domain.TripFilters{}, false
	}

	var f domain.TripFilters
	if origin != nil {
		f.Origin = *origin
	}
	if destination != nil {
		f.Destination = *destination
	}
	if status != nil {
		f.Status = domain.TripStatus(*status)
	}
	if date != nil {
		d := date.Time
		f.DepartureDate = &d
	}
	return f, true
}

// pageURL returns the absolute URL of the request with ?page= replaced.
func pageURL(r *http.Request, page int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
