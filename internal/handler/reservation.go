package handler

import (
	"net/http"

	"github.com/ecotrajet/carpool/internal/domain"
)

// ListReservations handles GET /reservations/. Only the caller's own
// bookings are returned.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	list, err := s.reservations.ListMine(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateReservation handles POST /reservations/. The caller is the passenger.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var draft domain.ReservationDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	created, err := s.reservations.Create(r.Context(), currentUser(r.Context()), draft)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetReservation handles GET /reservations/{id}/.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateReservation handles PATCH /reservations/{id}/.
func (s *Server) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch domain.ReservationPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.reservations.Update(r.Context(), currentUser(r.Context()), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteReservation handles DELETE /reservations/{id}/.
func (s *Server) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.reservations.Delete(r.Context(), currentUser(r.Context()), id); err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
