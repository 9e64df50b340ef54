// Package handler implements the HTTP handlers of the fixture carpool API.
// All handlers are methods on Server. They are split into resource files
// (health.go, trip.go, etc.) but share the same Server struct so they can
// access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or service layer.
type TripServicer interface {
	Create(ctx context.Context, user domain.User, draft domain.TripDraft) (domain.Trip, error)
	GetByID(ctx context.Context, id int64) (domain.Trip, error)
	ListPaged(ctx context.Context, f domain.TripFilters, p domain.PaginationParams) ([]domain.Trip, int, error)
	Update(ctx context.Context, user domain.User, id int64, patch domain.TripPatch) (domain.Trip, error)
	Cancel(ctx context.Context, user domain.User, id int64) error
}

// ReservationServicer defines the operations behind /reservations/.
type ReservationServicer interface {
	Create(ctx context.Context, user domain.User, draft domain.ReservationDraft) (domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)
	ListMine(ctx context.Context, user domain.User) ([]domain.Reservation, error)
	ListForTrip(ctx context.Context, tripID int64) ([]domain.Reservation, error)
	Update(ctx context.Context, user domain.User, id int64, patch domain.ReservationPatch) (domain.Reservation, error)
	Delete(ctx context.Context, user domain.User, id int64) error
}

// CommunityServicer defines the operations behind /communities/.
type CommunityServicer interface {
	List(ctx context.Context) ([]domain.CommunityRecord, error)
	Create(ctx context.Context, user domain.User, in domain.CommunityInput) (domain.CommunityRecord, error)
	Join(ctx context.Context, user domain.User, id int64) (domain.CommunityRecord, domain.MembershipStatus, error)
	RemoveMember(ctx context.Context, user domain.User, id int64, userID string) (domain.CommunityRecord, error)
	Members(ctx context.Context, id int64) ([]domain.CommunityMember, error)
}

// ExportServicer defines the operation behind /export/.
type ExportServicer interface {
	Export(ctx context.Context, f domain.TripFilters) ([]domain.ExportRow, error)
}

// Server holds the services every handler calls.
type Server struct {
	trips        TripServicer
	reservations ReservationServicer
	communities  CommunityServicer
	export       ExportServicer
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, reservations ReservationServicer, communities CommunityServicer, export ExportServicer) *Server {
	return &Server{
		trips:        trips,
		reservations: reservations,
		communities:  communities,
		export:       export,
		log:          slog.Default(),
	}
}

// WithLogger sets the logger used for unexpected handler errors.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	if l != nil {
		s.log = l
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes returns the API router. Paths match with or without the trailing
// slash that browser clients send. Writes and per-user listings sit behind
// requireUser.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Get("/trips", s.ListTrips)
	r.Get("/trips/{id}", s.GetTrip)
	r.Get("/communities", s.ListCommunities)
	r.Get("/communities/{id}/members", s.ListCommunityMembers)
	r.Get("/export", s.GetExport)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/trips", s.CreateTrip)
		r.Patch("/trips/{id}", s.UpdateTrip)
		r.Delete("/trips/{id}", s.CancelTrip)
		r.Get("/trips/{id}/reservations", s.ListTripReservations)

		r.Get("/reservations", s.ListReservations)
		r.Post("/reservations", s.CreateReservation)
		r.Get("/reservations/{id}", s.GetReservation)
		r.Patch("/reservations/{id}", s.UpdateReservation)
		r.Delete("/reservations/{id}", s.DeleteReservation)

		r.Post("/communities/add-community", s.CreateCommunity)
		r.Post("/communities/{id}/add-user", s.AddCommunityUser)
		r.Post("/communities/{id}/remove-user", s.RemoveCommunityUser)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// serveOpenAPI handles GET /openapi.yaml.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
