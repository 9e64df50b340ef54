package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ecotrajet/carpool/internal/domain"
)

// MessageResponse is the body of membership actions.
type MessageResponse struct {
	Message string                  `json:"message"`
	Status  domain.MembershipStatus `json:"status,omitempty"`
}

// MemberResponse is one entry of GET /communities/{id}/members/.
type MemberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ListCommunities handles GET /communities/.
func (s *Server) ListCommunities(w http.ResponseWriter, r *http.Request) {
	list, err := s.communities.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "community")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateCommunity handles POST /communities/add-community/. The caller
// becomes the admin and first member.
func (s *Server) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	var in domain.CommunityInput
	if !decodeBody(w, r, &in) {
		return
	}
	created, err := s.communities.Create(r.Context(), currentUser(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, err, "community")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AddCommunityUser handles POST /communities/{id}/add-user/ for the caller.
// Joining twice is a 400 with code already_member, not a 409.
func (s *Server) AddCommunityUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, status, err := s.communities.Join(r.Context(), currentUser(r.Context()), id)
	if errors.Is(err, domain.ErrConflict) {
		writeError(w, http.StatusBadRequest, "already_member", "You are already a member of this community.")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err, "community")
		return
	}
	verb := "joined"
	if status == domain.MembershipPending {
		verb = "requested to join"
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("You have successfully %s the community '%s'.", verb, c.Name),
		Status:  status,
	})
}

// RemoveCommunityUser handles POST /communities/{id}/remove-user/ with a
// {"user_id": ...} body. user_id may be a JSON number or string.
func (s *Server) RemoveCommunityUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		UserID json.RawMessage `json:"user_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	userID, err := flexString(body.UserID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	c, err := s.communities.RemoveMember(r.Context(), currentUser(r.Context()), id, userID)
	if err != nil {
		s.writeServiceError(w, r, err, "community")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("%s has been removed from %s", userID, c.Name),
	})
}

// ListCommunityMembers handles GET /communities/{id}/members/. Pending
// members are not listed.
func (s *Server) ListCommunityMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	members, err := s.communities.Members(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "community")
		return
	}
	out := make([]MemberResponse, len(members))
	for i, m := range members {
		out[i] = MemberResponse{ID: m.UserID, Username: m.Username}
	}
	writeJSON(w, http.StatusOK, out)
}

// flexString decodes a JSON string or number into its string form. A
// missing or null value yields "".
func flexString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("user_id: %w", err)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	}
	return "", fmt.Errorf("user_id must be a string or a number")
}
