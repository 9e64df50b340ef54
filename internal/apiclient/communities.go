package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FlexID is an identifier that may be encoded as a JSON number or string.
// It is always kept in its decimal/string form.
type FlexID string

// UnmarshalJSON accepts 42, "42" and null.
func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("apiclient: id %s is neither number nor string", b)
	}
	*id = FlexID(n.String())
	return nil
}

// RemoteCommunity is a community as the API serializes it.
type RemoteCommunity struct {
	ID          FlexID    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ZoneGeo     string    `json:"zone_geo"`
	Theme       string    `json:"theme"`
	IsPrivate   bool      `json:"is_private"`
	Admin       FlexID    `json:"admin,omitempty"`
	CreatedAt   time.Time `json:"date_creation"`
	MemberCount int       `json:"member_count"`
	ActiveTrips int       `json:"active_trips"`
}

// RemoteMember is one accepted member of a community.
type RemoteMember struct {
	ID       FlexID `json:"id"`
	Username string `json:"username"`
}

// NewCommunity is the body of POST /communities/add-community/.
type NewCommunity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ZoneGeo     string `json:"zone_geo"`
	Theme       string `json:"theme"`
	IsPrivate   bool   `json:"is_private"`
}

// ListCommunities handles GET /communities/.
func (c *Client) ListCommunities(ctx context.Context) ([]RemoteCommunity, error) {
	var out []RemoteCommunity
	if err := c.do(ctx, http.MethodGet, "/communities/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ListCommunities: %w", err)
	}
	return out, nil
}

// CreateCommunity handles POST /communities/add-community/. The server makes
// the caller the first member and admin.
func (c *Client) CreateCommunity(ctx context.Context, body NewCommunity) (RemoteCommunity, error) {
	var out RemoteCommunity
	if err := c.do(ctx, http.MethodPost, "/communities/add-community/", nil, body, &out); err != nil {
		return RemoteCommunity{}, fmt.Errorf("apiclient.CreateCommunity: %w", err)
	}
	return out, nil
}

// JoinCommunity handles POST /communities/{id}/add-user/ for the caller.
func (c *Client) JoinCommunity(ctx context.Context, id string) error {
	path := "/communities/" + url.PathEscape(id) + "/add-user/"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("apiclient.JoinCommunity: %w", err)
	}
	return nil
}

// LeaveCommunity handles POST /communities/{id}/remove-user/ for userID.
func (c *Client) LeaveCommunity(ctx context.Context, id, userID string) error {
	path := "/communities/" + url.PathEscape(id) + "/remove-user/"
	body := map[string]string{"user_id": userID}
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("apiclient.LeaveCommunity: %w", err)
	}
	return nil
}

// ListCommunityMembers handles GET /communities/{id}/members/.
func (c *Client) ListCommunityMembers(ctx context.Context, id string) ([]RemoteMember, error) {
	var out []RemoteMember
	path := "/communities/" + url.PathEscape(id) + "/members/"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.ListCommunityMembers: %w", err)
	}
	return out, nil
}
