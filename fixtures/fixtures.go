// Package fixtures embeds the seed data shared by the in-memory community
// source and the fixture API server, so both start from the same catalogue.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ecotrajet/carpool/internal/domain"
)

// FS holds the *.json seed files embedded at compile time.
//
//go:embed *.json
var FS embed.FS

// Trips returns the seed trips in file order.
func Trips() ([]domain.Trip, error) {
	var trips []domain.Trip
	if err := decode("trips.json", &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// Communities returns the seed communities split into the ones the demo
// user has joined and the ones still open to them.
func Communities() (joined, available []domain.Community, err error) {
	var doc struct {
		Joined    []domain.Community `json:"joined"`
		Available []domain.Community `json:"available"`
	}
	if err := decode("communities.json", &doc); err != nil {
		return nil, nil, err
	}
	return doc.Joined, doc.Available, nil
}

func decode(name string, v any) error {
	b, err := FS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("fixtures: read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("fixtures: decode %s: %w", name, err)
	}
	return nil
}
