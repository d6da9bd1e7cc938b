package models

import "github.com/google/uuid"

// FuelType is read-only catalog data. Tags is the fixed derived-tag list that
// gets unioned into a hose/compartment (and its parent) whenever this fuel is
// selected for it.
type FuelType struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
	Tags  []string  `json:"tags"`
}
