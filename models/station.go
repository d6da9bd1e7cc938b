package models

import (
	"time"

	"github.com/google/uuid"
)

// Station is the top-level installation record. Tanks and Dispensers are only
// populated by the nested editing flow; the flat registration flow keeps them
// as independent records carrying a station_id back-reference.
type Station struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	BusinessName    string    `json:"businessName"`
	NIT             string    `json:"nit"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	ContactName     string    `json:"contactName"`
	ContactPhone    string    `json:"contactPhone"`
	ContactPosition string    `json:"contactPosition"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Status          string    `json:"status"`

	Tanks      []Tank      `json:"tanks,omitempty"`
	Dispensers []Dispenser `json:"dispensers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
