package models

import (
	"time"

	"github.com/google/uuid"
)

// Tank is a storage tank with at least one compartment. A "dual" tank carries
// exactly one extra compartment appended at the tail.
type Tank struct {
	ID               uuid.UUID     `json:"id"`
	StationID        uuid.UUID     `json:"station_id"`
	Code             string        `json:"code"`
	TankType         string        `json:"type"`
	Material         string        `json:"material"`
	InstallationType string        `json:"installation_type"`
	Tags             TagSet        `json:"tags"`
	Compartments     []Compartment `json:"compartments"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Compartment is a leaf unit under a tank.
type Compartment struct {
	ID                  uuid.UUID `json:"id"`
	Code                string    `json:"code"`
	FuelTypeID          uuid.UUID `json:"fuel_type_id"`
	CapacityNominal     float64   `json:"capacity_nominal"`
	CapacityOperational float64   `json:"capacity_operational"`
	Tags                TagSet    `json:"tags"`
}
