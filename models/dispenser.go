package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispenser is a pump cabinet owning an ordered list of hoses. Positions are
// 1-based and contiguous; the editor recomputes them on every structural edit.
type Dispenser struct {
	ID              uuid.UUID `json:"id"`
	StationID       uuid.UUID `json:"station_id"`
	DispenserNumber int       `json:"dispenser_number"`
	Island          string    `json:"island"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Serial          string    `json:"serial"`
	NII             string    `json:"nii"`
	Tags            TagSet    `json:"tags"`
	Hoses           []Hose    `json:"hoses"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Hose is a leaf unit under a dispenser.
type Hose struct {
	ID         uuid.UUID `json:"id"`
	Position   int       `json:"position"`
	NII        string    `json:"nii"`
	FuelTypeID uuid.UUID `json:"fuel_type_id"`
	Tags       TagSet    `json:"tags"`
}
