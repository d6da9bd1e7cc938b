package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// CompartmentDraft is one compartment row under an in-progress tank.
type CompartmentDraft struct {
	ID                  uuid.UUID     `json:"id"`
	Code                string        `json:"code"`
	FuelTypeID          string        `json:"fuel_type_id"`
	CapacityNominal     string        `json:"capacity_nominal"`
	CapacityOperational string        `json:"capacity_operational"`
	Tags                models.TagSet `json:"tags"`
}

// TankDraft is the working state of one tank registration. A new draft starts
// with a single empty compartment; the dual toggle appends or removes exactly
// one compartment at the tail.
type TankDraft struct {
	ID               uuid.UUID          `json:"id"`
	StationID        string             `json:"station_id"`
	Code             string             `json:"code"`
	TankType         string             `json:"type"`
	Material         string             `json:"material"`
	InstallationType string             `json:"installation_type"`
	Tags             models.TagSet      `json:"tags"`
	Compartments     []CompartmentDraft `json:"compartments"`
	Dual             bool               `json:"dual"`

	catalog Catalog
}

func NewTankDraft(catalog Catalog) *TankDraft {
	return &TankDraft{
		ID:               uuid.New(),
		TankType:         "Horizontal",
		Material:         "Steel",
		InstallationType: "Underground",
		Compartments:     []CompartmentDraft{{ID: uuid.New()}},
		catalog:          catalog,
	}
}

func (t *TankDraft) SetField(name, value string) error {
	switch name {
	case "station_id":
		t.StationID = value
	case "code":
		t.Code = value
	case "type":
		t.TankType = value
	case "material":
		t.Material = value
	case "installation_type":
		t.InstallationType = value
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// SetDual toggles the dual-compartment mode. Enabling appends one empty
// compartment at the tail; disabling removes the tail compartment. Existing
// compartments are never reordered and the first one is never touched.
func (t *TankDraft) SetDual(enabled bool) {
	if enabled == t.Dual {
		return
	}
	if enabled {
		t.Compartments = append(t.Compartments, CompartmentDraft{ID: uuid.New()})
	} else if len(t.Compartments) > 1 {
		t.Compartments = t.Compartments[:len(t.Compartments)-1]
	}
	t.Dual = enabled
}

func (t *TankDraft) compartment(index int) (*CompartmentDraft, error) {
	if index < 0 || index >= len(t.Compartments) {
		return nil, invalid("compartments", fmt.Sprintf("no compartment at index %d", index))
	}
	return &t.Compartments[index], nil
}

// SetCompartmentField updates one compartment input. Capacity values arrive
// as display strings and may carry thousands separators; those are stripped
// here, full numeric coercion waits for Submit.
func (t *TankDraft) SetCompartmentField(index int, name, value string) error {
	c, err := t.compartment(index)
	if err != nil {
		return err
	}
	switch name {
	case "code":
		c.Code = value
	case "capacity_nominal":
		c.CapacityNominal = strings.ReplaceAll(value, ",", "")
	case "capacity_operational":
		c.CapacityOperational = strings.ReplaceAll(value, ",", "")
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// SelectCompartmentFuel records the fuel selection and propagates the fuel's
// derived tags into the compartment and the tank, same rules as hoses.
func (t *TankDraft) SelectCompartmentFuel(index int, fuelID string) error {
	c, err := t.compartment(index)
	if err != nil {
		return err
	}
	c.FuelTypeID = fuelID
	if id, err := uuid.Parse(fuelID); err == nil {
		if fuel, ok := t.catalog.FuelType(id); ok {
			ApplyFuelSelection(&c.Tags, &t.Tags, fuel)
		}
	}
	return nil
}

func (t *TankDraft) AddTag(tag string) {
	if v := strings.TrimSpace(tag); v != "" {
		t.Tags.Add(v)
	}
}

func (t *TankDraft) RemoveTag(tag string) bool {
	return t.Tags.Remove(tag)
}

func (t *TankDraft) AddCompartmentTag(index int, tag string) error {
	c, err := t.compartment(index)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(tag); v != "" {
		c.Tags.Add(v)
	}
	return nil
}

func (t *TankDraft) RemoveCompartmentTag(index int, tag string) error {
	c, err := t.compartment(index)
	if err != nil {
		return err
	}
	c.Tags.Remove(tag)
	return nil
}

func parseCapacity(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid(field, "must be a number")
	}
	if v < 0 {
		return 0, invalid(field, "must not be negative")
	}
	return v, nil
}

// Submit validates the draft and builds the immutable tank record.
func (t *TankDraft) Submit() (models.Tank, error) {
	if t.StationID == "" {
		return models.Tank{}, invalid("station_id", "select a station")
	}
	stationID, err := uuid.Parse(t.StationID)
	if err != nil {
		return models.Tank{}, invalid("station_id", "not a valid station reference")
	}
	if strings.TrimSpace(t.Code) == "" {
		return models.Tank{}, invalid("code", "enter the tank code")
	}

	compartments := make([]models.Compartment, len(t.Compartments))
	for i, c := range t.Compartments {
		// Same rule as hoses: the product can stay unselected at submit, only
		// a non-empty unparsable value is an input error.
		var fuelID uuid.UUID
		if c.FuelTypeID != "" {
			id, err := uuid.Parse(c.FuelTypeID)
			if err != nil {
				return models.Tank{}, invalid(fmt.Sprintf("compartments[%d].fuel_type_id", i), "not a valid fuel reference")
			}
			fuelID = id
		}
		nominal, err := parseCapacity(fmt.Sprintf("compartments[%d].capacity_nominal", i), c.CapacityNominal)
		if err != nil {
			return models.Tank{}, err
		}
		operational, err := parseCapacity(fmt.Sprintf("compartments[%d].capacity_operational", i), c.CapacityOperational)
		if err != nil {
			return models.Tank{}, err
		}
		compartments[i] = models.Compartment{
			ID:                  c.ID,
			Code:                c.Code,
			FuelTypeID:          fuelID,
			CapacityNominal:     nominal,
			CapacityOperational: operational,
			Tags:                c.Tags.Clone(),
		}
	}

	return models.Tank{
		ID:               uuid.New(),
		StationID:        stationID,
		Code:             t.Code,
		TankType:         t.TankType,
		Material:         t.Material,
		InstallationType: t.InstallationType,
		Tags:             t.Tags.Clone(),
		Compartments:     compartments,
		CreatedAt:        time.Now(),
	}, nil
}
