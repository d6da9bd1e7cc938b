package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// Hose count bounds for one dispenser.
const (
	MinHoseCount = 1
	MaxHoseCount = 16
)

// HoseDraft is one hose row under an in-progress dispenser. The id is minted
// when the row appears and survives for the life of the draft.
type HoseDraft struct {
	ID         uuid.UUID     `json:"id"`
	Position   int           `json:"position"`
	NII        string        `json:"nii"`
	FuelTypeID string        `json:"fuel_type_id"`
	Tags       models.TagSet `json:"tags"`
}

// DispenserDraft is the working state of one dispenser registration. All
// numeric fields stay in their raw string form until Submit coerces them.
type DispenserDraft struct {
	ID              uuid.UUID     `json:"id"`
	StationID       string        `json:"station_id"`
	DispenserNumber string        `json:"dispenser_number"`
	Island          string        `json:"island"`
	Brand           string        `json:"brand"`
	Model           string        `json:"model"`
	Serial          string        `json:"serial"`
	NII             string        `json:"nii"`
	Tags            models.TagSet `json:"tags"`
	Hoses           []HoseDraft   `json:"hoses"`

	catalog Catalog
}

func NewDispenserDraft(catalog Catalog) *DispenserDraft {
	return &DispenserDraft{ID: uuid.New(), catalog: catalog}
}

// SetField updates one top-level input field.
func (d *DispenserDraft) SetField(name, value string) error {
	switch name {
	case "station_id":
		d.StationID = value
	case "dispenser_number":
		d.DispenserNumber = value
	case "island":
		d.Island = value
	case "brand":
		d.Brand = value
	case "model":
		d.Model = value
	case "serial":
		d.Serial = value
	case "nii":
		d.NII = value
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// SetHoseCount grows or shrinks the hose list. Growing appends empty rows at
// positions len+1..n; shrinking truncates the tail and discards its data. An
// empty input leaves the list untouched so clearing the field while typing
// never wipes entered hoses.
func (d *DispenserDraft) SetHoseCount(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return invalid("hose_count", "must be a whole number")
	}
	if n < MinHoseCount || n > MaxHoseCount {
		return invalid("hose_count", fmt.Sprintf("must be between %d and %d", MinHoseCount, MaxHoseCount))
	}
	if n > len(d.Hoses) {
		for i := len(d.Hoses); i < n; i++ {
			d.Hoses = append(d.Hoses, HoseDraft{ID: uuid.New(), Position: i + 1})
		}
	} else {
		d.Hoses = d.Hoses[:n]
	}
	return nil
}

func (d *DispenserDraft) hose(index int) (*HoseDraft, error) {
	if index < 0 || index >= len(d.Hoses) {
		return nil, invalid("hoses", fmt.Sprintf("no hose at index %d", index))
	}
	return &d.Hoses[index], nil
}

func (d *DispenserDraft) SetHoseNII(index int, value string) error {
	h, err := d.hose(index)
	if err != nil {
		return err
	}
	h.NII = value
	return nil
}

// SelectHoseFuel records the fuel selection and propagates the fuel's derived
// tags into the hose and the dispenser. An id missing from the catalog is
// stored as-is with no propagation; the gap surfaces later as a placeholder
// label, not as an error here.
func (d *DispenserDraft) SelectHoseFuel(index int, fuelID string) error {
	h, err := d.hose(index)
	if err != nil {
		return err
	}
	h.FuelTypeID = fuelID
	if id, err := uuid.Parse(fuelID); err == nil {
		if fuel, ok := d.catalog.FuelType(id); ok {
			ApplyFuelSelection(&h.Tags, &d.Tags, fuel)
		}
	}
	return nil
}

func (d *DispenserDraft) AddTag(tag string) {
	if t := strings.TrimSpace(tag); t != "" {
		d.Tags.Add(t)
	}
}

func (d *DispenserDraft) RemoveTag(tag string) bool {
	return d.Tags.Remove(tag)
}

func (d *DispenserDraft) AddHoseTag(index int, tag string) error {
	h, err := d.hose(index)
	if err != nil {
		return err
	}
	if t := strings.TrimSpace(tag); t != "" {
		h.Tags.Add(t)
	}
	return nil
}

func (d *DispenserDraft) RemoveHoseTag(index int, tag string) error {
	h, err := d.hose(index)
	if err != nil {
		return err
	}
	h.Tags.Remove(tag)
	return nil
}

// Submit validates the draft and builds the immutable dispenser record. On
// the first failing field a ValidationError is returned and nothing is built.
func (d *DispenserDraft) Submit() (models.Dispenser, error) {
	if d.StationID == "" {
		return models.Dispenser{}, invalid("station_id", "select a station")
	}
	stationID, err := uuid.Parse(d.StationID)
	if err != nil {
		return models.Dispenser{}, invalid("station_id", "not a valid station reference")
	}
	if d.DispenserNumber == "" {
		return models.Dispenser{}, invalid("dispenser_number", "enter the dispenser number")
	}
	number, err := strconv.Atoi(d.DispenserNumber)
	if err != nil || number <= 0 {
		return models.Dispenser{}, invalid("dispenser_number", "must be a positive number")
	}
	if len(d.Hoses) == 0 {
		return models.Dispenser{}, invalid("hoses", "add at least one hose")
	}

	hoses := make([]models.Hose, len(d.Hoses))
	for i, h := range d.Hoses {
		// A hose may be registered before its product is chosen; only a
		// non-empty value that fails to parse is an input error.
		var fuelID uuid.UUID
		if h.FuelTypeID != "" {
			id, err := uuid.Parse(h.FuelTypeID)
			if err != nil {
				return models.Dispenser{}, invalid(fmt.Sprintf("hoses[%d].fuel_type_id", i), "not a valid fuel reference")
			}
			fuelID = id
		}
		hoses[i] = models.Hose{
			ID:         h.ID,
			Position:   i + 1,
			NII:        h.NII,
			FuelTypeID: fuelID,
			Tags:       h.Tags.Clone(),
		}
	}

	return models.Dispenser{
		ID:              uuid.New(),
		StationID:       stationID,
		DispenserNumber: number,
		Island:          d.Island,
		Brand:           d.Brand,
		Model:           d.Model,
		Serial:          d.Serial,
		NII:             d.NII,
		Tags:            d.Tags.Clone(),
		Hoses:           hoses,
		CreatedAt:       time.Now(),
	}, nil
}
