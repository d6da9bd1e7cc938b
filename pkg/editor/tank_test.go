package editor

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewTankDraftStartsWithOneCompartment(t *testing.T) {
	d := NewTankDraft(newFakeCatalog(corriente))
	if len(d.Compartments) != 1 {
		t.Fatalf("compartments = %d, expected 1", len(d.Compartments))
	}
	if d.TankType != "Horizontal" || d.Material != "Steel" || d.InstallationType != "Underground" {
		t.Error("defaults not applied")
	}
}

func TestSetDualTogglesTailCompartment(t *testing.T) {
	d := NewTankDraft(newFakeCatalog(corriente, diesel))
	d.SetCompartmentField(0, "code", "T1-A")

	d.SetDual(true)
	if len(d.Compartments) != 2 {
		t.Fatalf("compartments after enable = %d, expected 2", len(d.Compartments))
	}
	if d.Compartments[0].Code != "T1-A" {
		t.Error("first compartment must be untouched by the toggle")
	}

	// Repeating the same state never stacks compartments.
	d.SetDual(true)
	if len(d.Compartments) != 2 {
		t.Errorf("compartments after repeat enable = %d, expected 2", len(d.Compartments))
	}

	d.SetCompartmentField(1, "code", "T1-B")
	d.SetDual(false)
	if len(d.Compartments) != 1 {
		t.Fatalf("compartments after disable = %d, expected 1", len(d.Compartments))
	}

	// Re-enabling mints a fresh empty compartment; the dropped data is gone.
	d.SetDual(true)
	if d.Compartments[1].Code != "" {
		t.Error("re-added compartment must start empty")
	}
}

func TestSetCompartmentFieldStripsThousandsSeparators(t *testing.T) {
	d := NewTankDraft(newFakeCatalog(corriente))
	if err := d.SetCompartmentField(0, "capacity_nominal", "12,000"); err != nil {
		t.Fatal(err)
	}
	if d.Compartments[0].CapacityNominal != "12000" {
		t.Errorf("capacity = %q, expected 12000", d.Compartments[0].CapacityNominal)
	}
}

func TestSelectCompartmentFuelPropagatesToTank(t *testing.T) {
	d := NewTankDraft(newFakeCatalog(corriente, diesel))
	d.SetDual(true)

	if err := d.SelectCompartmentFuel(1, diesel.ID.String()); err != nil {
		t.Fatal(err)
	}
	for _, tag := range diesel.Tags {
		if !d.Compartments[1].Tags.Contains(tag) {
			t.Errorf("compartment missing tag %q", tag)
		}
		if !d.Tags.Contains(tag) {
			t.Errorf("tank missing tag %q", tag)
		}
	}
	if d.Compartments[0].Tags.Len() != 0 {
		t.Error("sibling compartment must not receive tags")
	}
}

func TestTankSubmitValidation(t *testing.T) {
	station := uuid.New().String()

	tests := []struct {
		name  string
		setup func(d *TankDraft)
		field string
	}{
		{
			name:  "missing station",
			setup: func(d *TankDraft) {},
			field: "station_id",
		},
		{
			name: "missing code",
			setup: func(d *TankDraft) {
				d.SetField("station_id", station)
			},
			field: "code",
		},
		{
			name: "bad fuel reference",
			setup: func(d *TankDraft) {
				d.SetField("station_id", station)
				d.SetField("code", "T1")
				d.SelectCompartmentFuel(0, "not-a-uuid")
			},
			field: "compartments[0].fuel_type_id",
		},
		{
			name: "negative capacity",
			setup: func(d *TankDraft) {
				d.SetField("station_id", station)
				d.SetField("code", "T1")
				d.SelectCompartmentFuel(0, corriente.ID.String())
				d.SetCompartmentField(0, "capacity_nominal", "-5")
			},
			field: "compartments[0].capacity_nominal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewTankDraft(newFakeCatalog(corriente))
			tt.setup(d)
			_, err := d.Submit()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, expected ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("failing field = %q, expected %q", verr.Field, tt.field)
			}
		})
	}
}

func TestTankSubmitBuildsRecord(t *testing.T) {
	station := uuid.New()
	d := NewTankDraft(newFakeCatalog(corriente, diesel))
	d.SetField("station_id", station.String())
	d.SetField("code", "T-100")
	d.SetDual(true)
	d.SetCompartmentField(0, "code", "T-100-A")
	d.SetCompartmentField(0, "capacity_nominal", "10,000")
	d.SelectCompartmentFuel(0, corriente.ID.String())
	d.SetCompartmentField(1, "code", "T-100-B")
	d.SelectCompartmentFuel(1, diesel.ID.String())

	got, err := d.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if got.StationID != station || got.Code != "T-100" {
		t.Error("scalar fields lost")
	}
	if len(got.Compartments) != 2 {
		t.Fatalf("compartments = %d, expected 2", len(got.Compartments))
	}
	if got.Compartments[0].CapacityNominal != 10000 {
		t.Errorf("capacity = %v, expected 10000", got.Compartments[0].CapacityNominal)
	}
	// Empty capacity means not measured, coerced to zero.
	if got.Compartments[1].CapacityNominal != 0 {
		t.Errorf("unset capacity = %v, expected 0", got.Compartments[1].CapacityNominal)
	}
	if !got.Tags.Contains("mg_roja") || !got.Tags.Contains("mg_amarilla") {
		t.Error("tank should carry tags from both compartments")
	}
}

func TestTankSubmitAllowsCompartmentWithoutFuel(t *testing.T) {
	station := uuid.New()
	d := NewTankDraft(newFakeCatalog(corriente))
	d.SetField("station_id", station.String())
	d.SetField("code", "T-200")

	got, err := d.Submit()
	if err != nil {
		t.Fatalf("Submit() = %v, expected success with an unselected compartment", err)
	}
	if len(got.Compartments) != 1 {
		t.Fatalf("compartments = %d, expected 1", len(got.Compartments))
	}
	if got.Compartments[0].FuelTypeID != uuid.Nil {
		t.Error("unselected compartment must carry a nil fuel reference")
	}
}

func TestCompartmentIndexOutOfRange(t *testing.T) {
	d := NewTankDraft(newFakeCatalog(corriente))
	if err := d.SetCompartmentField(5, "code", "x"); err == nil {
		t.Error("out-of-range index should fail")
	}
	if err := d.SelectCompartmentFuel(-1, corriente.ID.String()); err == nil {
		t.Error("negative index should fail")
	}
}
