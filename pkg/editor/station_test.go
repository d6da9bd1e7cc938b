package editor

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

func TestStationUpsertTank(t *testing.T) {
	d := NewStationDraft()
	a := models.Tank{ID: uuid.New(), Code: "A"}
	b := models.Tank{ID: uuid.New(), Code: "B"}

	if err := d.UpsertTank(nil, a); err != nil {
		t.Fatal(err)
	}
	if err := d.UpsertTank(nil, b); err != nil {
		t.Fatal(err)
	}

	// Replacing in place keeps the slot.
	edited := a
	edited.Code = "A2"
	idx := 0
	if err := d.UpsertTank(&idx, edited); err != nil {
		t.Fatal(err)
	}
	if d.Tanks[0].Code != "A2" || d.Tanks[1].Code != "B" {
		t.Errorf("tanks = [%s %s], expected [A2 B]", d.Tanks[0].Code, d.Tanks[1].Code)
	}

	bad := 5
	if err := d.UpsertTank(&bad, a); err == nil {
		t.Error("out-of-range replace should fail")
	}
}

func TestStationRemoveDispenserShiftsDown(t *testing.T) {
	d := NewStationDraft()
	for i := 1; i <= 3; i++ {
		d.UpsertDispenser(nil, models.Dispenser{ID: uuid.New(), DispenserNumber: i})
	}
	if err := d.RemoveDispenser(1); err != nil {
		t.Fatal(err)
	}
	if len(d.Dispensers) != 2 {
		t.Fatalf("dispensers = %d, expected 2", len(d.Dispensers))
	}
	if d.Dispensers[0].DispenserNumber != 1 || d.Dispensers[1].DispenserNumber != 3 {
		t.Error("remaining dispensers should keep their order")
	}
	if err := d.RemoveDispenser(5); err == nil {
		t.Error("out-of-range remove should fail")
	}
}

func TestStationSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *StationDraft)
		field string
	}{
		{"missing name", func(d *StationDraft) {}, "name"},
		{"missing business name", func(d *StationDraft) {
			d.Name = "EDS Test"
		}, "business_name"},
		{"missing nit", func(d *StationDraft) {
			d.Name = "EDS Test"
			d.BusinessName = "Test SAS"
		}, "nit"},
		{"latitude without longitude", func(d *StationDraft) {
			d.Name = "EDS Test"
			d.BusinessName = "Test SAS"
			d.NIT = "900.000.000-1"
			d.Latitude = "4.6"
		}, "longitude"},
		{"latitude out of range", func(d *StationDraft) {
			d.Name = "EDS Test"
			d.BusinessName = "Test SAS"
			d.NIT = "900.000.000-1"
			d.Latitude = "91"
			d.Longitude = "-74"
		}, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewStationDraft()
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

func TestStationSubmitStampsChildren(t *testing.T) {
	d := NewStationDraft()
	d.Name = "EDS Test"
	d.BusinessName = "Test SAS"
	d.NIT = "900.000.000-1"
	d.Latitude = "4.65"
	d.Longitude = "-74.06"
	d.UpsertTank(nil, models.Tank{ID: uuid.New(), Code: "T1"})
	d.UpsertDispenser(nil, models.Dispenser{ID: uuid.New(), DispenserNumber: 1})

	got, err := d.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "Active" {
		t.Errorf("status = %q, expected Active", got.Status)
	}
	if got.Latitude == nil || *got.Latitude != 4.65 {
		t.Error("latitude not coerced")
	}
	if got.Tanks[0].StationID != got.ID {
		t.Error("tank not re-stamped with the new station id")
	}
	if got.Dispensers[0].StationID != got.ID {
		t.Error("dispenser not re-stamped with the new station id")
	}
}

func TestStationSubmitWithoutCoordinates(t *testing.T) {
	d := NewStationDraft()
	d.Name = "EDS Test"
	d.BusinessName = "Test SAS"
	d.NIT = "900.000.000-1"

	got, err := d.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if got.Latitude != nil || got.Longitude != nil {
		t.Error("omitted coordinates should stay nil")
	}
}
