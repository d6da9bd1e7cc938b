package capture

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// fakeSource serves a fixed hierarchy for one station.
type fakeSource struct {
	name       string
	dispensers []Parent
	tanks      []Parent
}

func (f *fakeSource) StationName(id uuid.UUID) (string, bool) {
	if f.name == "" {
		return "", false
	}
	return f.name, true
}

func (f *fakeSource) DispenserAssets(stationID uuid.UUID) []Parent { return f.dispensers }
func (f *fakeSource) TankAssets(stationID uuid.UUID) []Parent      { return f.tanks }

// fakeSink records everything delivered to it.
type fakeSink struct {
	orders   []models.WorkOrder
	payloads []TestPayload
}

func (f *fakeSink) SaveWorkOrder(order models.WorkOrder) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeSink) SaveTestResult(payload TestPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func twoHoseDispenser() Parent {
	return Parent{
		ID:   uuid.New(),
		Code: "Dispenser 1",
		Leaves: []Leaf{
			{ID: uuid.New(), Label: "Pos 1", Position: 1, Tags: []string{"mg_roja", "corriente"}},
			{ID: uuid.New(), Label: "Pos 2", Position: 2, Tags: []string{"mg_amarilla", "diesel"}},
		},
	}
}

func twoCompartmentTank() Parent {
	return Parent{
		ID:   uuid.New(),
		Code: "T1",
		Leaves: []Leaf{
			{ID: uuid.New(), Label: "T1-A", Position: 1},
			{ID: uuid.New(), Label: "T1-B", Position: 2},
		},
	}
}

func startedMachine(t *testing.T, source *fakeSource, sink *fakeSink) *Machine {
	t.Helper()
	m := NewMachine(source, sink)
	if err := m.CreateDraft(uuid.New(), "2026-08-28", "ruta norte"); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return m
}

func fillLeak(t *testing.T, m *Machine, unitID uuid.UUID) {
	t.Helper()
	for field, value := range map[string]string{
		"start_time":     "08:30",
		"end_time":       "09:15",
		"initial_height": "12.5",
		"final_height":   "12.5",
	} {
		if err := m.SetReading(unitID, field, value); err != nil {
			t.Fatalf("SetReading(%s): %v", field, err)
		}
	}
}

func TestCreateDraftValidation(t *testing.T) {
	tests := []struct {
		name      string
		stationID uuid.UUID
		date      string
	}{
		{"nil station", uuid.Nil, "2026-08-28"},
		{"empty date", uuid.New(), ""},
		{"malformed date", uuid.New(), "28/08/2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(&fakeSource{name: "EDS"}, &fakeSink{})
			err := m.CreateDraft(tt.stationID, tt.date, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, expected ValidationError", err)
			}
			if m.Phase() != PhaseCreation {
				t.Error("failed creation must stay in CREATION")
			}
		})
	}
}

func TestCreateDraftSnapshotsStationName(t *testing.T) {
	m := startedMachine(t, &fakeSource{name: "EDS Norte"}, &fakeSink{})
	order, ok := m.Order()
	if !ok {
		t.Fatal("order should exist after CreateDraft")
	}
	if order.StationName != "EDS Norte" {
		t.Errorf("station name = %q, expected EDS Norte", order.StationName)
	}
	if order.Status != models.WorkOrderDraft {
		t.Errorf("status = %q, expected DRAFT", order.Status)
	}
	if m.Phase() != PhaseHub {
		t.Errorf("phase = %s, expected HUB", m.Phase())
	}
	if order.TestTags == nil || len(order.TestTags) != 0 {
		t.Error("new order should carry an empty tag list")
	}
}

func TestCreateDraftUnknownStationDegrades(t *testing.T) {
	m := startedMachine(t, &fakeSource{}, &fakeSink{})
	order, _ := m.Order()
	if order.StationName != "Unknown" {
		t.Errorf("station name = %q, expected Unknown", order.StationName)
	}
}

func TestOpenTestRecordsTagOnce(t *testing.T) {
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{twoHoseDispenser()}}, &fakeSink{})

	if err := m.OpenTest(TestPECC); err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PhaseTest {
		t.Errorf("phase = %s, expected TEST", m.Phase())
	}

	// Cancel and reopen: the tag must not duplicate.
	m.CancelTest()
	if err := m.OpenTest(TestPECC); err != nil {
		t.Fatal(err)
	}
	order, _ := m.Order()
	if len(order.TestTags) != 1 || order.TestTags[0] != "PECC" {
		t.Errorf("test tags = %v, expected [PECC]", order.TestTags)
	}
}

func TestOpenTestUnknownCode(t *testing.T) {
	m := startedMachine(t, &fakeSource{name: "EDS"}, &fakeSink{})
	if err := m.OpenTest("XXXX"); err == nil {
		t.Fatal("unknown code should fail")
	}
	if m.Phase() != PhaseHub {
		t.Error("failed open must stay in HUB")
	}
	order, _ := m.Order()
	if len(order.TestTags) != 0 {
		t.Error("failed open must not record a tag")
	}
}

func TestPhaseErrors(t *testing.T) {
	m := NewMachine(&fakeSource{name: "EDS"}, &fakeSink{})

	var perr *PhaseError
	if err := m.OpenTest(TestPECC); !errors.As(err, &perr) {
		t.Error("OpenTest at CREATION should be a PhaseError")
	}
	if _, err := m.Finish(); !errors.As(err, &perr) {
		t.Error("Finish at CREATION should be a PhaseError")
	}
	if err := m.SetReading(uuid.New(), "start_time", "08:00"); !errors.As(err, &perr) {
		t.Error("SetReading outside TEST should be a PhaseError")
	}
}

func TestSelfScopedTestReadsOnParent(t *testing.T) {
	disp := twoHoseDispenser()
	sink := &fakeSink{}
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, sink)

	if err := m.OpenTest(TestPECC); err != nil {
		t.Fatal(err)
	}
	// PECC is self-scoped: readings attach to the dispenser id itself.
	fillLeak(t, m, disp.ID)

	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PhaseHub {
		t.Errorf("phase after save = %s, expected HUB", m.Phase())
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("sink received %d payloads, expected 1", len(sink.payloads))
	}
	if len(payload.Parents) != 1 || payload.Parents[0].ParentID != disp.ID {
		t.Fatal("payload should carry the dispenser entry")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(b, &wire); err != nil {
		t.Fatal(err)
	}
	entries, ok := wire["dispensers"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("wire form missing dispensers list: %s", b)
	}
	entry := entries[0].(map[string]any)
	if entry["start_time"] != "08:30" {
		t.Errorf("self-scoped fields should be flat on the entry, got %v", entry)
	}
	if _, nested := entry["hose_results"]; nested {
		t.Error("self-scoped entry must not nest hose_results")
	}
	if entry["initial_height"] != 12.5 {
		t.Errorf("number field = %v, expected 12.5", entry["initial_height"])
	}
}

func TestLeafScopedPayloadShape(t *testing.T) {
	tank := twoCompartmentTank()
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, &fakeSink{})

	if err := m.OpenTest(TestPEMH); err != nil {
		t.Fatal(err)
	}
	for _, leaf := range tank.Leaves {
		fillLeak(t, m, leaf.ID)
	}

	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}

	b, _ := json.Marshal(payload)
	var wire map[string]any
	json.Unmarshal(b, &wire)

	tanks, ok := wire["tanks"].([]any)
	if !ok || len(tanks) != 1 {
		t.Fatalf("wire form missing tanks list: %s", b)
	}
	entry := tanks[0].(map[string]any)
	results, ok := entry["compartment_results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("expected 2 compartment_results, got %v", entry)
	}
	row := results[0].(map[string]any)
	if _, ok := row["compartment_id"]; !ok {
		t.Error("result row missing compartment_id")
	}
	if _, ok := wire["tags"]; ok {
		t.Error("leak test payload must not carry a tags list")
	}
}

func TestSaveTestFailClosed(t *testing.T) {
	tank := twoCompartmentTank()
	sink := &fakeSink{}
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, sink)

	m.OpenTest(TestPEMH)
	fillLeak(t, m, tank.Leaves[0].ID)
	// Second compartment left incomplete.
	m.SetReading(tank.Leaves[1].ID, "start_time", "08:00")

	_, err := m.SaveTest()
	var aggErr *AggregateError
	if !errors.As(err, &aggErr) {
		t.Fatalf("error = %v, expected AggregateError", err)
	}
	if len(sink.payloads) != 0 {
		t.Error("nothing may reach the sink on a failed save")
	}
	if m.Phase() != PhaseTest {
		t.Error("failed save must keep the sub-form open")
	}
	found := false
	for _, unit := range aggErr.Units {
		if strings.Contains(unit, "T1-B") {
			found = true
		}
	}
	if !found {
		t.Errorf("incomplete units %v should name T1-B", aggErr.Units)
	}

	// Completing the missing readings lets the same session save.
	fillLeak(t, m, tank.Leaves[1].ID)
	if _, err := m.SaveTest(); err != nil {
		t.Fatalf("save after completion: %v", err)
	}
	if len(sink.payloads) != 1 {
		t.Error("completed save should reach the sink")
	}
}

func TestMalformedReadingsRejected(t *testing.T) {
	tank := twoCompartmentTank()
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, &fakeSink{})
	m.OpenTest(TestPEMH)

	leaf := tank.Leaves[0].ID
	if err := m.SetReading(leaf, "no_such_field", "1"); err == nil {
		t.Error("unknown field should be rejected at entry")
	}
	if err := m.SetReading(uuid.New(), "start_time", "08:00"); err == nil {
		t.Error("unknown unit should be rejected at entry")
	}

	// Malformed values are accepted at entry and caught at save.
	m.SetReading(leaf, "start_time", "25:99")
	m.SetReading(leaf, "end_time", "09:00")
	m.SetReading(leaf, "initial_height", "twelve")
	m.SetReading(leaf, "final_height", "12")
	m.ToggleParentExclusion(tank.Leaves[1].ID) // not a parent id
	m.ToggleLeafExclusion(tank.Leaves[1].ID)

	_, err := m.SaveTest()
	var aggErr *AggregateError
	if !errors.As(err, &aggErr) {
		t.Fatalf("error = %v, expected AggregateError", err)
	}
	joined := strings.Join(aggErr.Units, "; ")
	if !strings.Contains(joined, "start_time") || !strings.Contains(joined, "initial_height") {
		t.Errorf("aggregate should name the malformed fields: %s", joined)
	}
}

func TestExclusionRetainsReadings(t *testing.T) {
	tank := twoCompartmentTank()
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, &fakeSink{})
	m.OpenTest(TestPEMH)

	leafA, leafB := tank.Leaves[0].ID, tank.Leaves[1].ID
	fillLeak(t, m, leafA)
	m.SetReading(leafB, "start_time", "08:00")

	excluded, err := m.ToggleLeafExclusion(leafB)
	if err != nil || !excluded {
		t.Fatalf("ToggleLeafExclusion = %v, %v", excluded, err)
	}

	// Excluded unit does not block the save.
	payload, err := m.SaveTest()
	if err != nil {
		t.Fatalf("save with excluded incomplete unit: %v", err)
	}
	if len(payload.Parents) != 1 || len(payload.Parents[0].Leaves) != 1 {
		t.Fatal("payload should carry only the included leaf")
	}
	if payload.Parents[0].Leaves[0].UnitID != leafA {
		t.Error("wrong leaf in payload")
	}
}

func TestExclusionRestoreBringsValuesBack(t *testing.T) {
	tank := twoCompartmentTank()
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, &fakeSink{})
	m.OpenTest(TestPEMH)
	s := m.Session()

	leaf := tank.Leaves[0].ID
	m.SetReading(leaf, "start_time", "08:00")

	m.ToggleLeafExclusion(leaf)
	// Values can still be edited while excluded.
	if err := m.SetReading(leaf, "end_time", "09:00"); err != nil {
		t.Fatalf("SetReading while excluded: %v", err)
	}
	excluded, _ := m.ToggleLeafExclusion(leaf)
	if excluded {
		t.Fatal("second toggle should restore the unit")
	}

	r, ok := s.Reading(leaf)
	if !ok {
		t.Fatal("reading record missing")
	}
	if r["start_time"] != "08:00" || r["end_time"] != "09:00" {
		t.Errorf("restored readings = %v, expected values kept", r)
	}
}

func TestParentExclusionOmitsWholeEntry(t *testing.T) {
	t1, t2 := twoCompartmentTank(), twoCompartmentTank()
	t2.Code = "T2"
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{t1, t2}}, &fakeSink{})
	m.OpenTest(TestPEMH)

	for _, leaf := range t1.Leaves {
		fillLeak(t, m, leaf.ID)
	}
	if _, err := m.ToggleParentExclusion(t2.ID); err != nil {
		t.Fatal(err)
	}

	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Parents) != 1 || payload.Parents[0].ParentID != t1.ID {
		t.Errorf("excluded parent must not appear in the payload")
	}
}

func TestAllLeavesExcludedOmitsParent(t *testing.T) {
	tank := twoCompartmentTank()
	m := startedMachine(t, &fakeSource{name: "EDS", tanks: []Parent{tank}}, &fakeSink{})
	m.OpenTest(TestPEMH)

	for _, leaf := range tank.Leaves {
		m.ToggleLeafExclusion(leaf.ID)
	}
	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Parents) != 0 {
		t.Error("parent with every leaf excluded must be omitted")
	}
}

func TestConductivityCollectsTags(t *testing.T) {
	disp := twoHoseDispenser()
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, &fakeSink{})
	m.OpenTest(TestPMC)

	for _, leaf := range disp.Leaves {
		if err := m.SetReading(leaf.ID, "resistance_ohms", "0.8"); err != nil {
			t.Fatal(err)
		}
	}
	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"mg_roja": true, "corriente": true, "mg_amarilla": true, "diesel": true}
	if len(payload.Tags) != len(want) {
		t.Fatalf("tags = %v, expected the union of both hoses", payload.Tags)
	}
	for _, tag := range payload.Tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}
}

func TestConductivityExcludedHoseTagsOmitted(t *testing.T) {
	disp := twoHoseDispenser()
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, &fakeSink{})
	m.OpenTest(TestPMC)

	m.SetReading(disp.Leaves[0].ID, "resistance_ohms", "0.8")
	m.ToggleLeafExclusion(disp.Leaves[1].ID)

	payload, err := m.SaveTest()
	if err != nil {
		t.Fatal(err)
	}
	for _, tag := range payload.Tags {
		if tag == "mg_amarilla" || tag == "diesel" {
			t.Errorf("excluded hose contributed tag %q", tag)
		}
	}
}

func TestCancelTestKeepsTag(t *testing.T) {
	disp := twoHoseDispenser()
	sink := &fakeSink{}
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, sink)
	m.OpenTest(TestPMC)
	m.SetReading(disp.Leaves[0].ID, "resistance_ohms", "0.8")

	if err := m.CancelTest(); err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PhaseHub {
		t.Errorf("phase = %s, expected HUB", m.Phase())
	}
	if len(sink.payloads) != 0 {
		t.Error("cancel must not deliver anything")
	}
	order, _ := m.Order()
	if !order.HasTestTag("PMC") {
		t.Error("tag recorded at open survives a cancel")
	}
	if m.Session() != nil {
		t.Error("session must be discarded on cancel")
	}
}

func TestSmartClose(t *testing.T) {
	disp := twoHoseDispenser()
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, &fakeSink{})
	m.OpenTest(TestPMC)

	// Inside a test, close backs out to the hub and the order survives.
	if exited := m.Close(); exited {
		t.Error("close inside a test must not exit the flow")
	}
	if m.Phase() != PhaseHub {
		t.Errorf("phase = %s, expected HUB", m.Phase())
	}
	if _, ok := m.Order(); !ok {
		t.Fatal("order must survive backing out of a test")
	}

	// At the hub, close abandons everything.
	if exited := m.Close(); !exited {
		t.Error("close at the hub must exit the flow")
	}
	if m.Phase() != PhaseClosed {
		t.Errorf("phase = %s, expected CLOSED", m.Phase())
	}
	if _, ok := m.Order(); ok {
		t.Error("closed flow must drop the order")
	}
}

func TestFinishDeliversOrderAsIs(t *testing.T) {
	disp := twoHoseDispenser()
	sink := &fakeSink{}
	m := startedMachine(t, &fakeSource{name: "EDS", dispensers: []Parent{disp}}, sink)

	m.OpenTest(TestPMC)
	for _, leaf := range disp.Leaves {
		m.SetReading(leaf.ID, "resistance_ohms", "1.1")
	}
	if _, err := m.SaveTest(); err != nil {
		t.Fatal(err)
	}

	order, err := m.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PhaseFinished {
		t.Errorf("phase = %s, expected FINISHED", m.Phase())
	}
	if len(sink.orders) != 1 {
		t.Fatalf("sink received %d orders, expected 1", len(sink.orders))
	}
	// Finishing records the visit; it does not flip the status.
	if order.Status != models.WorkOrderDraft {
		t.Errorf("status = %q, expected DRAFT", order.Status)
	}
	if len(order.TestTags) != 1 || order.TestTags[0] != "PMC" {
		t.Errorf("test tags = %v, expected [PMC]", order.TestTags)
	}
}

func TestLookupAndCodes(t *testing.T) {
	if len(Codes()) != 5 {
		t.Errorf("Codes() = %d entries, expected 5", len(Codes()))
	}
	def, ok := Lookup(TestPVSC)
	if !ok {
		t.Fatal("PVSC should be defined")
	}
	if def.Scope != ScopeTank || !def.SelfScoped {
		t.Error("PVSC should be a self-scoped tank test")
	}
	if _, ok := Lookup("NOPE"); ok {
		t.Error("unknown code should not resolve")
	}
}
