package capture

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// Phase is the current stage of a work-order capture flow.
type Phase string

const (
	PhaseCreation Phase = "CREATION"
	PhaseHub      Phase = "HUB"
	PhaseTest     Phase = "TEST"
	PhaseFinished Phase = "FINISHED"
	PhaseClosed   Phase = "CLOSED"
)

// AssetSource supplies the fixed asset hierarchy a test enumerates. The store
// implements it.
type AssetSource interface {
	StationName(id uuid.UUID) (string, bool)
	DispenserAssets(stationID uuid.UUID) []Parent
	TankAssets(stationID uuid.UUID) []Parent
}

// Sink receives finished objects. It is a pure collaborator: the machine
// never reads anything back from it.
type Sink interface {
	SaveWorkOrder(order models.WorkOrder) error
	SaveTestResult(payload TestPayload) error
}

// Machine drives one work order through CREATION → HUB → TEST_<code> → HUB →
// FINISHED. The order exists from CreateDraft on; the session exists only
// while a test sub-form is open. Each phase carries exactly the data it
// needs and nothing else.
type Machine struct {
	ID uuid.UUID

	phase   Phase
	order   *models.WorkOrder
	session *Session

	source AssetSource
	sink   Sink
}

func NewMachine(source AssetSource, sink Sink) *Machine {
	return &Machine{ID: uuid.New(), phase: PhaseCreation, source: source, sink: sink}
}

func (m *Machine) Phase() Phase { return m.phase }

// Order returns a copy of the work order, or false before the draft exists.
func (m *Machine) Order() (models.WorkOrder, bool) {
	if m.order == nil {
		return models.WorkOrder{}, false
	}
	return *m.order, true
}

// Session returns the open test sub-form, or nil outside a test phase.
func (m *Machine) Session() *Session { return m.session }

// ActiveTest returns the code of the open test sub-form, if any.
func (m *Machine) ActiveTest() (TestCode, bool) {
	if m.session == nil {
		return "", false
	}
	return m.session.Def.Code, true
}

// CreateDraft mints the work order once station and date are present and
// moves to the hub. The station's display name is snapshotted now; a station
// missing from the catalog degrades to a placeholder rather than failing.
func (m *Machine) CreateDraft(stationID uuid.UUID, date, observations string) error {
	if m.phase != PhaseCreation {
		return &PhaseError{Op: "create the draft", Phase: m.phase}
	}
	if stationID == uuid.Nil {
		return invalid("station_id", "select a station")
	}
	if date == "" {
		return invalid("date", "select a date")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return invalid("date", "must be YYYY-MM-DD")
	}

	name, ok := m.source.StationName(stationID)
	if !ok {
		name = "Unknown"
	}
	m.order = &models.WorkOrder{
		ID:           uuid.New(),
		StationID:    stationID,
		StationName:  name,
		Date:         date,
		Observations: observations,
		Status:       models.WorkOrderDraft,
		TestTags:     []string{},
		CreatedAt:    time.Now(),
	}
	m.phase = PhaseHub
	return nil
}

// OpenTest records the test code on the order (set-once: reopening never
// duplicates the tag), loads the hierarchy the test's scope asks for and
// enters the sub-form.
func (m *Machine) OpenTest(code TestCode) error {
	if m.phase != PhaseHub {
		return &PhaseError{Op: "open a test", Phase: m.phase}
	}
	def, ok := Lookup(code)
	if !ok {
		return invalid("code", "unknown test type")
	}

	m.order.AddTestTag(string(code))

	var parents []Parent
	switch def.Scope {
	case ScopeDispenser:
		parents = m.source.DispenserAssets(m.order.StationID)
	case ScopeTank:
		parents = m.source.TankAssets(m.order.StationID)
	}
	m.session = newSession(def, parents)
	m.phase = PhaseTest
	return nil
}

func (m *Machine) SetReading(unitID uuid.UUID, field, value string) error {
	if m.phase != PhaseTest {
		return &PhaseError{Op: "record a reading", Phase: m.phase}
	}
	return m.session.SetReading(unitID, field, value)
}

func (m *Machine) ToggleParentExclusion(id uuid.UUID) (bool, error) {
	if m.phase != PhaseTest {
		return false, &PhaseError{Op: "toggle an exclusion", Phase: m.phase}
	}
	return m.session.ToggleParentExclusion(id)
}

func (m *Machine) ToggleLeafExclusion(id uuid.UUID) (bool, error) {
	if m.phase != PhaseTest {
		return false, &PhaseError{Op: "toggle an exclusion", Phase: m.phase}
	}
	return m.session.ToggleLeafExclusion(id)
}

// SaveTest validates and aggregates the open sub-form. On success the payload
// goes to the sink and the flow returns to the hub; the work order itself is
// not touched beyond the tag already recorded at OpenTest. On failure the
// sub-form stays open so the operator can complete the missing readings.
func (m *Machine) SaveTest() (TestPayload, error) {
	if m.phase != PhaseTest {
		return TestPayload{}, &PhaseError{Op: "save a test", Phase: m.phase}
	}
	payload, err := m.session.buildPayload(m.order.ID)
	if err != nil {
		return TestPayload{}, err
	}
	if err := m.sink.SaveTestResult(payload); err != nil {
		return TestPayload{}, err
	}
	m.session = nil
	m.phase = PhaseHub
	return payload, nil
}

// CancelTest abandons the open sub-form and returns to the hub. The test tag
// recorded at OpenTest stays: a tag only means the test was opened.
func (m *Machine) CancelTest() error {
	if m.phase != PhaseTest {
		return &PhaseError{Op: "cancel a test", Phase: m.phase}
	}
	m.session = nil
	m.phase = PhaseHub
	return nil
}

// Close applies the smart-close policy: inside a test sub-form it backs out
// to the hub and reports false; anywhere else it abandons the whole flow and
// reports true. Closing at CREATION means no order was ever created.
func (m *Machine) Close() bool {
	if m.phase == PhaseTest {
		m.session = nil
		m.phase = PhaseHub
		return false
	}
	m.order = nil
	m.session = nil
	m.phase = PhaseClosed
	return true
}

// Finish hands the accumulated order to the sink and terminates the flow.
// Status is delivered as-is; nothing mutates the order after this point.
func (m *Machine) Finish() (models.WorkOrder, error) {
	if m.phase != PhaseHub {
		return models.WorkOrder{}, &PhaseError{Op: "finish the order", Phase: m.phase}
	}
	order := *m.order
	if err := m.sink.SaveWorkOrder(order); err != nil {
		return models.WorkOrder{}, err
	}
	m.phase = PhaseFinished
	return order, nil
}
