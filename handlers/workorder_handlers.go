package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edsfield/edsbackend/config"
	"github.com/edsfield/edsbackend/pkg/capture"
)

// GetAllWorkOrders lists finished work orders, newest first.
// GET /api/v1/workorders
func GetAllWorkOrders(w http.ResponseWriter, r *http.Request) {
	orders := config.Store.WorkOrders()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"work_orders": orders,
		"count":       len(orders),
	})
}

// GetTestResults lists every delivered test payload. Results live in their own
// log; the work order itself only carries the test codes.
// GET /api/v1/test-results
func GetTestResults(w http.ResponseWriter, r *http.Request) {
	results := config.Store.TestResults()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"test_results": results,
		"count":        len(results),
	})
}

type testTypeView struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Scope  string   `json:"scope"`
	Fields []string `json:"fields"`
}

// GetTestTypes lists the capturable test types in hub display order.
// GET /api/v1/test-types
func GetTestTypes(w http.ResponseWriter, r *http.Request) {
	var out []testTypeView
	for _, code := range capture.Codes() {
		def, _ := capture.Lookup(code)
		scope := "dispenser"
		if def.Scope == capture.ScopeTank {
			scope = "tank"
		}
		fields := make([]string, len(def.Fields))
		for i, f := range def.Fields {
			fields[i] = f.Key
		}
		out = append(out, testTypeView{
			Code:   string(def.Code),
			Name:   def.Name,
			Scope:  scope,
			Fields: fields,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"test_types": out})
}

// ---- capture flows ----

// sessionView is the wire snapshot of an open test sub-form.
type sessionView struct {
	Code            capture.TestCode           `json:"code"`
	Name            string                     `json:"name"`
	Parents         []capture.Parent           `json:"parents"`
	Readings        map[string]capture.Reading `json:"readings"`
	ExcludedParents []uuid.UUID                `json:"excluded_parents"`
	ExcludedLeaves  []uuid.UUID                `json:"excluded_leaves"`
}

// flowView is the wire snapshot of a whole flow: always the phase, plus the
// order once it exists and the session while a test is open.
type flowView struct {
	ID      uuid.UUID     `json:"id"`
	Phase   capture.Phase `json:"phase"`
	Order   interface{}   `json:"order,omitempty"`
	Session *sessionView  `json:"session,omitempty"`
}

func snapshotFlow(m *capture.Machine) flowView {
	view := flowView{ID: m.ID, Phase: m.Phase()}
	if order, ok := m.Order(); ok {
		view.Order = order
	}
	if s := m.Session(); s != nil {
		readings := make(map[string]capture.Reading)
		for _, p := range s.Parents {
			for _, leaf := range p.Leaves {
				if r, ok := s.Reading(leaf.ID); ok {
					readings[leaf.ID.String()] = r
				}
			}
		}
		excludedParents := s.ExcludedParents()
		if excludedParents == nil {
			excludedParents = []uuid.UUID{}
		}
		excludedLeaves := s.ExcludedLeaves()
		if excludedLeaves == nil {
			excludedLeaves = []uuid.UUID{}
		}
		view.Session = &sessionView{
			Code:            s.Def.Code,
			Name:            s.Def.Name,
			Parents:         s.Parents,
			Readings:        readings,
			ExcludedParents: excludedParents,
			ExcludedLeaves:  excludedLeaves,
		}
	}
	return view
}

// flowError maps the capture error types onto HTTP statuses: phase misuse is a
// conflict, everything the operator can correct is unprocessable.
func flowError(w http.ResponseWriter, err error) {
	var phaseErr *capture.PhaseError
	if errors.As(err, &phaseErr) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	var aggErr *capture.AggregateError
	if errors.As(err, &aggErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":            "incomplete readings",
			"incomplete_units": aggErr.Units,
		})
		return
	}
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}

func flowFromRequest(w http.ResponseWriter, r *http.Request) (*capture.Machine, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid flow id", http.StatusBadRequest)
		return nil, false
	}
	m, ok := config.Store.Flow(id)
	if !ok {
		http.Error(w, "flow not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

// CreateFlow starts a work-order capture flow in the CREATION phase.
// POST /api/v1/flows
func CreateFlow(w http.ResponseWriter, r *http.Request) {
	m := config.Store.CreateFlow()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

// GetFlow returns the flow snapshot.
// GET /api/v1/flows/{id}
func GetFlow(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

type draftReq struct {
	StationID    uuid.UUID `json:"station_id"`
	Date         string    `json:"date"`
	Observations string    `json:"observations"`
}

// CreateFlowDraft mints the work order and moves the flow to the hub.
// POST /api/v1/flows/{id}/draft
func CreateFlowDraft(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	var req draftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := m.CreateDraft(req.StationID, req.Date, req.Observations); err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

type openTestReq struct {
	Code string `json:"code"`
}

// OpenFlowTest records the test tag on the order and opens the sub-form with
// the hierarchy the test's scope enumerates.
// POST /api/v1/flows/{id}/tests
func OpenFlowTest(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	var req openTestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := m.OpenTest(capture.TestCode(req.Code)); err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

type readingReq struct {
	UnitID uuid.UUID `json:"unit_id"`
	Field  string    `json:"field"`
	Value  string    `json:"value"`
}

// SetFlowReading stores one field value for a unit in the open sub-form.
// PUT /api/v1/flows/{id}/tests/readings
func SetFlowReading(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	var req readingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := m.SetReading(req.UnitID, req.Field, req.Value); err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

type exclusionReq struct {
	UnitID uuid.UUID `json:"unit_id"`
	Level  string    `json:"level"` // "parent" or "leaf"
}

// ToggleFlowExclusion flips one unit in or out of the run. Entered values
// survive the round trip; restoring a unit brings them back.
// POST /api/v1/flows/{id}/tests/exclusions
func ToggleFlowExclusion(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	var req exclusionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var (
		excluded bool
		err      error
	)
	switch req.Level {
	case "parent":
		excluded, err = m.ToggleParentExclusion(req.UnitID)
	case "leaf":
		excluded, err = m.ToggleLeafExclusion(req.UnitID)
	default:
		http.Error(w, "level must be \"parent\" or \"leaf\"", http.StatusBadRequest)
		return
	}
	if err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"excluded": excluded,
		"flow":     snapshotFlow(m),
	})
}

// SaveFlowTest validates and aggregates the open sub-form. On success the
// payload is delivered and the flow returns to the hub; on incomplete readings
// the sub-form stays open and the offending units come back in the response.
// POST /api/v1/flows/{id}/tests/save
func SaveFlowTest(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	payload, err := m.SaveTest()
	if err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"payload": payload,
		"flow":    snapshotFlow(m),
	})
}

// CancelFlowTest abandons the open sub-form. The tag recorded when the test
// opened stays on the order.
// POST /api/v1/flows/{id}/tests/cancel
func CancelFlowTest(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	if err := m.CancelTest(); err != nil {
		flowError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotFlow(m))
}

// CloseFlow applies the smart-close policy. Inside a test it backs out to the
// hub and the flow survives; anywhere else the whole flow is torn down.
// POST /api/v1/flows/{id}/close
func CloseFlow(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	exited := m.Close()
	if exited {
		config.Store.DeleteFlow(m.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"exited": exited,
		"flow":   snapshotFlow(m),
	})
}

// FinishFlow delivers the accumulated order and terminates the flow.
// POST /api/v1/flows/{id}/finish
func FinishFlow(w http.ResponseWriter, r *http.Request) {
	m, ok := flowFromRequest(w, r)
	if !ok {
		return
	}
	order, err := m.Finish()
	if err != nil {
		flowError(w, err)
		return
	}
	config.Store.DeleteFlow(m.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}
