package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edsfield/edsbackend/config"
	"github.com/edsfield/edsbackend/pkg/editor"
)

// ---- tank registry ----

// GetAllTanks lists stored tanks, optionally for one station.
// GET /api/v1/tanks?station_id={uuid}
func GetAllTanks(w http.ResponseWriter, r *http.Request) {
	tanks := config.Store.Tanks()
	if raw := r.URL.Query().Get("station_id"); raw != "" {
		stationID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid station_id", http.StatusBadRequest)
			return
		}
		filtered := tanks[:0]
		for _, t := range tanks {
			if t.StationID == stationID {
				filtered = append(filtered, t)
			}
		}
		tanks = filtered
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tanks": tanks,
		"count": len(tanks),
	})
}

// GetTank returns one tank with its compartments.
// GET /api/v1/tanks/{id}
func GetTank(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid tank id", http.StatusBadRequest)
		return
	}
	t, ok := config.Store.Tank(id)
	if !ok {
		http.Error(w, "tank not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// DeleteTank removes a tank record.
// DELETE /api/v1/tanks/{id}
func DeleteTank(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid tank id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteTank(id) {
		http.Error(w, "tank not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- tank draft sessions ----

func tankDraftFromRequest(w http.ResponseWriter, r *http.Request) (*editor.TankDraft, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return nil, false
	}
	d, ok := config.Store.TankDraft(id)
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return nil, false
	}
	return d, true
}

// CreateTankDraft opens a tank registration session. The new draft already
// carries one empty compartment.
// POST /api/v1/tanks/drafts
func CreateTankDraft(w http.ResponseWriter, r *http.Request) {
	d := config.Store.CreateTankDraft()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

// GetTankDraft returns the current working state.
// GET /api/v1/tanks/drafts/{id}
func GetTankDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SetTankDraftField applies one top-level field edit.
// PUT /api/v1/tanks/drafts/{id}/fields
func SetTankDraftField(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req fieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SetField(req.Field, req.Value); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

type dualReq struct {
	Dual bool `json:"dual"`
}

// SetTankDraftDual toggles dual-compartment mode. Enabling appends one empty
// compartment; disabling drops the tail one along with anything typed into it.
// PUT /api/v1/tanks/drafts/{id}/dual
func SetTankDraftDual(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req dualReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	d.SetDual(req.Dual)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

func compartmentIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid compartment index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// SetTankDraftCompartmentField applies one field edit on a compartment row.
// PUT /api/v1/tanks/drafts/{id}/compartments/{index}/fields
func SetTankDraftCompartmentField(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := compartmentIndex(w, r)
	if !ok {
		return
	}
	var req fieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SetCompartmentField(index, req.Field, req.Value); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

type fuelReq struct {
	FuelTypeID string `json:"fuel_type_id"`
}

// SelectTankDraftCompartmentFuel records the product choice for a compartment
// and propagates the fuel's derived tags into the compartment and the tank.
// PUT /api/v1/tanks/drafts/{id}/compartments/{index}/fuel
func SelectTankDraftCompartmentFuel(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := compartmentIndex(w, r)
	if !ok {
		return
	}
	var req fuelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SelectCompartmentFuel(index, req.FuelTypeID); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

type tagReq struct {
	Tag string `json:"tag"`
}

// AddTankDraftTag adds a manual tag at the tank level.
// POST /api/v1/tanks/drafts/{id}/tags
func AddTankDraftTag(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req tagReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	d.AddTag(req.Tag)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// RemoveTankDraftTag removes a tag at the tank level.
// DELETE /api/v1/tanks/drafts/{id}/tags/{tag}
func RemoveTankDraftTag(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	d.RemoveTag(mux.Vars(r)["tag"])
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// AddTankDraftCompartmentTag adds a manual tag on one compartment.
// POST /api/v1/tanks/drafts/{id}/compartments/{index}/tags
func AddTankDraftCompartmentTag(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := compartmentIndex(w, r)
	if !ok {
		return
	}
	var req tagReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.AddCompartmentTag(index, req.Tag); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// RemoveTankDraftCompartmentTag removes a tag on one compartment.
// DELETE /api/v1/tanks/drafts/{id}/compartments/{index}/tags/{tag}
func RemoveTankDraftCompartmentTag(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := compartmentIndex(w, r)
	if !ok {
		return
	}
	if err := d.RemoveCompartmentTag(index, mux.Vars(r)["tag"]); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SubmitTankDraft validates, stores the tank and discards the draft. On a
// validation failure the draft stays alive so the session can be corrected.
// POST /api/v1/tanks/drafts/{id}/submit
func SubmitTankDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := tankDraftFromRequest(w, r)
	if !ok {
		return
	}
	tank, err := d.Submit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	config.Store.SaveTank(tank)
	config.Store.DeleteTankDraft(d.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tank)
}

// DiscardTankDraft abandons the session without saving anything.
// DELETE /api/v1/tanks/drafts/{id}
func DiscardTankDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteTankDraft(id) {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
