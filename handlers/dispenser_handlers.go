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

// ---- dispenser registry ----

// GetAllDispensers lists stored dispensers, optionally for one station.
// GET /api/v1/dispensers?station_id={uuid}
func GetAllDispensers(w http.ResponseWriter, r *http.Request) {
	dispensers := config.Store.Dispensers()
	if raw := r.URL.Query().Get("station_id"); raw != "" {
		stationID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid station_id", http.StatusBadRequest)
			return
		}
		filtered := dispensers[:0]
		for _, d := range dispensers {
			if d.StationID == stationID {
				filtered = append(filtered, d)
			}
		}
		dispensers = filtered
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"dispensers": dispensers,
		"count":      len(dispensers),
	})
}

// GetDispenser returns one dispenser with its hoses.
// GET /api/v1/dispensers/{id}
func GetDispenser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid dispenser id", http.StatusBadRequest)
		return
	}
	d, ok := config.Store.Dispenser(id)
	if !ok {
		http.Error(w, "dispenser not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// DeleteDispenser removes a dispenser record.
// DELETE /api/v1/dispensers/{id}
func DeleteDispenser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid dispenser id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteDispenser(id) {
		http.Error(w, "dispenser not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- dispenser draft sessions ----

func dispenserDraftFromRequest(w http.ResponseWriter, r *http.Request) (*editor.DispenserDraft, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return nil, false
	}
	d, ok := config.Store.DispenserDraft(id)
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return nil, false
	}
	return d, true
}

// CreateDispenserDraft opens a dispenser registration session.
// POST /api/v1/dispensers/drafts
func CreateDispenserDraft(w http.ResponseWriter, r *http.Request) {
	d := config.Store.CreateDispenserDraft()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

// GetDispenserDraft returns the current working state.
// GET /api/v1/dispensers/drafts/{id}
func GetDispenserDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SetDispenserDraftField applies one top-level field edit.
// PUT /api/v1/dispensers/drafts/{id}/fields
func SetDispenserDraftField(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
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

type hoseCountReq struct {
	Count string `json:"count"`
}

// SetDispenserDraftHoseCount resizes the hose list. The count arrives as the
// raw text input: growing appends empty rows, shrinking truncates the tail,
// and an empty string leaves the list untouched.
// PUT /api/v1/dispensers/drafts/{id}/hose-count
func SetDispenserDraftHoseCount(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req hoseCountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SetHoseCount(req.Count); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

func hoseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid hose index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

type hoseNIIReq struct {
	NII string `json:"nii"`
}

// SetDispenserDraftHoseNII updates the NII of one hose row.
// PUT /api/v1/dispensers/drafts/{id}/hoses/{index}/nii
func SetDispenserDraftHoseNII(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := hoseIndex(w, r)
	if !ok {
		return
	}
	var req hoseNIIReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SetHoseNII(index, req.NII); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SelectDispenserDraftHoseFuel records the product choice for a hose and
// propagates the fuel's derived tags into the hose and the dispenser.
// PUT /api/v1/dispensers/drafts/{id}/hoses/{index}/fuel
func SelectDispenserDraftHoseFuel(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := hoseIndex(w, r)
	if !ok {
		return
	}
	var req fuelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.SelectHoseFuel(index, req.FuelTypeID); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// AddDispenserDraftTag adds a manual tag at the dispenser level.
// POST /api/v1/dispensers/drafts/{id}/tags
func AddDispenserDraftTag(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
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

// RemoveDispenserDraftTag removes a tag at the dispenser level.
// DELETE /api/v1/dispensers/drafts/{id}/tags/{tag}
func RemoveDispenserDraftTag(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	d.RemoveTag(mux.Vars(r)["tag"])
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// AddDispenserDraftHoseTag adds a manual tag on one hose.
// POST /api/v1/dispensers/drafts/{id}/hoses/{index}/tags
func AddDispenserDraftHoseTag(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := hoseIndex(w, r)
	if !ok {
		return
	}
	var req tagReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := d.AddHoseTag(index, req.Tag); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// RemoveDispenserDraftHoseTag removes a tag on one hose.
// DELETE /api/v1/dispensers/drafts/{id}/hoses/{index}/tags/{tag}
func RemoveDispenserDraftHoseTag(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, ok := hoseIndex(w, r)
	if !ok {
		return
	}
	if err := d.RemoveHoseTag(index, mux.Vars(r)["tag"]); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SubmitDispenserDraft validates, stores the dispenser and discards the draft.
// On a validation failure the draft stays alive so the session can be
// corrected.
// POST /api/v1/dispensers/drafts/{id}/submit
func SubmitDispenserDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := dispenserDraftFromRequest(w, r)
	if !ok {
		return
	}
	dispenser, err := d.Submit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	config.Store.SaveDispenser(dispenser)
	config.Store.DeleteDispenserDraft(d.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dispenser)
}

// DiscardDispenserDraft abandons the session without saving anything.
// DELETE /api/v1/dispensers/drafts/{id}
func DiscardDispenserDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteDispenserDraft(id) {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
