package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edsfield/edsbackend/config"
	"github.com/edsfield/edsbackend/models"
	"github.com/edsfield/edsbackend/pkg/editor"
)

// The nested editing flow: a station draft owns its child tanks and
// dispensers and edits them in place by index.

func stationDraftFromRequest(w http.ResponseWriter, r *http.Request) (*editor.StationDraft, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return nil, false
	}
	d, ok := config.Store.StationDraft(id)
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return nil, false
	}
	return d, true
}

// CreateStationDraft opens a nested editing session.
// POST /api/v1/stations/drafts
func CreateStationDraft(w http.ResponseWriter, r *http.Request) {
	d := config.Store.CreateStationDraft()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

// GetStationDraft returns the current working state.
// GET /api/v1/stations/drafts/{id}
func GetStationDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

type fieldReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetStationDraftField applies one field edit.
// PUT /api/v1/stations/drafts/{id}/fields
func SetStationDraftField(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
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

type upsertTankReq struct {
	Index *int        `json:"index"`
	Tank  models.Tank `json:"tank"`
}

// UpsertStationDraftTank appends (index null) or replaces in place.
// POST /api/v1/stations/drafts/{id}/tanks
func UpsertStationDraftTank(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req upsertTankReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Tank.ID == uuid.Nil {
		req.Tank.ID = uuid.New()
	}
	if err := d.UpsertTank(req.Index, req.Tank); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// RemoveStationDraftTank deletes the child at index.
// DELETE /api/v1/stations/drafts/{id}/tanks/{index}
func RemoveStationDraftTank(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := d.RemoveTank(index); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

type upsertDispenserReq struct {
	Index     *int             `json:"index"`
	Dispenser models.Dispenser `json:"dispenser"`
}

// UpsertStationDraftDispenser appends (index null) or replaces in place.
// POST /api/v1/stations/drafts/{id}/dispensers
func UpsertStationDraftDispenser(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	var req upsertDispenserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Dispenser.ID == uuid.Nil {
		req.Dispenser.ID = uuid.New()
	}
	if err := d.UpsertDispenser(req.Index, req.Dispenser); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// RemoveStationDraftDispenser deletes the child at index.
// DELETE /api/v1/stations/drafts/{id}/dispensers/{index}
func RemoveStationDraftDispenser(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := d.RemoveDispenser(index); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// SubmitStationDraft validates, stores the station and discards the draft.
// POST /api/v1/stations/drafts/{id}/submit
func SubmitStationDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := stationDraftFromRequest(w, r)
	if !ok {
		return
	}
	station, err := d.Submit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	config.Store.SaveStation(station)
	for _, t := range station.Tanks {
		config.Store.SaveTank(t)
	}
	for _, disp := range station.Dispensers {
		config.Store.SaveDispenser(disp)
	}
	config.Store.DeleteStationDraft(d.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(station)
}

// DiscardStationDraft abandons the session; the working draft is gone.
// DELETE /api/v1/stations/drafts/{id}
func DiscardStationDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteStationDraft(id) {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
