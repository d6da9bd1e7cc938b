package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edsfield/edsbackend/config"
	"github.com/edsfield/edsbackend/pkg/editor"
	"github.com/edsfield/edsbackend/utils"
)

// GetAllStations lists stations. A "q" query param filters by
// case-insensitive name substring, which is what the station pickers use.
// GET /api/v1/stations?q=norte
func GetAllStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	stations := config.Store.Stations()
	if q != "" {
		stations = config.Store.SearchStations(q)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stations": stations,
		"count":    len(stations),
	})
}

// GetStation returns one station.
// GET /api/v1/stations/{id}
func GetStation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	st, ok := config.Store.Station(id)
	if !ok {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

type stationReq struct {
	Name            string `json:"name"`
	BusinessName    string `json:"business_name"`
	NIT             string `json:"nit"`
	Address         string `json:"address"`
	City            string `json:"city"`
	ContactName     string `json:"contact_name"`
	ContactPhone    string `json:"contact_phone"`
	ContactPosition string `json:"contact_position"`
	Latitude        string `json:"latitude"`
	Longitude       string `json:"longitude"`
}

func (req stationReq) fill(d *editor.StationDraft) {
	d.Name = req.Name
	d.BusinessName = req.BusinessName
	d.NIT = req.NIT
	d.Address = req.Address
	d.City = req.City
	d.ContactName = req.ContactName
	d.ContactPhone = req.ContactPhone
	d.ContactPosition = req.ContactPosition
	d.Latitude = req.Latitude
	d.Longitude = req.Longitude
}

// CreateStation is the flat registration flow: one submitted form, no nested
// children.
// POST /api/v1/stations
func CreateStation(w http.ResponseWriter, r *http.Request) {
	var req stationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	draft := editor.NewStationDraft()
	req.fill(draft)
	station, err := draft.Submit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	config.Store.SaveStation(station)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(station)
}

// UpdateStation replaces the editable fields of an existing station.
// PUT /api/v1/stations/{id}
func UpdateStation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	existing, ok := config.Store.Station(id)
	if !ok {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}
	var req stationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	draft := editor.NewStationDraft()
	req.fill(draft)
	updated, err := draft.Submit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	config.Store.SaveStation(updated)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteStation removes a station record.
// DELETE /api/v1/stations/{id}
func DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	if !config.Store.DeleteStation(id) {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNearbyStations returns stations with coordinates inside the radius.
// GET /api/v1/stations/nearby?lat=4.65&lng=-74.06&radius=5000
func GetNearbyStations(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		http.Error(w, "lat and lng are required numbers", http.StatusBadRequest)
		return
	}
	center := utils.Coordinate{Lat: lat, Lng: lng}
	if err := utils.ValidateCoordinate(center); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	radius := 5000.0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			http.Error(w, "radius must be a positive number of meters", http.StatusBadRequest)
			return
		}
		radius = v
	}
	stations := config.Store.NearbyStations(center, radius)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stations": stations,
		"count":    len(stations),
	})
}

// GetFuelTypes exposes the read-only fuel catalog with its derived tag lists.
// GET /api/v1/fuel-types
func GetFuelTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fuel_types": config.Store.FuelTypes(),
	})
}
