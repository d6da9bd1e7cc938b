// Package store holds every record the service knows about in volatile
// process memory. It doubles as the catalog for the editor, the asset source
// and persistence sink for the capture flow, and the draft registry for both.
// Nothing here touches the network or the disk.
package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
	"github.com/edsfield/edsbackend/pkg/capture"
	"github.com/edsfield/edsbackend/pkg/editor"
	"github.com/edsfield/edsbackend/utils"
)

type Store struct {
	mu sync.RWMutex

	fuelTypes []models.FuelType

	stations   []models.Station
	tanks      []models.Tank
	dispensers []models.Dispenser

	users map[uuid.UUID]models.User

	workOrders  []models.WorkOrder
	testResults []capture.TestPayload

	stationDrafts   map[uuid.UUID]*editor.StationDraft
	tankDrafts      map[uuid.UUID]*editor.TankDraft
	dispenserDrafts map[uuid.UUID]*editor.DispenserDraft
	flows           map[uuid.UUID]*capture.Machine
}

func NewStore() *Store {
	return &Store{
		users:           make(map[uuid.UUID]models.User),
		stationDrafts:   make(map[uuid.UUID]*editor.StationDraft),
		tankDrafts:      make(map[uuid.UUID]*editor.TankDraft),
		dispenserDrafts: make(map[uuid.UUID]*editor.DispenserDraft),
		flows:           make(map[uuid.UUID]*capture.Machine),
	}
}

// ---- fuel catalog (read-only reference data) ----

func (s *Store) AddFuelType(f models.FuelType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuelTypes = append(s.fuelTypes, f)
}

// FuelType implements editor.Catalog.
func (s *Store) FuelType(id uuid.UUID) (models.FuelType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.fuelTypes {
		if f.ID == id {
			return f, true
		}
	}
	return models.FuelType{}, false
}

func (s *Store) FuelTypes() []models.FuelType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FuelType(nil), s.fuelTypes...)
}

// ---- stations ----

// SaveStation inserts or replaces by id.
func (s *Store) SaveStation(st models.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stations {
		if s.stations[i].ID == st.ID {
			s.stations[i] = st
			return
		}
	}
	s.stations = append(s.stations, st)
}

func (s *Store) Station(id uuid.UUID) (models.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.stations {
		if st.ID == id {
			return st, true
		}
	}
	return models.Station{}, false
}

func (s *Store) Stations() []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Station(nil), s.stations...)
}

// SearchStations matches station names by case-insensitive substring.
func (s *Store) SearchStations(query string) []models.Station {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Station
	for _, st := range s.stations {
		if strings.Contains(strings.ToLower(st.Name), q) {
			out = append(out, st)
		}
	}
	return out
}

// NearbyStations returns stations with coordinates inside the radius.
func (s *Store) NearbyStations(center utils.Coordinate, radiusMeters float64) []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Station
	for _, st := range s.stations {
		if st.Latitude == nil || st.Longitude == nil {
			continue
		}
		if utils.WithinRadius(center, utils.Coordinate{Lat: *st.Latitude, Lng: *st.Longitude}, radiusMeters) {
			out = append(out, st)
		}
	}
	return out
}

func (s *Store) DeleteStation(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stations {
		if s.stations[i].ID == id {
			s.stations = append(s.stations[:i], s.stations[i+1:]...)
			return true
		}
	}
	return false
}

// ---- tanks ----

func (s *Store) SaveTank(t models.Tank) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tanks {
		if s.tanks[i].ID == t.ID {
			s.tanks[i] = t
			return
		}
	}
	s.tanks = append(s.tanks, t)
}

func (s *Store) Tank(id uuid.UUID) (models.Tank, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tanks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tank{}, false
}

func (s *Store) Tanks() []models.Tank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tank(nil), s.tanks...)
}

func (s *Store) DeleteTank(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tanks {
		if s.tanks[i].ID == id {
			s.tanks = append(s.tanks[:i], s.tanks[i+1:]...)
			return true
		}
	}
	return false
}

// ---- dispensers ----

func (s *Store) SaveDispenser(d models.Dispenser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dispensers {
		if s.dispensers[i].ID == d.ID {
			s.dispensers[i] = d
			return
		}
	}
	s.dispensers = append(s.dispensers, d)
}

func (s *Store) Dispenser(id uuid.UUID) (models.Dispenser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.dispensers {
		if d.ID == id {
			return d, true
		}
	}
	return models.Dispenser{}, false
}

func (s *Store) Dispensers() []models.Dispenser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Dispenser(nil), s.dispensers...)
}

func (s *Store) DeleteDispenser(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dispensers {
		if s.dispensers[i].ID == id {
			s.dispensers = append(s.dispensers[:i], s.dispensers[i+1:]...)
			return true
		}
	}
	return false
}

// ---- users ----

func (s *Store) SaveUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) User(id uuid.UUID) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UserByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// ---- work orders and test results (capture.Sink) ----

// SaveWorkOrder prepends so listings show newest first.
func (s *Store) SaveWorkOrder(order models.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workOrders = append([]models.WorkOrder{order}, s.workOrders...)
	return nil
}

func (s *Store) WorkOrders() []models.WorkOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WorkOrder(nil), s.workOrders...)
}

// SaveTestResult keeps delivered payloads in a side log. They are not merged
// back into the work order; the order only ever carries the test codes.
func (s *Store) SaveTestResult(payload capture.TestPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testResults = append(s.testResults, payload)
	return nil
}

func (s *Store) TestResults() []capture.TestPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]capture.TestPayload(nil), s.testResults...)
}
