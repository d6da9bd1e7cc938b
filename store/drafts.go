package store

import (
	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/pkg/capture"
	"github.com/edsfield/edsbackend/pkg/editor"
)

// Draft sessions and capture flows are addressable server-side working state.
// Each draft is owned by exactly one editing session; deleting it discards
// the working state completely, with no partial commit.

func (s *Store) CreateStationDraft() *editor.StationDraft {
	d := editor.NewStationDraft()
	s.mu.Lock()
	s.stationDrafts[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *Store) StationDraft(id uuid.UUID) (*editor.StationDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.stationDrafts[id]
	return d, ok
}

func (s *Store) DeleteStationDraft(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stationDrafts[id]; !ok {
		return false
	}
	delete(s.stationDrafts, id)
	return true
}

func (s *Store) CreateTankDraft() *editor.TankDraft {
	d := editor.NewTankDraft(s)
	s.mu.Lock()
	s.tankDrafts[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *Store) TankDraft(id uuid.UUID) (*editor.TankDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tankDrafts[id]
	return d, ok
}

func (s *Store) DeleteTankDraft(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tankDrafts[id]; !ok {
		return false
	}
	delete(s.tankDrafts, id)
	return true
}

func (s *Store) CreateDispenserDraft() *editor.DispenserDraft {
	d := editor.NewDispenserDraft(s)
	s.mu.Lock()
	s.dispenserDrafts[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *Store) DispenserDraft(id uuid.UUID) (*editor.DispenserDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dispenserDrafts[id]
	return d, ok
}

func (s *Store) DeleteDispenserDraft(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dispenserDrafts[id]; !ok {
		return false
	}
	delete(s.dispenserDrafts, id)
	return true
}

// CreateFlow starts a capture flow backed by this store as both asset source
// and sink.
func (s *Store) CreateFlow() *capture.Machine {
	m := capture.NewMachine(s, s)
	s.mu.Lock()
	s.flows[m.ID] = m
	s.mu.Unlock()
	return m
}

func (s *Store) Flow(id uuid.UUID) (*capture.Machine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.flows[id]
	return m, ok
}

func (s *Store) DeleteFlow(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[id]; !ok {
		return false
	}
	delete(s.flows, id)
	return true
}
