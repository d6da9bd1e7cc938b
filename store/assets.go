package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
	"github.com/edsfield/edsbackend/pkg/capture"
)

// This file implements capture.AssetSource: the fixed asset hierarchies a
// test sub-form enumerates for one station.

func (s *Store) StationName(id uuid.UUID) (string, bool) {
	st, ok := s.Station(id)
	if !ok {
		return "", false
	}
	return st.Name, true
}

// fuelLabel resolves a fuel reference for display. A missing catalog entry
// degrades to a placeholder instead of failing.
func (s *Store) fuelLabel(id uuid.UUID) string {
	if f, ok := s.FuelType(id); ok {
		return f.Name
	}
	return "Unknown product"
}

// DispenserAssets returns the station's dispensers with their hoses as
// leaves, in registration order.
func (s *Store) DispenserAssets(stationID uuid.UUID) []capture.Parent {
	s.mu.RLock()
	dispensers := make([]models.Dispenser, 0)
	for _, d := range s.dispensers {
		if d.StationID == stationID {
			dispensers = append(dispensers, d)
		}
	}
	s.mu.RUnlock()

	parents := make([]capture.Parent, 0, len(dispensers))
	for _, d := range dispensers {
		leaves := make([]capture.Leaf, 0, len(d.Hoses))
		for _, h := range d.Hoses {
			leaves = append(leaves, capture.Leaf{
				ID:       h.ID,
				Label:    fmt.Sprintf("Pos %d (%s)", h.Position, s.fuelLabel(h.FuelTypeID)),
				Position: h.Position,
				Tags:     h.Tags.Values(),
			})
		}
		parents = append(parents, capture.Parent{
			ID:     d.ID,
			Code:   fmt.Sprintf("Dispenser %d", d.DispenserNumber),
			Leaves: leaves,
		})
	}
	return parents
}

// TankAssets returns the station's tanks with their compartments as leaves.
func (s *Store) TankAssets(stationID uuid.UUID) []capture.Parent {
	s.mu.RLock()
	tanks := make([]models.Tank, 0)
	for _, t := range s.tanks {
		if t.StationID == stationID {
			tanks = append(tanks, t)
		}
	}
	s.mu.RUnlock()

	parents := make([]capture.Parent, 0, len(tanks))
	for _, t := range tanks {
		leaves := make([]capture.Leaf, 0, len(t.Compartments))
		for i, c := range t.Compartments {
			label := c.Code
			if label == "" {
				label = s.fuelLabel(c.FuelTypeID)
			}
			leaves = append(leaves, capture.Leaf{
				ID:       c.ID,
				Label:    label,
				Position: i + 1,
				Tags:     c.Tags.Values(),
			})
		}
		parents = append(parents, capture.Parent{ID: t.ID, Code: t.Code, Leaves: leaves})
	}
	return parents
}
