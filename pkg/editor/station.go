package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// StationDraft is the working state of a station aggregate. The nested flow
// edits child tanks and dispensers in place by index; the flat registration
// flow just fills the scalar fields and submits.
type StationDraft struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	BusinessName    string    `json:"business_name"`
	NIT             string    `json:"nit"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	ContactName     string    `json:"contact_name"`
	ContactPhone    string    `json:"contact_phone"`
	ContactPosition string    `json:"contact_position"`
	Latitude        string    `json:"latitude"`
	Longitude       string    `json:"longitude"`

	Tanks      []models.Tank      `json:"tanks"`
	Dispensers []models.Dispenser `json:"dispensers"`
}

func NewStationDraft() *StationDraft {
	return &StationDraft{ID: uuid.New()}
}

func (s *StationDraft) SetField(name, value string) error {
	switch name {
	case "name":
		s.Name = value
	case "business_name":
		s.BusinessName = value
	case "nit":
		s.NIT = value
	case "address":
		s.Address = value
	case "city":
		s.City = value
	case "contact_name":
		s.ContactName = value
	case "contact_phone":
		s.ContactPhone = value
	case "contact_position":
		s.ContactPosition = value
	case "latitude":
		s.Latitude = value
	case "longitude":
		s.Longitude = value
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// UpsertTank appends when index is nil, otherwise replaces the child at that
// index in place so its position is preserved.
func (s *StationDraft) UpsertTank(index *int, tank models.Tank) error {
	if index == nil {
		s.Tanks = append(s.Tanks, tank)
		return nil
	}
	if *index < 0 || *index >= len(s.Tanks) {
		return invalid("tanks", fmt.Sprintf("no tank at index %d", *index))
	}
	s.Tanks[*index] = tank
	return nil
}

// RemoveTank deletes the child at index; later children shift down one slot.
func (s *StationDraft) RemoveTank(index int) error {
	if index < 0 || index >= len(s.Tanks) {
		return invalid("tanks", fmt.Sprintf("no tank at index %d", index))
	}
	s.Tanks = append(s.Tanks[:index], s.Tanks[index+1:]...)
	return nil
}

func (s *StationDraft) UpsertDispenser(index *int, d models.Dispenser) error {
	if index == nil {
		s.Dispensers = append(s.Dispensers, d)
		return nil
	}
	if *index < 0 || *index >= len(s.Dispensers) {
		return invalid("dispensers", fmt.Sprintf("no dispenser at index %d", *index))
	}
	s.Dispensers[*index] = d
	return nil
}

func (s *StationDraft) RemoveDispenser(index int) error {
	if index < 0 || index >= len(s.Dispensers) {
		return invalid("dispensers", fmt.Sprintf("no dispenser at index %d", index))
	}
	s.Dispensers = append(s.Dispensers[:index], s.Dispensers[index+1:]...)
	return nil
}

func parseCoordinate(field, raw string, min, max float64) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, invalid(field, "must be a number")
	}
	if v < min || v > max {
		return nil, invalid(field, fmt.Sprintf("must be between %g and %g", min, max))
	}
	return &v, nil
}

// Submit validates the draft and builds the immutable station record.
func (s *StationDraft) Submit() (models.Station, error) {
	if strings.TrimSpace(s.Name) == "" {
		return models.Station{}, invalid("name", "enter the station name")
	}
	if strings.TrimSpace(s.BusinessName) == "" {
		return models.Station{}, invalid("business_name", "enter the business name")
	}
	if strings.TrimSpace(s.NIT) == "" {
		return models.Station{}, invalid("nit", "enter the tax id")
	}
	lat, err := parseCoordinate("latitude", s.Latitude, -90, 90)
	if err != nil {
		return models.Station{}, err
	}
	lng, err := parseCoordinate("longitude", s.Longitude, -180, 180)
	if err != nil {
		return models.Station{}, err
	}
	if (lat == nil) != (lng == nil) {
		return models.Station{}, invalid("longitude", "latitude and longitude must be set together")
	}

	now := time.Now()
	station := models.Station{
		ID:              uuid.New(),
		Name:            s.Name,
		BusinessName:    s.BusinessName,
		NIT:             s.NIT,
		Address:         s.Address,
		City:            s.City,
		ContactName:     s.ContactName,
		ContactPhone:    s.ContactPhone,
		ContactPosition: s.ContactPosition,
		Latitude:        lat,
		Longitude:       lng,
		Status:          "Active",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(s.Tanks) > 0 {
		station.Tanks = append([]models.Tank(nil), s.Tanks...)
	}
	if len(s.Dispensers) > 0 {
		station.Dispensers = append([]models.Dispenser(nil), s.Dispensers...)
	}
	for i := range station.Tanks {
		station.Tanks[i].StationID = station.ID
	}
	for i := range station.Dispensers {
		station.Dispensers[i].StationID = station.ID
	}
	return station, nil
}
