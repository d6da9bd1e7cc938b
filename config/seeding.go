package config

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edsfield/edsbackend/models"
	"github.com/edsfield/edsbackend/store"
)

// SeedAll loads the read-only reference data (fuel catalog with derived tag
// lists, the known stations) and the demo users.
func SeedAll(s *store.Store) error {
	seedFuelTypes(s)
	seedStations(s)
	if err := seedUsers(s); err != nil {
		return err
	}
	return nil
}

// seedFuelTypes defines the product catalog. The tag list per fuel is the
// fixed set propagated into any hose or compartment that selects it.
func seedFuelTypes(s *store.Store) {
	fuels := []models.FuelType{
		{ID: uuid.New(), Name: "Gasolina Corriente", Color: "red", Tags: []string{"mg_roja", "corriente"}},
		{ID: uuid.New(), Name: "Diesel", Color: "yellow", Tags: []string{"mg_amarilla", "diesel"}},
		{ID: uuid.New(), Name: "Gasolina Extra", Color: "blue", Tags: []string{"mg_azul", "extra"}},
	}
	for _, f := range fuels {
		s.AddFuelType(f)
	}
	log.Printf("Seeded %d fuel types", len(fuels))
}

func seedStations(s *store.Store) {
	now := time.Now()
	coords := func(lat, lng float64) (*float64, *float64) { return &lat, &lng }

	lat1, lng1 := coords(4.6486, -74.0628)
	lat2, lng2 := coords(4.7545, -74.0450)
	lat3, lng3 := coords(4.5810, -74.1370)

	stations := []models.Station{
		{
			ID: uuid.New(), Name: "EDS Principal", BusinessName: "Inversiones Garcia SAS",
			NIT: "900.123.456-7", Address: "Cra 45 # 22-10", City: "Bogotá",
			ContactName: "Carlos García", ContactPhone: "3001234567", ContactPosition: "Administrador",
			Latitude: lat1, Longitude: lng1, Status: "Active", CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New(), Name: "EDS Norte", BusinessName: "Combustibles del Norte Ltda",
			NIT: "901.456.789-0", Address: "Autonorte Km 20", City: "Bogotá",
			ContactName: "Marta Ruiz", ContactPhone: "3109876543", ContactPosition: "Gerente",
			Latitude: lat2, Longitude: lng2, Status: "Active", CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New(), Name: "EDS Sur", BusinessName: "Estaciones del Sur SA",
			NIT: "830.222.111-3", Address: "Av Boyaca # 50", City: "Bogotá",
			ContactName: "Luis Pardo", ContactPhone: "3205551234", ContactPosition: "Jefe de patio",
			Latitude: lat3, Longitude: lng3, Status: "Active", CreatedAt: now, UpdatedAt: now,
		},
	}
	for _, st := range stations {
		s.SaveStation(st)
	}
	log.Printf("Seeded %d stations", len(stations))
}

// seedUsers creates the two demo accounts. Passwords match the usernames,
// same as the mock login this replaces; change them before exposing the
// service anywhere real.
func seedUsers(s *store.Store) error {
	demo := []struct {
		name, username, role string
	}{
		{"Administrator", "admin", models.RoleAdmin},
		{"Field Technician", "tech", models.RoleTech},
	}
	for _, u := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.username), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password for %s: %w", u.username, err)
		}
		s.SaveUser(models.User{
			ID:           uuid.New(),
			Name:         u.name,
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			CreatedAt:    time.Now(),
		})
	}
	log.Printf("Seeded %d users", len(demo))
	return nil
}
