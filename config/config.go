package config

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/edsfield/edsbackend/store"
)

// Store is the process-wide in-memory store. All data is volatile: a restart
// starts from the seed set again.
var Store *store.Store

func Connect() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	Store = store.NewStore()

	if err := SeedAll(Store); err != nil {
		log.Fatal("Failed to seed reference data:", err)
	}
}
