package routes

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	_ "github.com/edsfield/edsbackend/docs"
	"github.com/edsfield/edsbackend/handlers"
	"github.com/edsfield/edsbackend/middleware"
	"github.com/edsfield/edsbackend/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/token", handlers.GetCurrentUser).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// User profile endpoint
	api.HandleFunc("/profile", handleProfile).Methods("GET")

	registerCatalogRoutes(api)
	registerStationRoutes(api)
	registerTankRoutes(api)
	registerDispenserRoutes(api)
	registerWorkOrderRoutes(api)

	return r
}

// handleProfile returns user profile information
func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	user := middleware.GetUser(r)
	response := map[string]interface{}{
		"userID":   claims.UserID,
		"name":     user.Name,
		"username": user.Username,
		"role":     user.Role,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// adminOnly gates a handler behind the admin role.
func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole([]string{models.RoleAdmin}, h)
}

// sessionMu serializes every request that touches a draft session or a
// capture flow. Each session has a single operator, but nothing stops two
// requests for the same id from landing together, and the working state
// behind the id is not internally synchronized; the store's lock only
// guards its maps.
var sessionMu sync.Mutex

// locked runs a session handler under the session lock.
func locked(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionMu.Lock()
		defer sessionMu.Unlock()
		h(w, r)
	})
}

// adminSession gates a draft-session handler behind the admin role and the
// session lock. The role check runs first so a rejected request never waits
// on the lock.
func adminSession(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole([]string{models.RoleAdmin}, locked(h))
}

func registerCatalogRoutes(api *mux.Router) {
	api.HandleFunc("/fuel-types", handlers.GetFuelTypes).Methods("GET")
	api.HandleFunc("/test-types", handlers.GetTestTypes).Methods("GET")
}

// registerStationRoutes wires the station registry, the flat registration
// flow and the nested draft sessions. Registration mutations are admin-only,
// mirroring how the original gates its registration region by role. Literal
// prefixes (drafts, nearby) are registered before the {id} routes so they are
// never captured as ids.
func registerStationRoutes(api *mux.Router) {
	api.HandleFunc("/stations/nearby", handlers.GetNearbyStations).Methods("GET")

	api.Handle("/stations/drafts", adminSession(handlers.CreateStationDraft)).Methods("POST")
	api.Handle("/stations/drafts/{id}", adminSession(handlers.GetStationDraft)).Methods("GET")
	api.Handle("/stations/drafts/{id}", adminSession(handlers.DiscardStationDraft)).Methods("DELETE")
	api.Handle("/stations/drafts/{id}/fields", adminSession(handlers.SetStationDraftField)).Methods("PUT")
	api.Handle("/stations/drafts/{id}/tanks", adminSession(handlers.UpsertStationDraftTank)).Methods("POST")
	api.Handle("/stations/drafts/{id}/tanks/{index}", adminSession(handlers.RemoveStationDraftTank)).Methods("DELETE")
	api.Handle("/stations/drafts/{id}/dispensers", adminSession(handlers.UpsertStationDraftDispenser)).Methods("POST")
	api.Handle("/stations/drafts/{id}/dispensers/{index}", adminSession(handlers.RemoveStationDraftDispenser)).Methods("DELETE")
	api.Handle("/stations/drafts/{id}/submit", adminSession(handlers.SubmitStationDraft)).Methods("POST")

	api.HandleFunc("/stations", handlers.GetAllStations).Methods("GET")
	api.Handle("/stations", adminOnly(handlers.CreateStation)).Methods("POST")
	api.HandleFunc("/stations/{id}", handlers.GetStation).Methods("GET")
	api.Handle("/stations/{id}", adminOnly(handlers.UpdateStation)).Methods("PUT")
	api.Handle("/stations/{id}", adminOnly(handlers.DeleteStation)).Methods("DELETE")
}

func registerTankRoutes(api *mux.Router) {
	api.Handle("/tanks/drafts", adminSession(handlers.CreateTankDraft)).Methods("POST")
	api.Handle("/tanks/drafts/{id}", adminSession(handlers.GetTankDraft)).Methods("GET")
	api.Handle("/tanks/drafts/{id}", adminSession(handlers.DiscardTankDraft)).Methods("DELETE")
	api.Handle("/tanks/drafts/{id}/fields", adminSession(handlers.SetTankDraftField)).Methods("PUT")
	api.Handle("/tanks/drafts/{id}/dual", adminSession(handlers.SetTankDraftDual)).Methods("PUT")
	api.Handle("/tanks/drafts/{id}/tags", adminSession(handlers.AddTankDraftTag)).Methods("POST")
	api.Handle("/tanks/drafts/{id}/tags/{tag}", adminSession(handlers.RemoveTankDraftTag)).Methods("DELETE")
	api.Handle("/tanks/drafts/{id}/compartments/{index}/fields", adminSession(handlers.SetTankDraftCompartmentField)).Methods("PUT")
	api.Handle("/tanks/drafts/{id}/compartments/{index}/fuel", adminSession(handlers.SelectTankDraftCompartmentFuel)).Methods("PUT")
	api.Handle("/tanks/drafts/{id}/compartments/{index}/tags", adminSession(handlers.AddTankDraftCompartmentTag)).Methods("POST")
	api.Handle("/tanks/drafts/{id}/compartments/{index}/tags/{tag}", adminSession(handlers.RemoveTankDraftCompartmentTag)).Methods("DELETE")
	api.Handle("/tanks/drafts/{id}/submit", adminSession(handlers.SubmitTankDraft)).Methods("POST")

	api.HandleFunc("/tanks", handlers.GetAllTanks).Methods("GET")
	api.HandleFunc("/tanks/{id}", handlers.GetTank).Methods("GET")
	api.Handle("/tanks/{id}", adminOnly(handlers.DeleteTank)).Methods("DELETE")
}

func registerDispenserRoutes(api *mux.Router) {
	api.Handle("/dispensers/drafts", adminSession(handlers.CreateDispenserDraft)).Methods("POST")
	api.Handle("/dispensers/drafts/{id}", adminSession(handlers.GetDispenserDraft)).Methods("GET")
	api.Handle("/dispensers/drafts/{id}", adminSession(handlers.DiscardDispenserDraft)).Methods("DELETE")
	api.Handle("/dispensers/drafts/{id}/fields", adminSession(handlers.SetDispenserDraftField)).Methods("PUT")
	api.Handle("/dispensers/drafts/{id}/hose-count", adminSession(handlers.SetDispenserDraftHoseCount)).Methods("PUT")
	api.Handle("/dispensers/drafts/{id}/tags", adminSession(handlers.AddDispenserDraftTag)).Methods("POST")
	api.Handle("/dispensers/drafts/{id}/tags/{tag}", adminSession(handlers.RemoveDispenserDraftTag)).Methods("DELETE")
	api.Handle("/dispensers/drafts/{id}/hoses/{index}/nii", adminSession(handlers.SetDispenserDraftHoseNII)).Methods("PUT")
	api.Handle("/dispensers/drafts/{id}/hoses/{index}/fuel", adminSession(handlers.SelectDispenserDraftHoseFuel)).Methods("PUT")
	api.Handle("/dispensers/drafts/{id}/hoses/{index}/tags", adminSession(handlers.AddDispenserDraftHoseTag)).Methods("POST")
	api.Handle("/dispensers/drafts/{id}/hoses/{index}/tags/{tag}", adminSession(handlers.RemoveDispenserDraftHoseTag)).Methods("DELETE")
	api.Handle("/dispensers/drafts/{id}/submit", adminSession(handlers.SubmitDispenserDraft)).Methods("POST")

	api.HandleFunc("/dispensers", handlers.GetAllDispensers).Methods("GET")
	api.HandleFunc("/dispensers/{id}", handlers.GetDispenser).Methods("GET")
	api.Handle("/dispensers/{id}", adminOnly(handlers.DeleteDispenser)).Methods("DELETE")
}

// registerWorkOrderRoutes wires the finished-order log, the exports, the test
// result log and the capture flow state machine.
func registerWorkOrderRoutes(api *mux.Router) {
	api.HandleFunc("/workorders", handlers.GetAllWorkOrders).Methods("GET")
	api.HandleFunc("/workorders/export/excel", handlers.ExportWorkOrdersToExcel).Methods("GET")
	api.HandleFunc("/workorders/export/csv", handlers.ExportWorkOrdersToCSV).Methods("GET")
	api.HandleFunc("/test-results", handlers.GetTestResults).Methods("GET")

	api.Handle("/flows", locked(handlers.CreateFlow)).Methods("POST")
	api.Handle("/flows/{id}", locked(handlers.GetFlow)).Methods("GET")
	api.Handle("/flows/{id}/draft", locked(handlers.CreateFlowDraft)).Methods("POST")
	api.Handle("/flows/{id}/tests", locked(handlers.OpenFlowTest)).Methods("POST")
	api.Handle("/flows/{id}/tests/readings", locked(handlers.SetFlowReading)).Methods("PUT")
	api.Handle("/flows/{id}/tests/exclusions", locked(handlers.ToggleFlowExclusion)).Methods("POST")
	api.Handle("/flows/{id}/tests/save", locked(handlers.SaveFlowTest)).Methods("POST")
	api.Handle("/flows/{id}/tests/cancel", locked(handlers.CancelFlowTest)).Methods("POST")
	api.Handle("/flows/{id}/close", locked(handlers.CloseFlow)).Methods("POST")
	api.Handle("/flows/{id}/finish", locked(handlers.FinishFlow)).Methods("POST")
}
