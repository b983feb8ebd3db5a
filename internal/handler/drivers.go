package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resto-pos/api/internal/database"
)

// DriverStore defines the database methods needed by driver handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DriverStore interface {
	ListDrivers(ctx context.Context) ([]database.Driver, error)
	CreateDriver(ctx context.Context, arg database.CreateDriverParams) (database.Driver, error)
	DeleteDriver(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// DriverHandler handles delivery driver endpoints.
type DriverHandler struct {
	store DriverStore
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(store DriverStore) *DriverHandler {
	return &DriverHandler{store: store}
}

// RegisterRoutes registers read endpoints on the given Chi router.
func (h *DriverHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterAdminRoutes registers write endpoints on the given Chi router.
func (h *DriverHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createDriverRequest struct {
	Name        string `json:"name"`
	Vehicle     string `json:"vehicle"`
	NumberPlate string `json:"number_plate"`
}

type driverResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Vehicle     string    `json:"vehicle"`
	NumberPlate string    `json:"number_plate"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Handlers ---

// List handles GET /drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.store.ListDrivers(r.Context())
	if err != nil {
		log.Printf("ERROR: list drivers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]driverResponse, len(drivers))
	for i, d := range drivers {
		resp[i] = toDriverResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Vehicle == "" || req.NumberPlate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, vehicle and number_plate are required"})
		return
	}

	driver, err := h.store.CreateDriver(r.Context(), database.CreateDriverParams{
		Name:        req.Name,
		Vehicle:     req.Vehicle,
		NumberPlate: req.NumberPlate,
	})
	if err != nil {
		log.Printf("ERROR: create driver: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toDriverResponse(driver))
}

// Delete handles DELETE /drivers/{id}.
func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid driver ID"})
		return
	}

	if _, err := h.store.DeleteDriver(r.Context(), driverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "driver not found"})
			return
		}
		log.Printf("ERROR: delete driver: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "driver deleted"})
}

func toDriverResponse(d database.Driver) driverResponse {
	return driverResponse{
		ID:          d.ID,
		Name:        d.Name,
		Vehicle:     d.Vehicle,
		NumberPlate: d.NumberPlate,
		CreatedAt:   d.CreatedAt,
	}
}
