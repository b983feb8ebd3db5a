package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/handler"
)

// --- Mock store ---

type mockDriverStore struct {
	drivers map[uuid.UUID]database.Driver
}

func newMockDriverStore() *mockDriverStore {
	return &mockDriverStore{drivers: make(map[uuid.UUID]database.Driver)}
}

func (m *mockDriverStore) ListDrivers(_ context.Context) ([]database.Driver, error) {
	var result []database.Driver
	for _, d := range m.drivers {
		result = append(result, d)
	}
	return result, nil
}

func (m *mockDriverStore) CreateDriver(_ context.Context, arg database.CreateDriverParams) (database.Driver, error) {
	d := database.Driver{
		ID:          uuid.New(),
		Name:        arg.Name,
		Vehicle:     arg.Vehicle,
		NumberPlate: arg.NumberPlate,
	}
	m.drivers[d.ID] = d
	return d, nil
}

func (m *mockDriverStore) DeleteDriver(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.drivers[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.drivers, id)
	return id, nil
}

func setupDriverRouter(store *mockDriverStore) *chi.Mux {
	h := handler.NewDriverHandler(store)
	r := chi.NewRouter()
	r.Route("/drivers", func(r chi.Router) {
		h.RegisterRoutes(r)
		h.RegisterAdminRoutes(r)
	})
	return r
}

// --- Tests ---

func TestDriverCreateAndList(t *testing.T) {
	store := newMockDriverStore()
	router := setupDriverRouter(store)

	rr := doRequest(t, router, "POST", "/drivers", map[string]string{
		"name":         "Joko",
		"vehicle":      "Motorbike",
		"number_plate": "B 1234 XY",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	rr = doRequest(t, router, "GET", "/drivers", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status: got %d, want %d", rr.Code, http.StatusOK)
	}
	drivers := decodeJSONList(t, rr)
	if len(drivers) != 1 {
		t.Fatalf("driver count: got %d, want 1", len(drivers))
	}
	first := drivers[0].(map[string]interface{})
	if first["number_plate"] != "B 1234 XY" {
		t.Errorf("number_plate: got %v, want B 1234 XY", first["number_plate"])
	}
}

func TestDriverCreate_MissingFields(t *testing.T) {
	router := setupDriverRouter(newMockDriverStore())

	rr := doRequest(t, router, "POST", "/drivers", map[string]string{
		"name": "Joko",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestDriverDelete(t *testing.T) {
	store := newMockDriverStore()
	d, _ := store.CreateDriver(context.Background(), database.CreateDriverParams{
		Name: "Joko", Vehicle: "Motorbike", NumberPlate: "B 1234 XY",
	})
	router := setupDriverRouter(store)

	rr := doRequest(t, router, "DELETE", "/drivers/"+d.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if len(store.drivers) != 0 {
		t.Errorf("driver count: got %d, want 0", len(store.drivers))
	}
}

func TestDriverDelete_NotFound(t *testing.T) {
	router := setupDriverRouter(newMockDriverStore())

	rr := doRequest(t, router, "DELETE", "/drivers/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
