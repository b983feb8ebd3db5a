package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/storage"
	"github.com/shopspring/decimal"
)

// maxImageSize caps menu image uploads at 5 MiB.
const maxImageSize = 5 << 20

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	RestockMenuItem(ctx context.Context, arg database.RestockMenuItemParams) (database.MenuItem, error)
}

// MenuHandler handles menu catalog endpoints.
type MenuHandler struct {
	store    MenuStore
	uploader storage.Uploader
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, uploader storage.Uploader) *MenuHandler {
	return &MenuHandler{store: store, uploader: uploader}
}

// RegisterRoutes registers read endpoints available to all staff.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers the catalog mutation endpoints.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/restock", h.Restock)
}

// --- Response types ---

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Cost        string    `json:"cost"`
	NetProfit   string    `json:"net_profit"`
	CurrentQty  int32     `json:"current_qty"`
	MinimumQty  int32     `json:"minimum_qty"`
	LowStock    bool      `json:"low_stock"`
	ImageUrl    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type restockRequest struct {
	Quantity int32 `json:"quantity"`
}

// --- Handlers ---

// List handles GET /menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /menus/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create handles POST /menus. The body is multipart/form-data so the menu
// image can ride along with the fields.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, errMsg := h.parseMenuForm(r)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	url, err := h.uploadImage(r)
	if err != nil {
		log.Printf("ERROR: upload menu image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "image upload failed"})
		return
	}
	if url == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image is required"})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        fields.name,
		Category:    fields.category,
		Description: fields.description,
		Price:       decimalToNumeric(fields.price),
		Cost:        decimalToNumeric(fields.cost),
		NetProfit:   decimalToNumeric(fields.price.Sub(fields.cost)),
		CurrentQty:  fields.currentQty,
		MinimumQty:  fields.minimumQty,
		ImageUrl:    pgtype.Text{String: url, Valid: true},
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /menus/{id}. Fields absent from the form keep their
// current values; net_profit is recomputed from the effective price and cost.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	current, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	name := current.Name
	if v := r.FormValue("name"); v != "" {
		name = v
	}
	category := current.Category
	if v := r.FormValue("category"); v != "" {
		category = pgtype.Text{String: v, Valid: true}
	}
	description := current.Description
	if v := r.FormValue("description"); v != "" {
		description = pgtype.Text{String: v, Valid: true}
	}

	price := numericToDecimal(current.Price)
	if v := r.FormValue("price"); v != "" {
		price, err = decimal.NewFromString(v)
		if err != nil || price.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			return
		}
	}
	cost := numericToDecimal(current.Cost)
	if v := r.FormValue("cost"); v != "" {
		cost, err = decimal.NewFromString(v)
		if err != nil || cost.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cost"})
			return
		}
	}

	currentQty := current.CurrentQty
	if v := r.FormValue("current_qty"); v != "" {
		currentQty, err = parseQty(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid current_qty"})
			return
		}
	}
	minimumQty := current.MinimumQty
	if v := r.FormValue("minimum_qty"); v != "" {
		minimumQty, err = parseQty(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid minimum_qty"})
			return
		}
	}

	// A new upload replaces the image; otherwise the old one stays.
	imageURL := current.ImageUrl
	url, err := h.uploadImage(r)
	if err != nil {
		log.Printf("ERROR: upload menu image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "image upload failed"})
		return
	}
	if url != "" {
		imageURL = pgtype.Text{String: url, Valid: true}
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		Name:        name,
		Category:    category,
		Description: description,
		Price:       decimalToNumeric(price),
		Cost:        decimalToNumeric(cost),
		NetProfit:   decimalToNumeric(price.Sub(cost)),
		CurrentQty:  currentQty,
		MinimumQty:  minimumQty,
		ImageUrl:    imageURL,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /menus/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

// Restock handles POST /menus/{id}/restock. It only adds to the quantity on
// hand; thresholds and prices are not touched here.
func (h *MenuHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
		return
	}

	item, err := h.store.RestockMenuItem(r.Context(), database.RestockMenuItemParams{
		ID:    id,
		Delta: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: restock menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// --- Helpers ---

type menuFormFields struct {
	name        string
	category    pgtype.Text
	description pgtype.Text
	price       decimal.Decimal
	cost        decimal.Decimal
	currentQty  int32
	minimumQty  int32
}

// parseMenuForm reads and validates the multipart fields shared by create
// and update. Returns a non-empty message on validation failure.
func (h *MenuHandler) parseMenuForm(r *http.Request) (menuFormFields, string) {
	var f menuFormFields

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return f, "invalid multipart form"
	}

	f.name = r.FormValue("name")
	if f.name == "" {
		return f, "name is required"
	}

	if v := r.FormValue("category"); v != "" {
		f.category = pgtype.Text{String: v, Valid: true}
	}
	if v := r.FormValue("description"); v != "" {
		f.description = pgtype.Text{String: v, Valid: true}
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		return f, "invalid price"
	}
	f.price = price

	cost := decimal.Zero
	if v := r.FormValue("cost"); v != "" {
		cost, err = decimal.NewFromString(v)
		if err != nil || cost.IsNegative() {
			return f, "invalid cost"
		}
	}
	f.cost = cost

	f.currentQty, err = parseQty(r.FormValue("current_qty"))
	if err != nil {
		return f, "invalid current_qty"
	}
	f.minimumQty, err = parseQty(r.FormValue("minimum_qty"))
	if err != nil {
		return f, "invalid minimum_qty"
	}

	return f, ""
}

// uploadImage stores the optional "image" part and returns its URL, or ""
// when no file was sent.
func (h *MenuHandler) uploadImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key := storage.MenuImageKey(header.Filename)
	return h.uploader.Upload(r.Context(), key, contentType, file)
}

func parseQty(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 0 {
		return 0, errors.New("invalid quantity")
	}
	return int32(v), nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:         m.ID,
		Name:       m.Name,
		Price:      numericToString(m.Price),
		Cost:       numericToString(m.Cost),
		NetProfit:  numericToString(m.NetProfit),
		CurrentQty: m.CurrentQty,
		MinimumQty: m.MinimumQty,
		LowStock:   m.CurrentQty <= m.MinimumQty,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Category.Valid {
		resp.Category = &m.Category.String
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImageUrl.Valid {
		resp.ImageUrl = &m.ImageUrl.String
	}
	return resp
}
