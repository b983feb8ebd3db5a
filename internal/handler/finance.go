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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// FinanceStore defines the database methods needed by finance handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type FinanceStore interface {
	ListSuppliers(ctx context.Context) ([]database.Supplier, error)
	CreateSupplier(ctx context.Context, arg database.CreateSupplierParams) (database.Supplier, error)
	UpdateSupplier(ctx context.Context, arg database.UpdateSupplierParams) (database.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	UpdateExpense(ctx context.Context, arg database.UpdateExpenseParams) (database.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	ListKitchenBills(ctx context.Context, arg database.ListKitchenBillsParams) ([]database.KitchenBill, error)
	CreateKitchenBill(ctx context.Context, arg database.CreateKitchenBillParams) (database.KitchenBill, error)
	UpdateKitchenBill(ctx context.Context, arg database.UpdateKitchenBillParams) (database.KitchenBill, error)
	DeleteKitchenBill(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	ListSalaries(ctx context.Context, arg database.ListSalariesParams) ([]database.Salary, error)
	CreateSalary(ctx context.Context, arg database.CreateSalaryParams) (database.Salary, error)
	UpdateSalary(ctx context.Context, arg database.UpdateSalaryParams) (database.Salary, error)
	DeleteSalary(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// FinanceHandler handles supplier, expense, utility bill and salary records.
// All endpoints are admin-only; the role gate lives in the router.
type FinanceHandler struct {
	store FinanceStore
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(store FinanceStore) *FinanceHandler {
	return &FinanceHandler{store: store}
}

// RegisterRoutes registers finance endpoints on the given Chi router.
func (h *FinanceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.ListSuppliers)
		r.Post("/", h.CreateSupplier)
		r.Put("/{id}", h.UpdateSupplier)
		r.Delete("/{id}", h.DeleteSupplier)
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.ListExpenses)
		r.Post("/", h.CreateExpense)
		r.Put("/{id}", h.UpdateExpense)
		r.Delete("/{id}", h.DeleteExpense)
	})
	r.Route("/kitchen/bills", func(r chi.Router) {
		r.Get("/", h.ListKitchenBills)
		r.Post("/", h.CreateKitchenBill)
		r.Put("/{id}", h.UpdateKitchenBill)
		r.Delete("/{id}", h.DeleteKitchenBill)
	})
	r.Route("/salaries", func(r chi.Router) {
		r.Get("/", h.ListSalaries)
		r.Post("/", h.CreateSalary)
		r.Put("/{id}", h.UpdateSalary)
		r.Delete("/{id}", h.DeleteSalary)
	})
}

// --- Request / Response types ---

type supplierRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

type supplierResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name"`
	Contact     string    `json:"contact"`
	Email       *string   `json:"email"`
	Address     *string   `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

type expenseRequest struct {
	SupplierID  string `json:"supplier_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

type expenseResponse struct {
	ID          uuid.UUID `json:"id"`
	SupplierID  *string   `json:"supplier_id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
}

type kitchenBillRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

type kitchenBillResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
}

type salaryRequest struct {
	EmployeeName string `json:"employee_name"`
	Total        string `json:"total"`
	Date         string `json:"date"`
}

type salaryResponse struct {
	ID           uuid.UUID `json:"id"`
	EmployeeName string    `json:"employee_name"`
	Total        string    `json:"total"`
	Date         string    `json:"date"`
}

// --- Suppliers ---

// ListSuppliers handles GET /suppliers.
func (h *FinanceHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context())
	if err != nil {
		log.Printf("ERROR: list suppliers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]supplierResponse, len(suppliers))
	for i, s := range suppliers {
		resp[i] = toSupplierResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSupplier handles POST /suppliers.
func (h *FinanceHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.CompanyName == "" || req.Contact == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, company_name and contact are required"})
		return
	}

	supplier, err := h.store.CreateSupplier(r.Context(), database.CreateSupplierParams{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Contact:     req.Contact,
		Email:       optionalText(req.Email),
		Address:     optionalText(req.Address),
	})
	if err != nil {
		log.Printf("ERROR: create supplier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSupplierResponse(supplier))
}

// UpdateSupplier handles PUT /suppliers/{id}.
func (h *FinanceHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid supplier ID"})
		return
	}

	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.CompanyName == "" || req.Contact == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, company_name and contact are required"})
		return
	}

	supplier, err := h.store.UpdateSupplier(r.Context(), database.UpdateSupplierParams{
		ID:          id,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Contact:     req.Contact,
		Email:       optionalText(req.Email),
		Address:     optionalText(req.Address),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplier not found"})
			return
		}
		log.Printf("ERROR: update supplier: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSupplierResponse(supplier))
}

// DeleteSupplier handles DELETE /suppliers/{id}.
func (h *FinanceHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "supplier", h.store.DeleteSupplier)
}

// --- Supplier expenses ---

// ListExpenses handles GET /expenses.
func (h *FinanceHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRangeDates(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), database.ListExpensesParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateExpense handles POST /expenses.
func (h *FinanceHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, ok := h.expenseParams(w, req)
	if !ok {
		return
	}

	expense, err := h.store.CreateExpense(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// UpdateExpense handles PUT /expenses/{id}.
func (h *FinanceHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, ok := h.expenseParams(w, req)
	if !ok {
		return
	}

	expense, err := h.store.UpdateExpense(r.Context(), database.UpdateExpenseParams{
		ID:          id,
		SupplierID:  params.SupplierID,
		Description: params.Description,
		Amount:      params.Amount,
		Date:        params.Date,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
			return
		}
		log.Printf("ERROR: update expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /expenses/{id}.
func (h *FinanceHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "expense", h.store.DeleteExpense)
}

// expenseParams validates the shared create/update fields. It writes the
// error response itself and reports success through the bool.
func (h *FinanceHandler) expenseParams(w http.ResponseWriter, req expenseRequest) (database.CreateExpenseParams, bool) {
	var params database.CreateExpenseParams

	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return params, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a non-negative number"})
		return params, false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return params, false
	}

	if req.SupplierID != "" {
		sid, err := uuid.Parse(req.SupplierID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid supplier_id"})
			return params, false
		}
		params.SupplierID = pgtype.UUID{Bytes: sid, Valid: true}
	}

	params.Description = req.Description
	params.Amount = decimalToNumeric(amount)
	params.Date = pgtype.Date{Time: date, Valid: true}
	return params, true
}

// --- Utility bills ---

// ListKitchenBills handles GET /kitchen/bills.
func (h *FinanceHandler) ListKitchenBills(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRangeDates(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	bills, err := h.store.ListKitchenBills(r.Context(), database.ListKitchenBillsParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list kitchen bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]kitchenBillResponse, len(bills))
	for i, b := range bills {
		resp[i] = toKitchenBillResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateKitchenBill handles POST /kitchen/bills.
func (h *FinanceHandler) CreateKitchenBill(w http.ResponseWriter, r *http.Request) {
	var req kitchenBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, date, ok := h.billFields(w, "description", req.Description, req.Amount, req.Date)
	if !ok {
		return
	}

	bill, err := h.store.CreateKitchenBill(r.Context(), database.CreateKitchenBillParams{
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	})
	if err != nil {
		log.Printf("ERROR: create kitchen bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toKitchenBillResponse(bill))
}

// UpdateKitchenBill handles PUT /kitchen/bills/{id}.
func (h *FinanceHandler) UpdateKitchenBill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill ID"})
		return
	}

	var req kitchenBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, date, ok := h.billFields(w, "description", req.Description, req.Amount, req.Date)
	if !ok {
		return
	}

	bill, err := h.store.UpdateKitchenBill(r.Context(), database.UpdateKitchenBillParams{
		ID:          id,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: update kitchen bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toKitchenBillResponse(bill))
}

// DeleteKitchenBill handles DELETE /kitchen/bills/{id}.
func (h *FinanceHandler) DeleteKitchenBill(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "bill", h.store.DeleteKitchenBill)
}

// --- Salaries ---

// ListSalaries handles GET /salaries.
func (h *FinanceHandler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRangeDates(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	salaries, err := h.store.ListSalaries(r.Context(), database.ListSalariesParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list salaries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]salaryResponse, len(salaries))
	for i, s := range salaries {
		resp[i] = toSalaryResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSalary handles POST /salaries.
func (h *FinanceHandler) CreateSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, date, ok := h.billFields(w, "employee_name", req.EmployeeName, req.Total, req.Date)
	if !ok {
		return
	}

	salary, err := h.store.CreateSalary(r.Context(), database.CreateSalaryParams{
		EmployeeName: req.EmployeeName,
		Total:        amount,
		Date:         date,
	})
	if err != nil {
		log.Printf("ERROR: create salary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSalaryResponse(salary))
}

// UpdateSalary handles PUT /salaries/{id}.
func (h *FinanceHandler) UpdateSalary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid salary ID"})
		return
	}

	var req salaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, date, ok := h.billFields(w, "employee_name", req.EmployeeName, req.Total, req.Date)
	if !ok {
		return
	}

	salary, err := h.store.UpdateSalary(r.Context(), database.UpdateSalaryParams{
		ID:           id,
		EmployeeName: req.EmployeeName,
		Total:        amount,
		Date:         date,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "salary not found"})
			return
		}
		log.Printf("ERROR: update salary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSalaryResponse(salary))
}

// DeleteSalary handles DELETE /salaries/{id}.
func (h *FinanceHandler) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "salary", h.store.DeleteSalary)
}

// --- Helpers ---

// billFields validates the label + amount + date triple shared by
// bill-shaped records. It writes the error response itself.
func (h *FinanceHandler) billFields(w http.ResponseWriter, labelField, label, amount, date string) (pgtype.Numeric, pgtype.Date, bool) {
	if label == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": labelField + " is required"})
		return pgtype.Numeric{}, pgtype.Date{}, false
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil || amt.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a non-negative number"})
		return pgtype.Numeric{}, pgtype.Date{}, false
	}

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return pgtype.Numeric{}, pgtype.Date{}, false
	}

	return decimalToNumeric(amt), pgtype.Date{Time: d, Valid: true}, true
}

func (h *FinanceHandler) deleteRecord(w http.ResponseWriter, r *http.Request, label string,
	del func(context.Context, uuid.UUID) (uuid.UUID, error)) {

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + label + " ID"})
		return
	}

	if _, err := del(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": label + " not found"})
			return
		}
		log.Printf("ERROR: delete %s: %v", label, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": label + " deleted"})
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toSupplierResponse(s database.Supplier) supplierResponse {
	resp := supplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		CompanyName: s.CompanyName,
		Contact:     s.Contact,
		CreatedAt:   s.CreatedAt,
	}
	if s.Email.Valid {
		resp.Email = &s.Email.String
	}
	if s.Address.Valid {
		resp.Address = &s.Address.String
	}
	return resp
}

func toExpenseResponse(e database.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      numericToString(e.Amount),
		Date:        e.Date.Time.Format("2006-01-02"),
	}
	if e.SupplierID.Valid {
		sid := uuid.UUID(e.SupplierID.Bytes).String()
		resp.SupplierID = &sid
	}
	return resp
}

func toKitchenBillResponse(b database.KitchenBill) kitchenBillResponse {
	return kitchenBillResponse{
		ID:          b.ID,
		Description: b.Description,
		Amount:      numericToString(b.Amount),
		Date:        b.Date.Time.Format("2006-01-02"),
	}
}

func toSalaryResponse(s database.Salary) salaryResponse {
	return salaryResponse{
		ID:           s.ID,
		EmployeeName: s.EmployeeName,
		Total:        numericToString(s.Total),
		Date:         s.Date.Time.Format("2006-01-02"),
	}
}
