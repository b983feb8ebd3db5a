package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
)

// topMenuLimit caps the best-seller list on the dashboard.
const topMenuLimit = 10

// ReportStore defines the database methods needed by reporting handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	GetOrderTotals(ctx context.Context, arg database.DateRangeParams) (database.GetOrderTotalsRow, error)
	CountOrdersByStatus(ctx context.Context, arg database.DateRangeParams) ([]database.CountOrdersByStatusRow, error)
	TopMenuItems(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemsRow, error)

	SumExpensesInRange(ctx context.Context, arg database.FinanceRangeParams) (pgtype.Numeric, error)
	SumKitchenBillsInRange(ctx context.Context, arg database.FinanceRangeParams) (pgtype.Numeric, error)
	SumSalariesInRange(ctx context.Context, arg database.FinanceRangeParams) (pgtype.Numeric, error)

	MonthlyOrderTotals(ctx context.Context, year int32) ([]database.MonthlyTotalRow, error)
	MonthlyExpenseTotals(ctx context.Context, year int32) ([]database.MonthlyTotalRow, error)
	MonthlyKitchenBillTotals(ctx context.Context, year int32) ([]database.MonthlyTotalRow, error)
	MonthlySalaryTotals(ctx context.Context, year int32) ([]database.MonthlyTotalRow, error)

	DailyOrderTotals(ctx context.Context, arg database.DateRangeParams) ([]database.DailyTotalRow, error)
	DailyExpenseTotals(ctx context.Context, arg database.DateRangeParams) ([]database.DailyTotalRow, error)
	DailyKitchenBillTotals(ctx context.Context, arg database.DateRangeParams) ([]database.DailyTotalRow, error)
	DailySalaryTotals(ctx context.Context, arg database.DateRangeParams) ([]database.DailyTotalRow, error)

	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	ListKitchenBills(ctx context.Context, arg database.ListKitchenBillsParams) ([]database.KitchenBill, error)
	ListSalaries(ctx context.Context, arg database.ListSalariesParams) ([]database.Salary, error)
}

// ReportHandler handles the dashboard and reporting endpoints.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterAdminRoutes registers the admin-only endpoints.
func (h *ReportHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/summary", h.Summary)
	r.Get("/admin/trend/monthly", h.MonthlyTrend)
	r.Get("/admin/expense-summary", h.ExpenseSummary)
}

// RegisterKitchenRoutes registers the endpoints shared with kitchen staff.
func (h *ReportHandler) RegisterKitchenRoutes(r chi.Router) {
	r.Get("/report/monthly", h.MonthlyReport)
}

// --- Response types ---

type summaryResponse struct {
	TotalIncome           string            `json:"total_income"`
	TotalSupplierExpenses string            `json:"total_supplier_expenses"`
	TotalBills            string            `json:"total_bills"`
	TotalSalaries         string            `json:"total_salaries"`
	TotalCost             string            `json:"total_cost"`
	NetProfit             string            `json:"net_profit"`
	TotalOrders           int64             `json:"total_orders"`
	StatusCounts          map[string]int64  `json:"status_counts"`
	Payments              paymentsBreakdown `json:"payments"`
	TopMenus              []topMenuEntry    `json:"top_menus"`
}

type paymentsBreakdown struct {
	Cash    string `json:"cash"`
	CashDue string `json:"cashdue"`
	Card    string `json:"card"`
	Bank    string `json:"bank"`
}

type topMenuEntry struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type monthlyTrendResponse struct {
	Year        int32      `json:"year"`
	Income      [12]string `json:"income"`
	OrderCounts [12]int64  `json:"order_counts"`
	Expenses    [12]string `json:"expenses"`
	Bills       [12]string `json:"bills"`
	Salaries    [12]string `json:"salaries"`
}

type monthlyReportResponse struct {
	Month    int               `json:"month"`
	Year     int               `json:"year"`
	Income   map[string]string `json:"income"`
	Expenses map[string]string `json:"expenses"`
	Bills    map[string]string `json:"bills"`
	Salaries map[string]string `json:"salaries"`
}

type expenseSummaryResponse struct {
	Month            int                   `json:"month"`
	Year             int                   `json:"year"`
	TotalExpenses    string                `json:"total_expenses"`
	TotalBills       string                `json:"total_bills"`
	TotalSalaries    string                `json:"total_salaries"`
	TotalCost        string                `json:"total_cost"`
	SupplierExpenses []expenseResponse     `json:"supplier_expenses"`
	KitchenBills     []kitchenBillResponse `json:"kitchen_bills"`
	Salaries         []salaryResponse      `json:"salaries"`
}

// --- Handlers ---

// Summary handles GET /admin/summary. An optional start_date/end_date pair
// narrows every figure to that window.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}
	dateStart, dateEnd, _ := parseDateRangeDates(r)

	orderRange := database.DateRangeParams{StartDate: start, EndDate: end}
	financeRange := database.FinanceRangeParams{StartDate: dateStart, EndDate: dateEnd}

	totals, err := h.store.GetOrderTotals(r.Context(), orderRange)
	if err != nil {
		h.fail(w, "order totals", err)
		return
	}

	statusRows, err := h.store.CountOrdersByStatus(r.Context(), orderRange)
	if err != nil {
		h.fail(w, "status counts", err)
		return
	}

	topRows, err := h.store.TopMenuItems(r.Context(), database.TopMenuItemsParams{
		StartDate: start,
		EndDate:   end,
		Limit:     topMenuLimit,
	})
	if err != nil {
		h.fail(w, "top menus", err)
		return
	}

	expenses, err := h.store.SumExpensesInRange(r.Context(), financeRange)
	if err != nil {
		h.fail(w, "expense total", err)
		return
	}
	bills, err := h.store.SumKitchenBillsInRange(r.Context(), financeRange)
	if err != nil {
		h.fail(w, "bill total", err)
		return
	}
	salaries, err := h.store.SumSalariesInRange(r.Context(), financeRange)
	if err != nil {
		h.fail(w, "salary total", err)
		return
	}

	income := numericToDecimal(totals.TotalIncome)
	cost := numericToDecimal(expenses).Add(numericToDecimal(bills)).Add(numericToDecimal(salaries))

	statusCounts := make(map[string]int64, len(statusRows))
	for _, row := range statusRows {
		statusCounts[row.Status] = row.Count
	}

	topMenus := make([]topMenuEntry, len(topRows))
	for i, row := range topRows {
		topMenus[i] = topMenuEntry{Name: row.Name, Quantity: row.Quantity}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:           income.StringFixed(2),
		TotalSupplierExpenses: numericToString(expenses),
		TotalBills:            numericToString(bills),
		TotalSalaries:         numericToString(salaries),
		TotalCost:             cost.StringFixed(2),
		NetProfit:             income.Sub(cost).StringFixed(2),
		TotalOrders:           totals.TotalOrders,
		StatusCounts:          statusCounts,
		Payments: paymentsBreakdown{
			Cash:    numericToString(totals.TotalCash),
			CashDue: numericToString(totals.TotalChangeDue),
			Card:    numericToString(totals.TotalCard),
			Bank:    numericToString(totals.TotalBank),
		},
		TopMenus: topMenus,
	})
}

// MonthlyTrend handles GET /admin/trend/monthly?year=YYYY. Every series has
// twelve buckets; months with no records stay at zero.
func (h *ReportHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year is required"})
		return
	}

	resp := monthlyTrendResponse{Year: int32(year)}
	for i := range resp.Income {
		resp.Income[i] = "0.00"
		resp.Expenses[i] = "0.00"
		resp.Bills[i] = "0.00"
		resp.Salaries[i] = "0.00"
	}

	orderRows, err := h.store.MonthlyOrderTotals(r.Context(), int32(year))
	if err != nil {
		h.fail(w, "monthly order totals", err)
		return
	}
	for _, row := range orderRows {
		if row.Month >= 1 && row.Month <= 12 {
			resp.Income[row.Month-1] = numericToString(row.Total)
			resp.OrderCounts[row.Month-1] = row.Count
		}
	}

	fill := func(rows []database.MonthlyTotalRow, dst *[12]string) {
		for _, row := range rows {
			if row.Month >= 1 && row.Month <= 12 {
				dst[row.Month-1] = numericToString(row.Total)
			}
		}
	}

	expenseRows, err := h.store.MonthlyExpenseTotals(r.Context(), int32(year))
	if err != nil {
		h.fail(w, "monthly expense totals", err)
		return
	}
	fill(expenseRows, &resp.Expenses)

	billRows, err := h.store.MonthlyKitchenBillTotals(r.Context(), int32(year))
	if err != nil {
		h.fail(w, "monthly bill totals", err)
		return
	}
	fill(billRows, &resp.Bills)

	salaryRows, err := h.store.MonthlySalaryTotals(r.Context(), int32(year))
	if err != nil {
		h.fail(w, "monthly salary totals", err)
		return
	}
	fill(salaryRows, &resp.Salaries)

	writeJSON(w, http.StatusOK, resp)
}

// MonthlyReport handles GET /report/monthly?month=M&year=YYYY. Each series
// maps YYYY-MM-DD to that day's sum; days with no records are absent.
func (h *ReportHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	start, end := monthBounds(month, year)
	rangeParams := database.DateRangeParams{
		StartDate: pgtype.Timestamptz{Time: start, Valid: true},
		EndDate:   pgtype.Timestamptz{Time: end, Valid: true},
	}

	resp := monthlyReportResponse{Month: month, Year: year}

	orderRows, err := h.store.DailyOrderTotals(r.Context(), rangeParams)
	if err != nil {
		h.fail(w, "daily order totals", err)
		return
	}
	resp.Income = dailyRowsToMap(orderRows)

	expenseRows, err := h.store.DailyExpenseTotals(r.Context(), rangeParams)
	if err != nil {
		h.fail(w, "daily expense totals", err)
		return
	}
	resp.Expenses = dailyRowsToMap(expenseRows)

	billRows, err := h.store.DailyKitchenBillTotals(r.Context(), rangeParams)
	if err != nil {
		h.fail(w, "daily bill totals", err)
		return
	}
	resp.Bills = dailyRowsToMap(billRows)

	salaryRows, err := h.store.DailySalaryTotals(r.Context(), rangeParams)
	if err != nil {
		h.fail(w, "daily salary totals", err)
		return
	}
	resp.Salaries = dailyRowsToMap(salaryRows)

	writeJSON(w, http.StatusOK, resp)
}

// ExpenseSummary handles GET /admin/expense-summary?month=M&year=YYYY. It
// returns the month's cost totals plus the individual records behind them.
func (h *ReportHandler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	start, end := monthBounds(month, year)
	dateRange := database.FinanceRangeParams{
		StartDate: pgtype.Date{Time: start, Valid: true},
		EndDate:   pgtype.Date{Time: end, Valid: true},
	}

	expenseTotal, err := h.store.SumExpensesInRange(r.Context(), dateRange)
	if err != nil {
		h.fail(w, "expense total", err)
		return
	}
	billTotal, err := h.store.SumKitchenBillsInRange(r.Context(), dateRange)
	if err != nil {
		h.fail(w, "bill total", err)
		return
	}
	salaryTotal, err := h.store.SumSalariesInRange(r.Context(), dateRange)
	if err != nil {
		h.fail(w, "salary total", err)
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), database.ListExpensesParams{
		StartDate: dateRange.StartDate,
		EndDate:   dateRange.EndDate,
	})
	if err != nil {
		h.fail(w, "list expenses", err)
		return
	}
	bills, err := h.store.ListKitchenBills(r.Context(), database.ListKitchenBillsParams{
		StartDate: dateRange.StartDate,
		EndDate:   dateRange.EndDate,
	})
	if err != nil {
		h.fail(w, "list kitchen bills", err)
		return
	}
	salaries, err := h.store.ListSalaries(r.Context(), database.ListSalariesParams{
		StartDate: dateRange.StartDate,
		EndDate:   dateRange.EndDate,
	})
	if err != nil {
		h.fail(w, "list salaries", err)
		return
	}

	cost := numericToDecimal(expenseTotal).
		Add(numericToDecimal(billTotal)).
		Add(numericToDecimal(salaryTotal))

	resp := expenseSummaryResponse{
		Month:            month,
		Year:             year,
		TotalExpenses:    numericToString(expenseTotal),
		TotalBills:       numericToString(billTotal),
		TotalSalaries:    numericToString(salaryTotal),
		TotalCost:        cost.StringFixed(2),
		SupplierExpenses: make([]expenseResponse, len(expenses)),
		KitchenBills:     make([]kitchenBillResponse, len(bills)),
		Salaries:         make([]salaryResponse, len(salaries)),
	}
	for i, e := range expenses {
		resp.SupplierExpenses[i] = toExpenseResponse(e)
	}
	for i, b := range bills {
		resp.KitchenBills[i] = toKitchenBillResponse(b)
	}
	for i, s := range salaries {
		resp.Salaries[i] = toSalaryResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *ReportHandler) fail(w http.ResponseWriter, what string, err error) {
	log.Printf("ERROR: %s: %v", what, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func parseMonthYear(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month is required (1-12)"})
		return 0, 0, false
	}
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year is required"})
		return 0, 0, false
	}
	return month, year, true
}

// monthBounds returns the first instant of the month and the last instant of
// its final day.
func monthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

func dailyRowsToMap(rows []database.DailyTotalRow) map[string]string {
	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.Day.Time.Format("2006-01-02")] = numericToString(row.Total)
	}
	return result
}
