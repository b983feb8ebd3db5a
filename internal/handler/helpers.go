package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDateRange reads optional start_date and end_date query params
// (YYYY-MM-DD). The end date is pushed to the last instant of its day so the
// range is inclusive. A zero pgtype value means the bound is absent and the
// SQL filter treats it as open.
func parseDateRange(r *http.Request) (start, end pgtype.Timestamptz, ok bool) {
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		start = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		end = pgtype.Timestamptz{Time: t.Add(24*time.Hour - time.Second), Valid: true}
	}
	return start, end, true
}

// parseDateRangeDates is parseDateRange for tables keyed by a plain date
// column instead of a timestamp.
func parseDateRangeDates(r *http.Request) (start, end pgtype.Date, ok bool) {
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		start = pgtype.Date{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		end = pgtype.Date{Time: t, Valid: true}
	}
	return start, end, true
}
