package handler

import (
	"encoding/json"
	"net/http"

	"github.com/baadal-bistro/api/internal/logger"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.WithError(err).Error("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
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

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}
