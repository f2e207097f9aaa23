package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type SalesSummaryParams struct {
	From pgtype.Timestamptz
	To   pgtype.Timestamptz
}

type SalesSummaryRow struct {
	OrderCount    int64
	GrossSales    pgtype.Numeric
	DiscountGiven pgtype.Numeric
	ParcelCharges pgtype.Numeric
	NetSales      pgtype.Numeric
}

// SalesSummary aggregates paid orders in [from, to).
func (q *Queries) SalesSummary(ctx context.Context, arg SalesSummaryParams) (SalesSummaryRow, error) {
	row := q.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(discount_amount), 0),
			COALESCE(SUM(parcel_charge), 0),
			COALESCE(SUM(final_amount), 0)
		FROM orders
		WHERE status = 'paid' AND paid_at >= $1 AND paid_at < $2`,
		arg.From, arg.To)

	var r SalesSummaryRow
	err := row.Scan(&r.OrderCount, &r.GrossSales, &r.DiscountGiven, &r.ParcelCharges, &r.NetSales)
	return r, err
}

type SalesByPaymentTypeRow struct {
	PaymentType string
	OrderCount  int64
	NetSales    pgtype.Numeric
}

func (q *Queries) SalesByPaymentType(ctx context.Context, arg SalesSummaryParams) ([]SalesByPaymentTypeRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT COALESCE(payment_type, 'unknown'), COUNT(*), COALESCE(SUM(final_amount), 0)
		FROM orders
		WHERE status = 'paid' AND paid_at >= $1 AND paid_at < $2
		GROUP BY payment_type
		ORDER BY payment_type`,
		arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SalesByPaymentTypeRow
	for rows.Next() {
		var r SalesByPaymentTypeRow
		if err := rows.Scan(&r.PaymentType, &r.OrderCount, &r.NetSales); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
