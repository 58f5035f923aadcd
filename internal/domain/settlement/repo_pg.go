package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository { return &recordRepoPG{pool: pool} }

func (r *recordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *recordRepoPG) ListByPharmacyBetween(ctx context.Context, pharmacyID uuid.UUID, from, to time.Time) ([]Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, number, patient_id, status, total_price, issued_at
		FROM prescriptions
		WHERE pharmacy_id = $1 AND issued_at >= $2 AND issued_at < $3
		ORDER BY issued_at`, pharmacyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.PrescriptionID, &rec.Number, &rec.PatientID, &rec.Status, &rec.TotalPrice, &rec.IssuedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
