package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const rxCols = `id, number, appointment_id, patient_id, doctor_id, pharmacy_id,
	status, diagnosis, total_price, issued_at, valid_until, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.Number, &p.AppointmentID, &p.PatientID, &p.DoctorID, &p.PharmacyID,
		&p.Status, &p.Diagnosis, &p.TotalPrice, &p.IssuedAt, &p.ValidUntil, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

const lineCols = `id, prescription_id, medication_code, medication_name, dosage,
	frequency, duration_days, quantity, substitution_allowed, price`

func scanLine(row pgx.Row) (*Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.PrescriptionID, &l.MedicationCode, &l.MedicationName, &l.Dosage,
		&l.Frequency, &l.DurationDays, &l.Quantity, &l.SubstitutionAllowed, &l.Price)
	return &l, err
}

func (r *repoPG) CreateWithLines(ctx context.Context, p *Prescription) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		p.ID = uuid.New()
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescriptions (id, number, appointment_id, patient_id, doctor_id,
				status, diagnosis, total_price, issued_at, valid_until)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.Number, p.AppointmentID, p.PatientID, p.DoctorID,
			p.Status, p.Diagnosis, p.TotalPrice, p.IssuedAt, p.ValidUntil)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("a prescription already exists for this appointment")
		}
		if err != nil {
			return err
		}
		for i := range p.Lines {
			l := &p.Lines[i]
			l.ID = uuid.New()
			l.PrescriptionID = p.ID
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO prescription_items (id, prescription_id, medication_code, medication_name,
					dosage, frequency, duration_days, quantity, substitution_allowed, price)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				l.ID, l.PrescriptionID, l.MedicationCode, l.MedicationName,
				l.Dosage, l.Frequency, l.DurationDays, l.Quantity, l.SubstitutionAllowed, l.Price); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(r.conn(ctx).QueryRow(ctx, `
		SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("prescription not found")
		}
		return nil, err
	}
	if p.Lines, err = r.lines(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(r.conn(ctx).QueryRow(ctx, `
		SELECT `+rxCols+` FROM prescriptions WHERE appointment_id = $1`, appointmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("prescription not found")
		}
		return nil, err
	}
	if p.Lines, err = r.lines(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) lines(ctx context.Context, prescriptionID uuid.UUID) ([]Line, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+` FROM prescription_items WHERE prescription_id = $1 ORDER BY created_at`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

func (r *repoPG) Route(ctx context.Context, id, pharmacyID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET pharmacy_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`, id, pharmacyID, StatusSent, StatusIssued)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("prescription already left %s", StatusIssued)
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("prescription left status %s concurrently", from)
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `pharmacy_id`, pharmacyID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rxCols+` FROM prescriptions WHERE `+col+` = $1
		ORDER BY issued_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, p := range items {
		if p.Lines, err = r.lines(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}
