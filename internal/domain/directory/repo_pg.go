package directory

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

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `d.id, u.name, d.specialization, d.clinic_name, d.address, d.created_at, d.updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.ClinicName, &d.Address, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT `+doctorCols+` FROM doctors d JOIN users u ON u.id = d.id WHERE d.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "doctor")
	}
	return d, nil
}

func (r *doctorRepoPG) ListWithFees(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+doctorCols+` FROM doctors d JOIN users u ON u.id = d.id ORDER BY d.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*Doctor
	byID := make(map[uuid.UUID]*Doctor)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return doctors, nil
	}

	feeRows, err := r.conn(ctx).Query(ctx, `
		SELECT `+feeCols+`
		FROM fee_schedules f JOIN departments dep ON dep.id = f.department_id
		WHERE f.active ORDER BY f.created_at`)
	if err != nil {
		return nil, err
	}
	defer feeRows.Close()
	for feeRows.Next() {
		f, err := scanFee(feeRows)
		if err != nil {
			return nil, err
		}
		if d, ok := byID[f.DoctorID]; ok {
			d.FeeSchedules = append(d.FeeSchedules, *f)
		}
	}
	return doctors, feeRows.Err()
}

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository { return &departmentRepoPG{pool: pool} }

func (r *departmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const departmentCols = `id, name, capability, created_at`

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Capability, &d.CreatedAt)
	return &d, err
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO departments (id, name, capability) VALUES ($1,$2,$3)`,
		d.ID, d.Name, d.Capability)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("department %q already exists", d.Name)
	}
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	d, err := scanDepartment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+departmentCols+` FROM departments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "department")
	}
	return d, nil
}

func (r *departmentRepoPG) List(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+departmentCols+` FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *departmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("department not found")
	}
	return nil
}

// =========== FeeSchedule Repository ===========

type feeScheduleRepoPG struct{ pool *pgxpool.Pool }

func NewFeeScheduleRepoPG(pool *pgxpool.Pool) FeeScheduleRepository {
	return &feeScheduleRepoPG{pool: pool}
}

func (r *feeScheduleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const feeCols = `f.id, f.doctor_id, f.department_id, dep.name, f.modality,
	f.base_price, f.emergency_price, f.active, f.created_at`

func scanFee(row pgx.Row) (*FeeSchedule, error) {
	var f FeeSchedule
	err := row.Scan(&f.ID, &f.DoctorID, &f.DepartmentID, &f.DepartmentName, &f.Modality,
		&f.BasePrice, &f.EmergencyPrice, &f.Active, &f.CreatedAt)
	return &f, err
}

func (r *feeScheduleRepoPG) Create(ctx context.Context, f *FeeSchedule) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO fee_schedules (id, doctor_id, department_id, modality, base_price, emergency_price, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.DoctorID, f.DepartmentID, f.Modality, f.BasePrice, f.EmergencyPrice, f.Active)
	return err
}

func (r *feeScheduleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FeeSchedule, error) {
	f, err := scanFee(r.conn(ctx).QueryRow(ctx, `
		SELECT `+feeCols+` FROM fee_schedules f
		JOIN departments dep ON dep.id = f.department_id
		WHERE f.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "fee schedule")
	}
	return f, nil
}

func (r *feeScheduleRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]FeeSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+feeCols+` FROM fee_schedules f
		JOIN departments dep ON dep.id = f.department_id
		WHERE f.doctor_id = $1 ORDER BY f.created_at`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FeeSchedule
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

func (r *feeScheduleRepoPG) Update(ctx context.Context, f *FeeSchedule) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE fee_schedules SET modality=$2, base_price=$3, emergency_price=$4, active=$5
		WHERE id = $1`,
		f.ID, f.Modality, f.BasePrice, f.EmergencyPrice, f.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("fee schedule not found")
	}
	return nil
}

func (r *feeScheduleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM fee_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("fee schedule not found")
	}
	return nil
}
