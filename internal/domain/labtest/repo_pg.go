package labtest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caresync/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const testCols = `t.id, t.patient_id, t.doctor_id, p.name, d.name,
	t.test_name, t.test_type, t.status, t.scheduled_date, t.cost, t.notes,
	t.created_at, t.updated_at`

const testFrom = ` FROM lab_tests t
	JOIN users p ON p.id = t.patient_id
	JOIN users d ON d.id = t.doctor_id`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var lt LabTest
	err := row.Scan(&lt.ID, &lt.PatientID, &lt.DoctorID, &lt.PatientName, &lt.DoctorName,
		&lt.TestName, &lt.TestType, &lt.Status, &lt.ScheduledDate, &lt.Cost, &lt.Notes,
		&lt.CreatedAt, &lt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &lt, err
}

func (r *repoPG) Create(ctx context.Context, lt *LabTest) error {
	if lt.ID == uuid.Nil {
		lt.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_tests (id, patient_id, doctor_id, test_name, test_type,
			status, scheduled_date, cost, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		lt.ID, lt.PatientID, lt.DoctorID, lt.TestName, lt.TestType,
		lt.Status, lt.ScheduledDate, lt.Cost, lt.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return scanLabTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+testFrom+` WHERE t.id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_tests`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+testCols+testFrom+` ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectLabTests(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_tests WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+testCols+testFrom+` WHERE t.patient_id = $1
		 ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectLabTests(rows, total)
}

func collectLabTests(rows pgx.Rows, total int) ([]*LabTest, int, error) {
	var items []*LabTest
	for rows.Next() {
		lt, err := scanLabTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lt)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, lt *LabTest) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_tests SET test_name=$2, test_type=$3, status=$4,
			scheduled_date=$5, cost=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		lt.ID, lt.TestName, lt.TestType, lt.Status,
		lt.ScheduledDate, lt.Cost, lt.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
