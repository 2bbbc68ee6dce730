package prescription

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

const rxCols = `r.id, r.patient_id, r.doctor_id, r.appointment_id, p.name, d.name,
	r.diagnosis, r.symptoms, r.medications, r.vitals, r.recommended_tests,
	r.follow_up_date, r.status, r.created_at, r.updated_at`

const rxFrom = ` FROM prescriptions r
	JOIN users p ON p.id = r.patient_id
	JOIN users d ON d.id = r.doctor_id`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.AppointmentID,
		&p.PatientName, &p.DoctorName, &p.Diagnosis, &p.Symptoms,
		&p.Medications, &p.Vitals, &p.RecommendedTests,
		&p.FollowUpDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, appointment_id,
			diagnosis, symptoms, medications, vitals, recommended_tests,
			follow_up_date, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.PatientID, p.DoctorID, p.AppointmentID,
		p.Diagnosis, p.Symptoms, p.Medications, p.Vitals, p.RecommendedTests,
		p.FollowUpDate, p.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+rxCols+rxFrom+` WHERE r.id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.listBy(ctx, `r.patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.listBy(ctx, `r.doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*)`+rxFrom+` WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rxCols+rxFrom+` WHERE `+col+` = $1
		 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
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
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET diagnosis=$2, symptoms=$3, medications=$4,
			vitals=$5, recommended_tests=$6, follow_up_date=$7, status=$8,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Diagnosis, p.Symptoms, p.Medications,
		p.Vitals, p.RecommendedTests, p.FollowUpDate, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, int, error) {
	var total, active int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active')
		FROM prescriptions WHERE patient_id = $1`, patientID).Scan(&total, &active)
	return total, active, err
}
