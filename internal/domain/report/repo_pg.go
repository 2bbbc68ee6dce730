package report

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

const reportCols = `r.id, r.patient_id, p.name, r.file_name, r.storage_key,
	r.mime_type, r.size_bytes, r.title, r.extracted, r.raw_text, r.processed,
	r.created_at, r.updated_at`

const reportFrom = ` FROM reports r JOIN users p ON p.id = r.patient_id`

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.PatientID, &rep.PatientName, &rep.FileName,
		&rep.StorageKey, &rep.MimeType, &rep.SizeBytes, &rep.Title,
		&rep.Extracted, &rep.RawText, &rep.Processed,
		&rep.CreatedAt, &rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rep, err
}

func (r *repoPG) Create(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reports (id, patient_id, file_name, storage_key, mime_type,
			size_bytes, title, extracted, raw_text, processed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rep.ID, rep.PatientID, rep.FileName, rep.StorageKey, rep.MimeType,
		rep.SizeBytes, rep.Title, rep.Extracted, rep.RawText, rep.Processed)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+reportFrom+` WHERE r.id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+reportFrom+` ORDER BY r.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectReports(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+reportFrom+` WHERE r.patient_id = $1
		 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectReports(rows, total)
}

func collectReports(rows pgx.Rows, total int) ([]*Report, int, error) {
	var items []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, rows.Err()
}

func (r *repoPG) SetExtraction(ctx context.Context, id uuid.UUID, extracted map[string]interface{}, rawText *string, processed bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reports SET extracted=$2, raw_text=$3, processed=$4, updated_at=NOW()
		WHERE id = $1`, id, extracted, rawText, processed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
