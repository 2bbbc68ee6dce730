package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("report not found")

type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, limit, offset int) ([]*Report, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error)

	// SetExtraction records the outcome of the async enrichment pass.
	SetExtraction(ctx context.Context, id uuid.UUID, extracted map[string]interface{}, rawText *string, processed bool) error
}
