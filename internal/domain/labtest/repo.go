package labtest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("lab test not found")

type Repository interface {
	Create(ctx context.Context, lt *LabTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)
	List(ctx context.Context, limit, offset int) ([]*LabTest, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error)
	Update(ctx context.Context, lt *LabTest) error
}
