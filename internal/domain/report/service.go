package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/hms/internal/platform/blobstore"
	"github.com/caresync/hms/internal/platform/extract"
	"github.com/caresync/hms/pkg/response"
)

// Person is the slice of a user account this package needs for role checks.
type Person struct {
	ID   uuid.UUID
	Name string
	Role string
}

type PersonDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*Person, error)
}

type Service struct {
	reports   Repository
	people    PersonDirectory
	store     blobstore.Store
	extractor extract.Extractor
	logger    zerolog.Logger

	enrichTimeout time.Duration
}

func NewService(reports Repository, people PersonDirectory, store blobstore.Store,
	extractor extract.Extractor, logger zerolog.Logger) *Service {
	return &Service{
		reports:       reports,
		people:        people,
		store:         store,
		extractor:     extractor,
		logger:        logger,
		enrichTimeout: 30 * time.Second,
	}
}

type UploadInput struct {
	PatientID uuid.UUID
	FileName  string
	MimeType  string
	Size      int64
	Title     *string
	Content   io.Reader
}

// Upload validates and stores the file, persists the metadata row, and kicks
// off extraction in the background. The upload succeeds regardless of what
// the extraction service later does.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Report, error) {
	if in.PatientID == uuid.Nil {
		return nil, response.Validationf("patient_id is required")
	}
	if err := blobstore.ValidateUpload(in.FileName, in.Size); err != nil {
		return nil, response.Validationf(err.Error())
	}

	patient, err := s.people.Lookup(ctx, in.PatientID)
	if err != nil || patient.Role != "patient" {
		return nil, response.NotFoundf("patient not found")
	}

	content, err := io.ReadAll(io.LimitReader(in.Content, blobstore.MaxFileSize+1))
	if err != nil {
		return nil, response.Internalf(err)
	}
	if int64(len(content)) > blobstore.MaxFileSize {
		return nil, response.Validationf(blobstore.ErrFileTooLarge.Error())
	}

	key, err := s.store.Save(in.FileName, bytes.NewReader(content))
	if err != nil {
		return nil, response.Internalf(err)
	}

	rep := &Report{
		PatientID:  in.PatientID,
		FileName:   in.FileName,
		StorageKey: key,
		MimeType:   in.MimeType,
		SizeBytes:  int64(len(content)),
		Title:      in.Title,
		Processed:  false,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, response.Internalf(err)
	}

	rep.PatientName = patient.Name

	// Enrichment runs detached from the request; its failure never reaches
	// the uploader.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.enrichTimeout)
		defer cancel()
		s.enrich(ctx, rep.ID, rep.FileName, rep.MimeType, content)
	}()

	return rep, nil
}

func (s *Service) enrich(ctx context.Context, id uuid.UUID, fileName, mimeType string, content []byte) {
	result := s.extractor.Extract(ctx, fileName, mimeType, content)

	var rawText *string
	if result.RawText != "" {
		rawText = &result.RawText
	}
	if err := s.reports.SetExtraction(ctx, id, result.Fields, rawText, result.Processed); err != nil {
		s.logger.Error().Err(err).Str("report_id", id.String()).
			Msg("failed to record extraction result")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("report not found")
		}
		return nil, response.Internalf(err)
	}
	return rep, nil
}

// ListForUser scopes the listing: patients see their own reports, everyone
// else sees all of them.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, role string, limit, offset int) ([]*Report, int, error) {
	var (
		items []*Report
		total int
		err   error
	)
	if role == "patient" {
		items, total, err = s.reports.ListByPatient(ctx, userID, limit, offset)
	} else {
		items, total, err = s.reports.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	items, total, err := s.reports.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}
