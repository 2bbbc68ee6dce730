package report

import (
	"time"

	"github.com/google/uuid"
)

// Report maps to the reports table. Extracted holds whatever the extraction
// service pulled from the file; Processed stays false when extraction failed.
type Report struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	PatientID   uuid.UUID              `db:"patient_id" json:"patient_id"`
	PatientName string                 `json:"patient_name,omitempty"`
	FileName    string                 `db:"file_name" json:"file_name"`
	StorageKey  string                 `db:"storage_key" json:"-"`
	MimeType    string                 `db:"mime_type" json:"mime_type"`
	SizeBytes   int64                  `db:"size_bytes" json:"size_bytes"`
	Title       *string                `db:"title" json:"title,omitempty"`
	Extracted   map[string]interface{} `db:"extracted" json:"extracted,omitempty"`
	RawText     *string                `db:"raw_text" json:"raw_text,omitempty"`
	Processed   bool                   `db:"processed" json:"processed"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at" json:"updated_at"`
}
