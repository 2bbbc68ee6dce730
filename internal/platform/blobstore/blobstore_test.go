package blobstore

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestValidateUpload_Accepts(t *testing.T) {
	for _, name := range []string{"scan.pdf", "photo.JPG", "xray.png", "notes.docx"} {
		if err := ValidateUpload(name, 1024); err != nil {
			t.Errorf("ValidateUpload(%q): unexpected error %v", name, err)
		}
	}
}

func TestValidateUpload_RejectsExtension(t *testing.T) {
	err := ValidateUpload("malware.exe", 1024)
	if !errors.Is(err, ErrBadExtension) {
		t.Fatalf("expected ErrBadExtension, got %v", err)
	}
	if !strings.Contains(err.Error(), "pdf") {
		t.Errorf("expected message to name allowed types, got %q", err.Error())
	}
}

func TestValidateUpload_RejectsOversize(t *testing.T) {
	if err := ValidateUpload("scan.pdf", MaxFileSize+1); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func storeRoundTrip(t *testing.T, s Store) {
	t.Helper()
	key, err := s.Save("report.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("expected key to keep extension, got %q", key)
	}

	r, err := s.Open(key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "pdf-bytes" {
		t.Errorf("unexpected content: %s", data)
	}

	if err := s.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	storeRoundTrip(t, s)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	storeRoundTrip(t, NewMemoryStore())
}

func TestMemoryStore_OpenMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Open("missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
