package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/storage"
	"github.com/docket-dev/docket/internal/store"
	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxUploadSize = 10 << 20

	msgNoFile = "No file uploaded."
)

type FileRecords interface {
	Create(ctx context.Context, f *models.File) error
	ListForCase(ctx context.Context, caseID string) ([]models.File, error)
	FindOwned(ctx context.Context, id, caseID, ownerID string) (*models.File, error)
	DeleteOwned(ctx context.Context, id, caseID, ownerID string) error
}

type UploadInput struct {
	CaseID       string
	OwnerID      string
	FileName     string
	DeclaredType string
	Size         int64
	Body         io.Reader
	Description  string
}

// FileService couples object storage with file records. Neither upload
// nor delete is atomic across the two systems.
type FileService struct {
	records FileRecords
	storage storage.ObjectStorage
	logger  *slog.Logger
}

func NewFileService(records FileRecords, objects storage.ObjectStorage, logger *slog.Logger) *FileService {
	return &FileService{records: records, storage: objects, logger: logger}
}

func CaseFolder(caseID string) string {
	return "law_firm_app/cases/" + caseID
}

// Upload stores the payload, then records it. When the record cannot be
// written the stored object is removed again.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*models.File, error) {
	if in.Body == nil {
		return nil, apperr.BadRequest(msgNoFile)
	}

	if in.Size > MaxUploadSize {
		return nil, apperr.Validation("File too large", apperr.FieldError{Field: "file", Message: "must not exceed 10 MB"})
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(in.Body, head)

	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	if n == 0 {
		return nil, apperr.Validation("Uploaded file is empty", apperr.FieldError{Field: "file", Message: "must not be empty"})
	}

	head = head[:n]
	fileType := contentType(head, in.DeclaredType)

	obj, err := s.storage.Put(ctx, storage.PutInput{
		Folder:      CaseFolder(in.CaseID),
		FileName:    in.FileName,
		ContentType: fileType,
		Body:        io.MultiReader(bytes.NewReader(head), in.Body),
		Size:        in.Size,
	})

	if err != nil {
		if errors.Is(err, storage.ErrDisallowedType) {
			return nil, apperr.Validation("File type not allowed", apperr.FieldError{
				Field:   "file",
				Message: "allowed types: " + strings.Join(storage.AllowedExtensions, ", "),
			})
		}

		return nil, fmt.Errorf("storing upload: %w", err)
	}

	record := &models.File{
		FileName:    in.FileName,
		FileURL:     obj.URL,
		PublicID:    obj.Handle,
		FileType:    fileType,
		Size:        in.Size,
		Description: in.Description,
		CaseID:      in.CaseID,
		OwnerID:     in.OwnerID,
	}

	if err := s.records.Create(ctx, record); err != nil {
		if cleanupErr := s.storage.Delete(context.WithoutCancel(ctx), obj.Handle); cleanupErr != nil {
			s.logger.Error("orphaned stored object after failed record write",
				"handle", obj.Handle,
				"case_id", in.CaseID,
				"error", cleanupErr,
			)
		}

		return nil, err
	}

	return record, nil
}

func (s *FileService) List(ctx context.Context, caseID string) ([]models.File, error) {
	return s.records.ListForCase(ctx, caseID)
}

func (s *FileService) Get(ctx context.Context, caseID, fileID, ownerID string) (*models.File, error) {
	return s.records.FindOwned(ctx, fileID, caseID, ownerID)
}

// Delete removes the stored object and then the record. An object that
// is already gone from storage does not block removing the record.
func (s *FileService) Delete(ctx context.Context, caseID, fileID, ownerID string) error {
	record, err := s.records.FindOwned(ctx, fileID, caseID, ownerID)

	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound(store.MsgFileNotFoundDelete)
		}

		return err
	}

	if err := s.storage.Delete(ctx, record.PublicID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("deleting stored object: %w", err)
		}

		s.logger.Warn("stored object already missing", "file_id", record.ID, "handle", record.PublicID)
	}

	return s.records.DeleteOwned(ctx, fileID, caseID, ownerID)
}

// contentType prefers the sniffed type and falls back to the type the
// client declared when sniffing is inconclusive.
func contentType(head []byte, declared string) string {
	detected := mimetype.Detect(head)

	if detected.Is("application/octet-stream") && declared != "" {
		return declared
	}

	return detected.String()
}
