package store

import (
	"context"
	"fmt"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"gorm.io/gorm"
)

const (
	MsgFileNotFound       = "File not found."
	MsgFileNotFoundDelete = "File not found or you do not have permission to delete it."
)

type FileStore struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) Create(ctx context.Context, f *models.File) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("creating file record: %w", err)
	}

	return nil
}

func (s *FileStore) ListForCase(ctx context.Context, caseID string) ([]models.File, error) {
	files := []models.File{}

	err := s.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&files).Error

	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	return files, nil
}

func (s *FileStore) FindOwned(ctx context.Context, id, caseID, ownerID string) (*models.File, error) {
	var f models.File

	err := s.db.WithContext(ctx).
		Where("id = ? AND case_id = ? AND owner_id = ?", id, caseID, ownerID).
		First(&f).Error

	if err != nil {
		return nil, notFoundOr(err, MsgFileNotFound, "fetching file")
	}

	return &f, nil
}

// DeleteOwned reports NotFound when no row was removed, which is how a
// concurrent second delete of the same file surfaces.
func (s *FileStore) DeleteOwned(ctx context.Context, id, caseID, ownerID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND case_id = ? AND owner_id = ?", id, caseID, ownerID).
		Delete(&models.File{})

	if res.Error != nil {
		return fmt.Errorf("deleting file record: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound(MsgFileNotFoundDelete)
	}

	return nil
}
