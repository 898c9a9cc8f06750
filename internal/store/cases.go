package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"gorm.io/gorm"
)

const msgForeignClient = "The specified client does not belong to the current user."

type CaseInput struct {
	Title       string
	Description string
	Status      models.CaseStatus
	ClientID    string
}

// CasePatch has no client or owner field; both are fixed at creation.
type CasePatch struct {
	Title       *string
	Description *string
	Status      *models.CaseStatus
}

type CaseFilter struct {
	ClientID string
}

type CaseStore struct {
	db *gorm.DB
}

func NewCaseStore(db *gorm.DB) *CaseStore {
	return &CaseStore{db: db}
}

func caseNotFound(id string) string {
	return fmt.Sprintf("Case not found with id of %s", id)
}

// Create requires the referenced client to belong to ownerID. A client of
// another user and a client that does not exist are both Forbidden.
func (s *CaseStore) Create(ctx context.Context, ownerID string, in CaseInput) (*models.Case, error) {
	db := s.db.WithContext(ctx)

	var client models.Client

	err := db.Where("id = ? AND owner_id = ?", in.ClientID, ownerID).First(&client).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Forbidden(msgForeignClient)
		}

		return nil, fmt.Errorf("checking client ownership: %w", err)
	}

	status := in.Status

	if status == "" {
		status = models.CaseOpen
	}

	c := models.Case{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		OwnerID:     ownerID,
		ClientID:    client.ID,
	}

	if err := db.Omit("Client").Create(&c).Error; err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}

	c.Client = &client

	return &c, nil
}

func (s *CaseStore) ListOwned(ctx context.Context, ownerID string, filter CaseFilter) ([]models.Case, error) {
	cases := []models.Case{}

	q := s.db.WithContext(ctx).Preload("Client").Where("owner_id = ?", ownerID)

	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	if err := q.Order("created_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}

	return cases, nil
}

func (s *CaseStore) FindOwned(ctx context.Context, id, ownerID string) (*models.Case, error) {
	var c models.Case

	err := s.db.WithContext(ctx).Preload("Client").Where("id = ? AND owner_id = ?", id, ownerID).First(&c).Error

	if err != nil {
		return nil, notFoundOr(err, caseNotFound(id), "fetching case")
	}

	return &c, nil
}

// FindByID loads a case regardless of owner. Only the ownership resolver
// should call it.
func (s *CaseStore) FindByID(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("Case with ID %s not found.", id), "fetching case")
	}

	return &c, nil
}

func (s *CaseStore) UpdateOwned(ctx context.Context, id, ownerID string, patch CasePatch) (*models.Case, error) {
	c, err := s.FindOwned(ctx, id, ownerID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if patch.Title != nil {
		updates["title"] = *patch.Title
	}

	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	if len(updates) == 0 {
		return c, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Case{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating case: %w", err)
	}

	return s.FindOwned(ctx, id, ownerID)
}

// DeleteOwned removes only the case row. Appointments and files that
// reference it are left in place.
func (s *CaseStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Case{})

	if res.Error != nil {
		return fmt.Errorf("deleting case: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound(caseNotFound(id))
	}

	return nil
}
