package store

import (
	"context"
	"fmt"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name        string
	ContactInfo models.ContactInfo
}

// ClientPatch replaces contact info as a whole when set.
type ClientPatch struct {
	Name        *string
	ContactInfo *models.ContactInfo
}

type ClientStore struct {
	db *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

func clientNotFound(id string) string {
	return fmt.Sprintf("Client not found with id of %s", id)
}

func (s *ClientStore) Create(ctx context.Context, ownerID string, in ClientInput) (*models.Client, error) {
	client := models.Client{
		Name:        in.Name,
		ContactInfo: datatypes.NewJSONType(in.ContactInfo),
		OwnerID:     ownerID,
	}

	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return &client, nil
}

func (s *ClientStore) ListOwned(ctx context.Context, ownerID string) ([]models.Client, error) {
	clients := []models.Client{}

	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&clients).Error

	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	return clients, nil
}

func (s *ClientStore) FindOwned(ctx context.Context, id, ownerID string) (*models.Client, error) {
	var client models.Client

	if err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&client).Error; err != nil {
		return nil, notFoundOr(err, clientNotFound(id), "fetching client")
	}

	return &client, nil
}

func (s *ClientStore) UpdateOwned(ctx context.Context, id, ownerID string, patch ClientPatch) (*models.Client, error) {
	client, err := s.FindOwned(ctx, id, ownerID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if patch.Name != nil {
		updates["name"] = *patch.Name
	}

	if patch.ContactInfo != nil {
		updates["contact_info"] = datatypes.NewJSONType(*patch.ContactInfo)
	}

	if len(updates) == 0 {
		return client, nil
	}

	if err := s.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	return s.FindOwned(ctx, id, ownerID)
}

func (s *ClientStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Client{})

	if res.Error != nil {
		return fmt.Errorf("deleting client: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound(clientNotFound(id))
	}

	return nil
}
