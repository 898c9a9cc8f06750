package store

import (
	"context"
	"fmt"
	"time"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"gorm.io/gorm"
)

const msgAppointmentNotFound = "Appointment not found in this case."

type AppointmentInput struct {
	Time     time.Time
	Location string
	Notes    string
	Status   models.AppointmentStatus
}

type AppointmentPatch struct {
	Time     *time.Time
	Location *string
	Notes    *string
	Status   *models.AppointmentStatus
}

// AppointmentStore scopes every query by case id. Callers must have
// checked case ownership first.
type AppointmentStore struct {
	db *gorm.DB
}

func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func (s *AppointmentStore) Create(ctx context.Context, caseID string, in AppointmentInput) (*models.Appointment, error) {
	status := in.Status

	if status == "" {
		status = models.AppointmentScheduled
	}

	a := models.Appointment{
		Time:     in.Time.UTC(),
		Location: in.Location,
		Notes:    in.Notes,
		Status:   status,
		CaseID:   caseID,
	}

	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	return &a, nil
}

func (s *AppointmentStore) ListForCase(ctx context.Context, caseID string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}

	err := s.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("scheduled_at ASC").
		Find(&appointments).Error

	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	return appointments, nil
}

func (s *AppointmentStore) FindInCase(ctx context.Context, id, caseID string) (*models.Appointment, error) {
	var a models.Appointment

	if err := s.db.WithContext(ctx).Where("id = ? AND case_id = ?", id, caseID).First(&a).Error; err != nil {
		return nil, notFoundOr(err, msgAppointmentNotFound, "fetching appointment")
	}

	return &a, nil
}

// FindByID is used to walk from an appointment to its case.
func (s *AppointmentStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFoundOr(err, "Appointment not found.", "fetching appointment")
	}

	return &a, nil
}

func (s *AppointmentStore) UpdateInCase(ctx context.Context, id, caseID string, patch AppointmentPatch) (*models.Appointment, error) {
	a, err := s.FindInCase(ctx, id, caseID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if patch.Time != nil {
		updates["scheduled_at"] = patch.Time.UTC()
	}

	if patch.Location != nil {
		updates["location"] = *patch.Location
	}

	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	if len(updates) == 0 {
		return a, nil
	}

	if err := s.db.WithContext(ctx).Model(a).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	return s.FindInCase(ctx, id, caseID)
}

func (s *AppointmentStore) DeleteInCase(ctx context.Context, id, caseID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND case_id = ?", id, caseID).Delete(&models.Appointment{})

	if res.Error != nil {
		return fmt.Errorf("deleting appointment: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound(msgAppointmentNotFound)
	}

	return nil
}
