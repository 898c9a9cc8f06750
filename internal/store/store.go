// Package store holds the gorm-backed persistence for users and the
// owner-scoped resources. Every query runs with the caller's context.
package store

import (
	"errors"
	"fmt"

	"github.com/docket-dev/docket/internal/apperr"
	"gorm.io/gorm"
)

// Stores bundles every store so they can be built from one *gorm.DB.
type Stores struct {
	Users        *UserStore
	Clients      *ClientStore
	Cases        *CaseStore
	Appointments *AppointmentStore
	Files        *FileStore
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		Users:        NewUserStore(db),
		Clients:      NewClientStore(db),
		Cases:        NewCaseStore(db),
		Appointments: NewAppointmentStore(db),
		Files:        NewFileStore(db),
	}
}

func notFoundOr(err error, message, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}

	return fmt.Errorf("%s: %w", op, err)
}
