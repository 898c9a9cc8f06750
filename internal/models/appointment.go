package models

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

var AppointmentStatuses = []AppointmentStatus{AppointmentScheduled, AppointmentCompleted, AppointmentCancelled}

func (s AppointmentStatus) Valid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}

	return false
}

// Appointments carry no owner; access is always derived from the parent case.
type Appointment struct {
	BaseModel

	Time     time.Time         `gorm:"column:scheduled_at;not null;index" json:"time"`
	Location string            `gorm:"not null" json:"location"`
	Notes    string            `json:"notes,omitempty"`
	Status   AppointmentStatus `gorm:"size:20;not null;default:Scheduled" json:"status"`
	CaseID   string            `gorm:"size:36;not null;index" json:"caseId"`
}
