package models

type CaseStatus string

const (
	CaseOpen       CaseStatus = "Open"
	CaseClosed     CaseStatus = "Closed"
	CasePending    CaseStatus = "Pending"
	CaseInProgress CaseStatus = "In Progress"
)

var CaseStatuses = []CaseStatus{CaseOpen, CaseClosed, CasePending, CaseInProgress}

func (s CaseStatus) Valid() bool {
	for _, status := range CaseStatuses {
		if s == status {
			return true
		}
	}

	return false
}

type Case struct {
	BaseModel

	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Status      CaseStatus `gorm:"size:20;not null;default:Open" json:"status"`
	OwnerID     string     `gorm:"size:36;not null;index" json:"ownerId"`
	ClientID    string     `gorm:"size:36;not null;index" json:"clientId"`

	// Relationships
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
