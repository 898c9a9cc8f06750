package models

import "gorm.io/datatypes"

type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

type Client struct {
	BaseModel

	Name        string                          `gorm:"not null" json:"name"`
	ContactInfo datatypes.JSONType[ContactInfo] `json:"contactInfo"`
	OwnerID     string                          `gorm:"size:36;not null;index" json:"ownerId"`
}
