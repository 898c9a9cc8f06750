package models

// File is the database record of an object kept in external storage.
// PublicID is the storage deletion handle. OwnerID is copied from the
// owning case at upload time.
type File struct {
	BaseModel

	FileName    string `gorm:"not null" json:"fileName"`
	FileURL     string `gorm:"not null" json:"fileUrl"`
	PublicID    string `gorm:"size:512;uniqueIndex;not null" json:"publicId"`
	FileType    string `gorm:"size:255" json:"fileType"`
	Size        int64  `json:"size"`
	Description string `json:"description,omitempty"`
	CaseID      string `gorm:"size:36;not null;index" json:"caseId"`
	OwnerID     string `gorm:"size:36;not null;index" json:"ownerId"`
}
