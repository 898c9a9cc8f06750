package models

type User struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`

	// Empty for accounts created through social login.
	PasswordHash string `json:"-"`

	GoogleID   *string `gorm:"size:255;uniqueIndex" json:"-"`
	FacebookID *string `gorm:"size:255;uniqueIndex" json:"-"`
	AvatarURL  string  `json:"avatarUrl"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
