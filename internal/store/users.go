package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/models"
	"gorm.io/gorm"
)

const (
	msgEmailTaken         = "User with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
)

type NewUser struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
}

// SocialProfile is the identity returned by an OAuth provider.
type SocialProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, in NewUser) (*models.User, error) {
	email := NormalizeEmail(in.Email)

	var existing models.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error

	if err == nil {
		return nil, apperr.Conflict(msgEmailTaken)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)

	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{
				Field:   "password",
				Message: "must be at most 72 bytes",
			})
		}

		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		AvatarURL:    in.AvatarURL,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race against a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgEmailTaken)
		}

		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// VerifyCredentials returns the same error for an unknown email and a
// wrong password.
func (s *UserStore) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.CheckPassword("", password)
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}

		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User not found", "fetching user")
	}

	return &user, nil
}

// UpsertSocial finds the user by provider id, then by email (linking the
// provider id), and otherwise creates a password-less account.
func (s *UserStore) UpsertSocial(ctx context.Context, p SocialProfile, defaultAvatar string) (*models.User, error) {
	column, err := providerColumn(p.Provider)

	if err != nil {
		return nil, err
	}

	if p.ProviderUserID == "" {
		return nil, apperr.BadRequest("Social account did not provide an id")
	}

	email := NormalizeEmail(p.Email)

	if email == "" {
		return nil, apperr.BadRequest("Social account did not provide an email address")
	}

	db := s.db.WithContext(ctx)

	var user models.User

	err = db.Where(column+" = ?", p.ProviderUserID).First(&user).Error

	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetching user by %s: %w", column, err)
	}

	err = db.Where("email = ?", email).First(&user).Error

	switch {
	case err == nil:
		updates := map[string]interface{}{column: p.ProviderUserID}

		if user.AvatarURL == "" || user.AvatarURL == defaultAvatar {
			if p.AvatarURL != "" {
				updates["avatar_url"] = p.AvatarURL
			}
		}

		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("linking %s account: %w", p.Provider, err)
		}

		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}

	providerID := p.ProviderUserID
	avatar := p.AvatarURL

	if avatar == "" {
		avatar = defaultAvatar
	}

	name := strings.TrimSpace(p.Name)

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user = models.User{Name: name, Email: email, AvatarURL: avatar}

	switch p.Provider {
	case auth.ProviderGoogle:
		user.GoogleID = &providerID
	case auth.ProviderFacebook:
		user.FacebookID = &providerID
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgEmailTaken)
		}

		return nil, fmt.Errorf("creating social user: %w", err)
	}

	return &user, nil
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case auth.ProviderGoogle:
		return "google_id", nil
	case auth.ProviderFacebook:
		return "facebook_id", nil
	default:
		return "", apperr.Newf(apperr.KindBadRequest, "Unsupported provider %q", provider)
	}
}
