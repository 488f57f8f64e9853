package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eventrite/eventrite/models"
)

// Gorm is the database-backed UserStore. It expects the *gorm.DB to be
// opened with TranslateError so unique-index violations surface as
// gorm.ErrDuplicatedKey.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.classifyDuplicate(ctx, user)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// classifyDuplicate decides which unique index rejected the insert.
// TranslateError collapses every unique violation into ErrDuplicatedKey,
// so look the email up to tell the two constraints apart.
func (s *Gorm) classifyDuplicate(ctx context.Context, user *models.User) error {
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (s *Gorm) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *Gorm) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Gorm) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Gorm) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
