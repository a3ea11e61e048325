// Package contact stores messages submitted through the public contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("message not found")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) List(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var messages []models.ContactMessage
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return 0, nil, err
	}
	return total, messages, nil
}

func (r *GormRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Count(&count).Error
	return count, err
}

func (r *GormRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.ContactMessage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type Service struct {
	Repo *GormRepo
}

type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Service) Submit(ctx context.Context, in Input) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	case in.Message == "":
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	m := &models.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Body:    in.Message,
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error) {
	return s.Repo.List(ctx, offset, limit)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
