package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
	ErrConflict   = errors.New("email already in use")
)

type Service struct {
	Repo  *GormRepo
	Store storage.ObjectStore
}

type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type Avatar struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.List(ctx, offset, limit)
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != u.Email {
		if *in.Email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", ErrValidation)
		}
		taken, err := s.Repo.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrConflict
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		u.Name = *in.Name
	}
	if in.Role != nil {
		switch *in.Role {
		case models.RoleUser, models.RoleAdmin:
			u.Role = *in.Role
		default:
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *in.Role)
		}
	}

	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password cannot be empty", ErrValidation)
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(u.PasswordHash, current) {
		return fmt.Errorf("%w: current password does not match", ErrValidation)
	}

	hashed, err := hash.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hashed
	return s.Repo.Save(ctx, u)
}

func (s *Service) UploadAvatar(ctx context.Context, id uint, av Avatar) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), filepath.Ext(av.Filename))
	url, err := s.Store.Upload(ctx, key, av.ContentType, av.Body)
	if err != nil {
		return nil, err
	}

	oldKey := u.AvatarKey
	u.AvatarURL = url
	u.AvatarKey = key
	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}

	if oldKey != "" {
		if err := s.Store.Delete(ctx, oldKey); err != nil {
			logging.FromContext(ctx).Warn("avatar cleanup failed", "key", oldKey, "error", err)
		}
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	u, err := s.Repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if u.AvatarKey != "" {
		if err := s.Store.Delete(ctx, u.AvatarKey); err != nil {
			logging.FromContext(ctx).Warn("avatar cleanup failed", "key", u.AvatarKey, "error", err)
		}
	}
	return nil
}
