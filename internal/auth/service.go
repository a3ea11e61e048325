package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrConflict           = errors.New("conflict")            // 409
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
)

type Service struct {
	Repo      *GormRepo
	JWTSecret []byte
}

type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password required", ErrValidation)
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		l.Error("register_error", "reason", "email lookup failed", "error", err)
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		l.Error("register_error", "reason", "cannot create user", "error", err)
		return nil, err
	}

	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.session(user)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign token", "error", err)
		return nil, err
	}
	return session, nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := tokens.NewAccessToken(s.JWTSecret, user.ID, user.Role, tokens.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
