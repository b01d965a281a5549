package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts   repository.AccountRepository
	sessions   auth.SessionStore
	cfg        config.SessionConfig
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.SessionConfig, accounts repository.AccountRepository, sessions auth.SessionStore) *AuthService {
	return &AuthService{
		accounts:   accounts,
		sessions:   sessions,
		cfg:        cfg,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates an account and opens a session for it. Duplicate emails
// fail with Conflict.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.Account, *domain.Session, error) {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("user already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	account := &domain.Account{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleCommunityMember,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	session, err := s.sessions.Create(ctx, account.Email, s.cfg.TTL())
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return account, session, nil
}

// Login authenticates an account and opens a session. Bad credentials fail
// with Unauthenticated; banned accounts fail with Forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, *domain.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if account.Banned {
		return nil, nil, apperrors.NewForbidden("user is banned")
	}

	session, err := s.sessions.Create(ctx, account.Email, s.cfg.TTL())
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return account, session, nil
}
