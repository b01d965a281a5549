package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository"
)

// EnsureAdminAccount creates the configured administrator account if it does
// not exist. No-op when the admin email or password is unset.
func EnsureAdminAccount(ctx context.Context, accounts repository.AccountRepository, cfg config.Config, logger *zap.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	if _, err := accounts.GetByEmail(ctx, cfg.Admin.Email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password, cfg.Session.BcryptCost)
	if err != nil {
		return err
	}

	account := &domain.Account{
		Email:        cfg.Admin.Email,
		Name:         cfg.Admin.Name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", account.Email))
	return nil
}
