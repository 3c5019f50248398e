package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-api/internal/auth"
	"github.com/spec-kit/helpdesk-api/internal/config"
	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/internal/repository"
)

// SeedManager creates the bootstrap MANAGER account if it does not exist.
// Without it a fresh deployment has no principal able to create users.
func SeedManager(ctx context.Context, users repository.UserRepository, cfg config.SeedConfig, bcryptCost int, logger *zap.Logger) error {
	if cfg.ManagerEmail == "" || cfg.ManagerPassword == "" {
		logger.Warn("seed manager credentials not configured; skipping seed")
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.ManagerEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.ManagerPassword, bcryptCost)
	if err != nil {
		return err
	}
	manager := &domain.User{
		Name:         cfg.ManagerName,
		Email:        cfg.ManagerEmail,
		PasswordHash: hash,
		Role:         domain.RoleManager,
	}
	if err := users.Create(ctx, manager); err != nil {
		return err
	}
	logger.Info("seeded manager account", zap.String("email", manager.Email))
	return nil
}
