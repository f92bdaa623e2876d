package store

import (
	"context"
	"fmt"

	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
	"github.com/pharmaeye/pharmaeye-backend/pkg/security"
)

const (
	welcomeTitle   = "مرحباً بك في PharmaEye"
	welcomeMessage = "تم تثبيت النظام بنجاح. يمكنك الآن البدء بإضافة الأدوية."

	rootSeedPhone = "966500000000"
)

// Seed creates the reserved root administrator and the welcome notification
// on an empty store. A store with any user at all is left untouched, so
// re-running on every boot is safe.
func Seed(ctx context.Context, gw Gateway, cfg *config.Config, logg *logger.Logger) error {
	users, err := gw.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := security.HashPassword(cfg.Bootstrap.RootPassword, cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing root password: %w", err)
	}

	phone := rootSeedPhone
	root := models.User{
		Username:     cfg.Bootstrap.RootUsername,
		Email:        cfg.Bootstrap.RootEmail,
		PasswordHash: hash,
		FullName:     cfg.Bootstrap.RootFullName,
		Role:         enums.RoleAdmin,
		Phone:        &phone,
	}
	if err := gw.CreateUser(ctx, &root); err != nil {
		return fmt.Errorf("seeding root account: %w", err)
	}

	note := models.Notification{
		Title:   welcomeTitle,
		Message: welcomeMessage,
	}
	if err := gw.AddNotification(ctx, &note); err != nil {
		return fmt.Errorf("seeding welcome notification: %w", err)
	}

	logg.Info(logg.WithBackend(ctx, gw.Backend()), "seeded root account and welcome notification")
	return nil
}
