package notifications

import (
	"context"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	gw store.Gateway
}

// NewService wires notification dependencies.
func NewService(gw store.Gateway) (Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway required")
	}
	return &service{gw: gw}, nil
}

func (s *service) List(ctx context.Context) ([]models.Notification, error) {
	return s.gw.ListNotifications(ctx)
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.gw.MarkAllNotificationsRead(ctx)
}
