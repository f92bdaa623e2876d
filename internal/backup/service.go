package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

// Service produces full catalog snapshots for download.
type Service interface {
	Export(ctx context.Context) (*store.Snapshot, string, error)
}

type service struct {
	gw  store.Gateway
	now func() time.Time
}

// NewService wires backup dependencies.
func NewService(gw store.Gateway) (Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway required")
	}
	return &service{gw: gw, now: time.Now}, nil
}

// Export returns the snapshot plus the download filename, which carries the
// export date so operators can keep dated backups side by side.
func (s *service) Export(ctx context.Context) (*store.Snapshot, string, error) {
	snap, err := s.gw.Export(ctx)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("pharma_eye_backup_%s.json", s.now().UTC().Format("2006-01-02"))
	return snap, filename, nil
}
