package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pharmaeye/pharmaeye-backend/api/responses"
	"github.com/pharmaeye/pharmaeye-backend/internal/backup"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

// ExportBackup streams the full snapshot as a downloadable JSON document.
func ExportBackup(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		snap, filename, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(snap); err != nil && logg != nil {
			logg.Error(r.Context(), "export.encode_failed", err)
		}
	}
}
