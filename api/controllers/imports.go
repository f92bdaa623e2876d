package controllers

import (
	"net/http"

	"github.com/pharmaeye/pharmaeye-backend/api/responses"
	"github.com/pharmaeye/pharmaeye-backend/api/validators"
	"github.com/pharmaeye/pharmaeye-backend/internal/importer"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

const uploadFieldName = "file"

type commitImportRequest struct {
	Rows   []importer.Preview `json:"rows" validate:"required,min=1"`
	Source string             `json:"source" validate:"omitempty,oneof=import ocr"`
}

// ImportPreview parses an uploaded JSON or Excel file and returns the mapped
// rows without writing anything.
func ImportPreview(svc *importer.Service, cfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		maxBytes := int64(cfg.MaxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload"))
			return
		}

		file, header, err := r.FormFile(uploadFieldName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field missing"))
			return
		}
		defer file.Close()

		rows, err := svc.Preview(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ImportCommit persists previously previewed rows and posts the success
// notification.
func ImportCommit(svc *importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		var req commitImportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := enums.DrugSourceImport
		if req.Source != "" {
			parsed, err := enums.ParseDrugSource(req.Source)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source"))
				return
			}
			source = parsed
		}

		created, err := svc.Commit(r.Context(), req.Rows, source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
