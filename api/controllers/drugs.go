package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/api/responses"
	"github.com/pharmaeye/pharmaeye-backend/api/validators"
	"github.com/pharmaeye/pharmaeye-backend/internal/drugs"
	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

type createDrugRequest struct {
	TradeName           string  `json:"tradeName" validate:"required"`
	AgentName           string  `json:"agentName"`
	Manufacturer        string  `json:"manufacturer"`
	PublicPrice         float64 `json:"publicPrice" validate:"min=0"`
	AgentPrice          float64 `json:"agentPrice" validate:"min=0"`
	PriceBeforeDiscount float64 `json:"priceBeforeDiscount" validate:"min=0"`
	DiscountPercent     float64 `json:"discountPercent" validate:"min=0,max=100"`
}

type createDrugBatchRequest struct {
	Drugs []createDrugRequest `json:"drugs" validate:"required,min=1,dive"`
}

func (req createDrugRequest) toInput() drugs.CreateInput {
	return drugs.CreateInput{
		TradeName:           req.TradeName,
		AgentName:           req.AgentName,
		Manufacturer:        req.Manufacturer,
		PublicPrice:         req.PublicPrice,
		AgentPrice:          req.AgentPrice,
		PriceBeforeDiscount: req.PriceBeforeDiscount,
		DiscountPercent:     req.DiscountPercent,
		Source:              enums.DrugSourceManual,
	}
}

// ListDrugs returns the full catalog.
func ListDrugs(svc drugs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drugs service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CreateDrug adds a single manually entered drug.
func CreateDrug(svc drugs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drugs service unavailable"))
			return
		}

		var req createDrugRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drug, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, drug)
	}
}

// CreateDrugBatch adds multiple drugs in one request.
func CreateDrugBatch(svc drugs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drugs service unavailable"))
			return
		}

		var req createDrugBatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]drugs.CreateInput, 0, len(req.Drugs))
		for _, item := range req.Drugs {
			inputs = append(inputs, item.toInput())
		}

		created, err := svc.CreateBatch(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateDrug applies a partial update to one catalog row.
func UpdateDrug(svc drugs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drugs service unavailable"))
			return
		}

		drugID, err := uuid.Parse(chi.URLParam(r, "drugId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drug id"))
			return
		}

		var patch store.DrugPatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drug, err := svc.Update(r.Context(), drugID, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drug)
	}
}

// DeleteDrug removes one catalog row.
func DeleteDrug(svc drugs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drugs service unavailable"))
			return
		}

		drugID, err := uuid.Parse(chi.URLParam(r, "drugId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drug id"))
			return
		}

		if err := svc.Delete(r.Context(), drugID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
