package drugs

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	List(ctx context.Context) ([]models.Drug, error)
	Create(ctx context.Context, input CreateInput) (*models.Drug, error)
	CreateBatch(ctx context.Context, inputs []CreateInput) ([]models.Drug, error)
	Update(ctx context.Context, drugID uuid.UUID, patch store.DrugPatch) (*models.Drug, error)
	Delete(ctx context.Context, drugID uuid.UUID) error
}

// CreateInput holds the validated payload to create a drug.
type CreateInput struct {
	TradeName           string
	AgentName           string
	Manufacturer        string
	PublicPrice         float64
	AgentPrice          float64
	PriceBeforeDiscount float64
	DiscountPercent     float64
	Source              enums.DrugSource
}

type service struct {
	gw store.Gateway
}

// NewService wires catalog dependencies.
func NewService(gw store.Gateway) (Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway required")
	}
	return &service{gw: gw}, nil
}

func (s *service) List(ctx context.Context) ([]models.Drug, error) {
	return s.gw.ListDrugs(ctx)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Drug, error) {
	drug, err := drugFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.gw.InsertDrug(ctx, drug); err != nil {
		return nil, err
	}
	return drug, nil
}

func (s *service) CreateBatch(ctx context.Context, inputs []CreateInput) ([]models.Drug, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch cannot be empty")
	}

	drugs := make([]models.Drug, 0, len(inputs))
	for _, input := range inputs {
		drug, err := drugFromInput(input)
		if err != nil {
			return nil, err
		}
		drugs = append(drugs, *drug)
	}

	if err := s.gw.InsertDrugs(ctx, drugs); err != nil {
		return nil, err
	}
	return drugs, nil
}

func (s *service) Update(ctx context.Context, drugID uuid.UUID, patch store.DrugPatch) (*models.Drug, error) {
	if drugID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drug id required")
	}
	return s.gw.UpdateDrug(ctx, drugID, patch)
}

func (s *service) Delete(ctx context.Context, drugID uuid.UUID) error {
	if drugID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "drug id required")
	}
	return s.gw.DeleteDrug(ctx, drugID)
}

func drugFromInput(input CreateInput) (*models.Drug, error) {
	tradeName := strings.TrimSpace(input.TradeName)
	if tradeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name is required")
	}

	source := input.Source
	if !source.IsValid() {
		source = enums.DrugSourceManual
	}

	before := input.PriceBeforeDiscount
	if before == 0 {
		before = input.PublicPrice
	}

	return &models.Drug{
		ID:                  uuid.New(),
		TradeName:           tradeName,
		AgentName:           strings.TrimSpace(input.AgentName),
		Manufacturer:        strings.TrimSpace(input.Manufacturer),
		PublicPrice:         input.PublicPrice,
		AgentPrice:          input.AgentPrice,
		PriceBeforeDiscount: before,
		DiscountPercent:     input.DiscountPercent,
		AddedBy:             source,
	}, nil
}
