package drugs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

type fakeGateway struct {
	store.Gateway
	inserted []models.Drug
	patched  map[uuid.UUID]store.DrugPatch
	deleted  []uuid.UUID
}

func (f *fakeGateway) InsertDrug(_ context.Context, drug *models.Drug) error {
	f.inserted = append(f.inserted, *drug)
	return nil
}

func (f *fakeGateway) InsertDrugs(_ context.Context, drugs []models.Drug) error {
	f.inserted = append(f.inserted, drugs...)
	return nil
}

func (f *fakeGateway) UpdateDrug(_ context.Context, id uuid.UUID, patch store.DrugPatch) (*models.Drug, error) {
	if f.patched == nil {
		f.patched = map[uuid.UUID]store.DrugPatch{}
	}
	f.patched[id] = patch
	return &models.Drug{ID: id}, nil
}

func (f *fakeGateway) DeleteDrug(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreate_DefaultsAndProvenance(t *testing.T) {
	gw := &fakeGateway{}
	svc, err := NewService(gw)
	require.NoError(t, err)

	drug, err := svc.Create(context.Background(), CreateInput{
		TradeName:   "  Panadol  ",
		PublicPrice: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "Panadol", drug.TradeName)
	assert.Equal(t, 12.0, drug.PriceBeforeDiscount, "defaults to public price")
	assert.Equal(t, enums.DrugSourceManual, drug.AddedBy)
	assert.NotEqual(t, uuid.Nil, drug.ID)
	require.Len(t, gw.inserted, 1)
}

func TestCreate_RequiresTradeName(t *testing.T) {
	svc, err := NewService(&fakeGateway{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{TradeName: "  "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateBatch(t *testing.T) {
	gw := &fakeGateway{}
	svc, err := NewService(gw)
	require.NoError(t, err)

	drugs, err := svc.CreateBatch(context.Background(), []CreateInput{
		{TradeName: "A", PublicPrice: 1, Source: enums.DrugSourceOCR},
		{TradeName: "B", PriceBeforeDiscount: 9},
	})
	require.NoError(t, err)
	require.Len(t, drugs, 2)
	assert.Equal(t, enums.DrugSourceOCR, drugs[0].AddedBy)
	assert.Equal(t, 9.0, drugs[1].PriceBeforeDiscount)
	assert.Len(t, gw.inserted, 2)

	_, err = svc.CreateBatch(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUpdateAndDelete_RequireID(t *testing.T) {
	gw := &fakeGateway{}
	svc, err := NewService(gw)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), uuid.Nil, store.DrugPatch{})
	require.Error(t, err)

	err = svc.Delete(context.Background(), uuid.Nil)
	require.Error(t, err)

	id := uuid.New()
	name := "X"
	_, err = svc.Update(context.Background(), id, store.DrugPatch{TradeName: &name})
	require.NoError(t, err)
	require.Contains(t, gw.patched, id)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, gw.deleted)
}
