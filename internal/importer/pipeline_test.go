package importer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

type fakeGateway struct {
	drugs     []models.Drug
	notes     []models.Notification
	insertErr error
}

func (f *fakeGateway) InsertDrugs(_ context.Context, drugs []models.Drug) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.drugs = append(f.drugs, drugs...)
	return nil
}

func (f *fakeGateway) AddNotification(_ context.Context, note *models.Notification) error {
	f.notes = append(f.notes, *note)
	return nil
}

func newTestService(gw Gateway) *Service {
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewService(gw, logg)
}

func buildWorkbook(t *testing.T, headers []any, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headers))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestPreview_JSONDrugsKey(t *testing.T) {
	s := newTestService(&fakeGateway{})

	doc := `{"drugs": [{"tradeName": "X", "publicPrice": "10"}]}`
	rows, err := s.Preview(context.Background(), "backup.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0].TradeName)
	assert.Equal(t, 10.0, rows[0].PublicPrice)
	assert.Equal(t, 10.0, rows[0].PriceBeforeDiscount)
}

func TestPreview_JSONTopLevelArray(t *testing.T) {
	s := newTestService(&fakeGateway{})

	doc := `[{"name": "A", "سعر الجمهور": 5}, {"publicPrice": 9}]`
	rows, err := s.Preview(context.Background(), "d.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1, "nameless elements are dropped")
	assert.Equal(t, "A", rows[0].TradeName)
	assert.Equal(t, 5.0, rows[0].PublicPrice)
}

func TestPreview_JSONFirstArrayProperty(t *testing.T) {
	s := newTestService(&fakeGateway{})

	doc := `{"meta": {"v": 1}, "items": [{"tradeName": "B"}], "other": [{"tradeName": "C"}]}`
	rows, err := s.Preview(context.Background(), "d.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0].TradeName, "first array property in document order wins")
}

func TestPreview_JSONArabicAliases(t *testing.T) {
	s := newTestService(&fakeGateway{})

	doc := `[{"اسم الدواء": "بنادول", "الوكيل": "الموزع الاول", "سعر الصيدلي": "12.5"}]`
	rows, err := s.Preview(context.Background(), "d.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "بنادول", rows[0].TradeName)
	assert.Equal(t, "الموزع الاول", rows[0].AgentName)
	assert.Equal(t, 12.5, rows[0].AgentPrice)
}

func TestPreview_InvalidJSON(t *testing.T) {
	s := newTestService(&fakeGateway{})

	_, err := s.Preview(context.Background(), "bad.json", strings.NewReader("{not json"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeParse, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), msgInvalidJSON)
}

func TestPreview_IncompatibleJSONShape(t *testing.T) {
	s := newTestService(&fakeGateway{})

	_, err := s.Preview(context.Background(), "bad.json", strings.NewReader(`{"a": 1, "b": "x"}`))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeParse, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), msgIncompatibleJSON)
}

func TestPreview_Workbook(t *testing.T) {
	s := newTestService(&fakeGateway{})

	data := buildWorkbook(t,
		[]any{"الإسم التجاري", "سعر الجمهور"},
		[]any{"بنادول", 15},
	)
	rows, err := s.Preview(context.Background(), "drugs.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "بنادول", rows[0].TradeName)
	assert.Equal(t, 15.0, rows[0].PublicPrice)
	assert.Equal(t, 15.0, rows[0].PriceBeforeDiscount, "defaults to the public price")
}

func TestPreview_WorkbookMessyHeaders(t *testing.T) {
	s := newTestService(&fakeGateway{})

	data := buildWorkbook(t,
		[]any{"Drug Name ", "Unit Price (SAR)", "Discount %"},
		[]any{"Augmentin 1g", "31.00 SR", "10%"},
	)
	rows, err := s.Preview(context.Background(), "messy.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Augmentin 1g", rows[0].TradeName)
	assert.Equal(t, 31.0, rows[0].PublicPrice)
	assert.Equal(t, 10.0, rows[0].DiscountPercent)
}

func TestPreview_WorkbookEmpty(t *testing.T) {
	s := newTestService(&fakeGateway{})

	data := buildWorkbook(t, []any{"الإسم التجاري", "سعر الجمهور"})
	_, err := s.Preview(context.Background(), "empty.xlsx", bytes.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeParse, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), msgNoRows)
}

func TestPreview_WorkbookNoValidRowsListsHeaders(t *testing.T) {
	s := newTestService(&fakeGateway{})

	data := buildWorkbook(t,
		[]any{"Column A", "Column B"},
		[]any{"x", "y"},
	)
	_, err := s.Preview(context.Background(), "wrong.xlsx", bytes.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Column A")
	assert.Contains(t, err.Error(), "Column B")
}

func TestPreview_WorkbookNotAWorkbook(t *testing.T) {
	s := newTestService(&fakeGateway{})

	_, err := s.Preview(context.Background(), "junk.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeParse, pkgerrors.CodeOf(err))
}

func TestCommit(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestService(gw)

	rows := []Preview{
		{TradeName: "A", PublicPrice: 10},
		{TradeName: "B", PublicPrice: 20, PriceBeforeDiscount: 25},
	}
	drugs, err := s.Commit(context.Background(), rows, enums.DrugSourceImport)
	require.NoError(t, err)
	require.Len(t, drugs, 2)
	require.Len(t, gw.drugs, 2)

	for _, d := range gw.drugs {
		assert.NotEqual(t, uuid.Nil, d.ID)
		assert.Equal(t, enums.DrugSourceImport, d.AddedBy)
	}
	assert.Equal(t, 10.0, gw.drugs[0].PriceBeforeDiscount, "defaulted at commit time")
	assert.Equal(t, 25.0, gw.drugs[1].PriceBeforeDiscount)

	require.Len(t, gw.notes, 1)
	assert.Equal(t, importNotificationTitle, gw.notes[0].Title)
	assert.Contains(t, gw.notes[0].Message, "2")
}

func TestCommit_EmptyRows(t *testing.T) {
	s := newTestService(&fakeGateway{})

	_, err := s.Commit(context.Background(), nil, enums.DrugSourceImport)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCommit_GatewayFailurePropagates(t *testing.T) {
	gw := &fakeGateway{insertErr: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	s := newTestService(gw)

	_, err := s.Commit(context.Background(), []Preview{{TradeName: "A"}}, enums.DrugSourceImport)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Empty(t, gw.notes, "no notification on failed commit")
}
