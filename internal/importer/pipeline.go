package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

// User-facing parse failures, in the application language.
const (
	msgInvalidJSON      = "ملف JSON غير صالح"
	msgIncompatibleJSON = "صيغة ملف JSON غير متوافقة"
	msgNoSheets         = "ملف Excel لا يحتوي على صفحات"
	msgNoRows           = "الملف فارغ أو لا يحتوي على بيانات مقروءة"
	msgNoValidRowsFmt   = "لم يتم العثور على أدوية صالحة. تأكد من الأعمدة. الأعمدة الموجودة: [%s]"

	importNotificationTitle = "استيراد البيانات"
	importNotificationFmt   = "تم إضافة %d صنف بنجاح إلى المخزون!"
)

// Gateway is the slice of the storage surface the pipeline needs.
type Gateway interface {
	InsertDrugs(ctx context.Context, drugs []models.Drug) error
	AddNotification(ctx context.Context, note *models.Notification) error
}

// Service turns uploaded catalog files into preview rows and commits
// approved previews to the store.
type Service struct {
	gw   Gateway
	logg *logger.Logger
}

func NewService(gw Gateway, logg *logger.Logger) *Service {
	return &Service{gw: gw, logg: logg}
}

// Preview parses an uploaded file into drug rows without touching the store.
// JSON files are matched by extension; everything else is treated as a
// workbook.
func (s *Service) Preview(ctx context.Context, filename string, r io.Reader) ([]Preview, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, msgNoRows)
	}

	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		return s.previewJSON(ctx, data)
	}
	return s.previewWorkbook(ctx, data)
}

func (s *Service) previewJSON(ctx context.Context, data []byte) ([]Preview, error) {
	elements, err := jsonElements(data)
	if err != nil {
		return nil, err
	}

	rows := make([]Preview, 0, len(elements))
	for _, el := range elements {
		if p, ok := mapJSONElement(el); ok {
			rows = append(rows, p)
		}
	}

	s.logg.Info(s.logg.WithField(ctx, "rows", len(rows)), "json import previewed")
	return rows, nil
}

// jsonElements accepts the three shapes seen in the wild: a bare array, an
// object with a "drugs" array, or an object whose first array-valued
// property holds the rows.
func jsonElements(data []byte) ([]map[string]any, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, msgInvalidJSON)
	}

	switch typed := root.(type) {
	case []any:
		return objectElements(typed), nil
	case map[string]any:
		if drugs, ok := typed["drugs"].([]any); ok {
			return objectElements(drugs), nil
		}
		if arr, ok := firstArrayProperty(data); ok {
			return objectElements(arr), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeParse, msgIncompatibleJSON)
}

// firstArrayProperty re-scans the document token stream so "first" means
// first in the file, not map iteration order.
func firstArrayProperty(data []byte) ([]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var arr []any
			if err := json.Unmarshal(trimmed, &arr); err != nil {
				return nil, false
			}
			return arr, true
		}
	}
	return nil, false
}

func objectElements(items []any) []map[string]any {
	elements := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			elements = append(elements, obj)
		}
	}
	return elements
}

// mapJSONElement applies the light alias lookup used for JSON files, where
// exporters write known keys and the full fuzzy resolver would be overkill.
func mapJSONElement(el map[string]any) (Preview, bool) {
	name := firstPresent(el, "tradeName", "name", "اسم الدواء", "الإسم التجاري")
	tradeName := strings.TrimSpace(cellString(name))
	if tradeName == "" {
		return Preview{}, false
	}

	p := Preview{
		TradeName:           tradeName,
		AgentName:           strings.TrimSpace(cellString(firstPresent(el, "agentName", "الوكيل"))),
		Manufacturer:        strings.TrimSpace(cellString(firstPresent(el, "manufacturer", "المصنع"))),
		PublicPrice:         CleanNumber(firstPresent(el, "publicPrice", "سعر الجمهور")),
		AgentPrice:          CleanNumber(firstPresent(el, "agentPrice", "سعر الصيدلي")),
		PriceBeforeDiscount: CleanNumber(firstPresent(el, "priceBeforeDiscount", "قبل الخصم")),
		DiscountPercent:     CleanNumber(firstPresent(el, "discountPercent", "نسبة الخصم")),
	}
	if p.PriceBeforeDiscount == 0 {
		p.PriceBeforeDiscount = p.PublicPrice
	}
	return p, true
}

func firstPresent(el map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := el[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (s *Service) previewWorkbook(ctx context.Context, data []byte) ([]Preview, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, msgNoRows)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeParse, msgNoSheets)
	}

	cells, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, msgNoRows)
	}
	if len(cells) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeParse, msgNoRows)
	}

	headers := cells[0]
	rows := make([]Preview, 0, len(cells)-1)
	for _, record := range cells[1:] {
		raw := RawRow{}
		for i, header := range headers {
			if strings.TrimSpace(header) == "" {
				continue
			}
			if i < len(record) && record[i] != "" {
				raw[header] = record[i]
			}
		}
		if len(raw) == 0 {
			continue
		}
		if p, ok := MapRow(raw); ok {
			rows = append(rows, p)
		}
	}

	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf(msgNoValidRowsFmt, strings.Join(nonEmptyHeaders(headers), ", ")))
	}

	s.logg.Info(s.logg.WithField(ctx, "rows", len(rows)), "workbook import previewed")
	return rows, nil
}

func nonEmptyHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			out = append(out, h)
		}
	}
	return out
}

// Commit writes approved preview rows to the store as one batch, stamping
// provenance and identifiers, and records an in-app notification.
func (s *Service) Commit(ctx context.Context, rows []Preview, source enums.DrugSource) ([]models.Drug, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no rows to commit")
	}
	if !source.IsValid() {
		source = enums.DrugSourceImport
	}

	drugs := make([]models.Drug, 0, len(rows))
	for _, row := range rows {
		before := row.PriceBeforeDiscount
		if before == 0 {
			before = row.PublicPrice
		}
		drugs = append(drugs, models.Drug{
			ID:                  uuid.New(),
			TradeName:           row.TradeName,
			AgentName:           row.AgentName,
			Manufacturer:        row.Manufacturer,
			PublicPrice:         row.PublicPrice,
			AgentPrice:          row.AgentPrice,
			PriceBeforeDiscount: before,
			DiscountPercent:     row.DiscountPercent,
			AddedBy:             source,
		})
	}

	if err := s.gw.InsertDrugs(ctx, drugs); err != nil {
		return nil, err
	}

	note := models.Notification{
		Title:   importNotificationTitle,
		Message: fmt.Sprintf(importNotificationFmt, len(drugs)),
	}
	if err := s.gw.AddNotification(ctx, &note); err != nil {
		// the batch is already in; a failed notification is not worth failing the import
		s.logg.Warn(ctx, "import committed but notification failed")
	}

	s.logg.Info(s.logg.WithField(ctx, "count", len(drugs)), "import committed")
	return drugs, nil
}
