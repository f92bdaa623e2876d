package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pharmaeye/pharmaeye-backend/internal/importer"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

const extractionPrompt = `
You are a pharmaceutical data entry assistant.
Analyze the image/PDF and extract drug/medicine items into a JSON Array.

Focus on extracting this tabular data:
- tradeName: The commercial name of the drug (English or Arabic).
- agentName: The distributor or agent name.
- manufacturer: The manufacturing company.
- publicPrice: The price for the public (numeric value only, remove currency symbols).
- agentPrice: The price for the pharmacy/agent (numeric value only).
- discountPercent: The discount percentage (numeric value only).

Rules:
1. If the document contains a table, extract all rows.
2. If a value is missing, use null or 0.
3. Clean numeric fields (remove 'SAR', '$', 'ريال', etc.).
4. Output ONLY the raw JSON array. Do not include markdown formatting.
`

const (
	msgMissingAPIKey = "مفتاح API غير متوفر"
	msgExtractFailed = "فشل في استخراج البيانات. الرجاء التأكد من وضوح الصورة والمحاولة مرة أخرى."

	defaultTradeName = "منتج جديد"
	defaultField     = "غير محدد"
)

// Service extracts drug rows from photographed invoices through the Gemini
// vision API. Model responses are parsed leniently: markdown fences and
// wrapper objects are tolerated, and an unparsable response yields an empty
// set rather than an error.
type Service struct {
	cfg   config.GeminiConfig
	httpc *http.Client
	logg  *logger.Logger
}

func NewService(cfg config.GeminiConfig, logg *logger.Logger) *Service {
	return &Service{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		logg:  logg,
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract sends one document to the model and maps the returned rows through
// the importer's numeric cleaning. Rows missing a trade name get the
// placeholder name rather than being dropped, so the operator can fix them in
// the preview.
func (s *Service) Extract(ctx context.Context, data []byte, mimeType string) ([]importer.Preview, error) {
	if s.cfg.APIKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msgMissingAPIKey)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
				{Text: extractionPrompt},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode extraction request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.Model, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build extraction request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgExtractFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msgExtractFailed).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgExtractFailed)
	}

	text := responseText(decoded)
	rows := mapExtracted(parseRows(text))

	s.logg.Info(s.logg.WithField(ctx, "rows", len(rows)), "ocr extraction completed")
	return rows, nil
}

func responseText(resp generateResponse) string {
	var b strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// parseRows slices the response to its outermost JSON array before parsing,
// which strips markdown fences and stray prose the model sometimes emits.
// Anything unparsable yields no rows.
func parseRows(text string) []map[string]any {
	if text == "" {
		return nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}

	var root any
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil
	}

	switch typed := root.(type) {
	case []any:
		return objectRows(typed)
	case map[string]any:
		for _, v := range typed {
			if arr, ok := v.([]any); ok {
				return objectRows(arr)
			}
		}
	}
	return nil
}

func objectRows(items []any) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, obj)
		}
	}
	return rows
}

func mapExtracted(elements []map[string]any) []importer.Preview {
	rows := make([]importer.Preview, 0, len(elements))
	for _, el := range elements {
		p := importer.Preview{
			TradeName:           strings.TrimSpace(stringField(el, "tradeName")),
			AgentName:           strings.TrimSpace(stringField(el, "agentName")),
			Manufacturer:        strings.TrimSpace(stringField(el, "manufacturer")),
			PublicPrice:         importer.CleanNumber(el["publicPrice"]),
			AgentPrice:          importer.CleanNumber(el["agentPrice"]),
			PriceBeforeDiscount: importer.CleanNumber(el["priceBeforeDiscount"]),
			DiscountPercent:     importer.CleanNumber(el["discountPercent"]),
		}
		if p.TradeName == "" {
			p.TradeName = defaultTradeName
		}
		if p.AgentName == "" {
			p.AgentName = defaultField
		}
		if p.Manufacturer == "" {
			p.Manufacturer = defaultField
		}
		if p.PriceBeforeDiscount == 0 {
			p.PriceBeforeDiscount = p.PublicPrice
		}
		rows = append(rows, p)
	}
	return rows
}

func stringField(el map[string]any, key string) string {
	v, ok := el[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
