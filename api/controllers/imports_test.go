package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pharmaeye/pharmaeye-backend/internal/importer"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
)

type fakeImportGateway struct {
	inserted  []models.Drug
	notes     []models.Notification
	insertErr error
}

func (f *fakeImportGateway) InsertDrugs(ctx context.Context, drugs []models.Drug) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, drugs...)
	return nil
}

func (f *fakeImportGateway) AddNotification(ctx context.Context, note *models.Notification) error {
	f.notes = append(f.notes, *note)
	return nil
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestImportPreviewJSONUpload(t *testing.T) {
	svc := importer.NewService(&fakeImportGateway{}, testLogger())
	payload := []byte(`[{"tradeName":"Panadol","publicPrice":12,"agentPrice":9}]`)
	body, contentType := multipartUpload(t, "file", "catalog.json", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	ImportPreview(svc, config.ImportConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data []importer.Preview `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].TradeName != "Panadol" {
		t.Fatalf("unexpected rows %+v", envelope.Data)
	}
}

func TestImportPreviewMissingFile(t *testing.T) {
	svc := importer.NewService(&fakeImportGateway{}, testLogger())
	body, contentType := multipartUpload(t, "other", "catalog.json", []byte(`[]`))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	ImportPreview(svc, config.ImportConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestImportPreviewInvalidJSON(t *testing.T) {
	svc := importer.NewService(&fakeImportGateway{}, testLogger())
	body, contentType := multipartUpload(t, "file", "catalog.json", []byte(`not json`))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	ImportPreview(svc, config.ImportConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestImportCommitSuccess(t *testing.T) {
	gw := &fakeImportGateway{}
	svc := importer.NewService(gw, testLogger())

	body := `{"rows":[{"tradeName":"Panadol","publicPrice":12,"agentPrice":9,"priceBeforeDiscount":12}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/commit", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ImportCommit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(gw.inserted) != 1 {
		t.Fatalf("expected 1 inserted row got %d", len(gw.inserted))
	}
	if len(gw.notes) != 1 {
		t.Fatalf("expected success notification, got %d", len(gw.notes))
	}
}

func TestImportCommitEmptyRows(t *testing.T) {
	svc := importer.NewService(&fakeImportGateway{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/commit", strings.NewReader(`{"rows":[]}`))
	resp := httptest.NewRecorder()
	ImportCommit(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestImportCommitInvalidSource(t *testing.T) {
	svc := importer.NewService(&fakeImportGateway{}, testLogger())

	body := `{"rows":[{"tradeName":"A"}],"source":"manual"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/commit", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ImportCommit(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
